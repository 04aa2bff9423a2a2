package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/auth"
)

// Authorise runs the OAuth2 consent flow and saves the token in the
// credentials directory, replacing any existing token.
type Authorise struct {
	paste bool
}

func (cmd *Authorise) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:     "authorise",
		Aliases: []string{"authorize"},
		Short:   "Authorises budget-sheets to access Google Sheets",
		Long: `Authorises budget-sheets to access Google Sheets using the OAuth2 client secret
in the credentials directory. The consent page is opened in a browser and the
token is saved to 'token.json' in the same directory.`,
		Example: `  budget-sheets authorise --credentials ~/.budget/google
  budget-sheets authorise --credentials ~/.budget/google --paste`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context(), options)
		},
	}

	c.Flags().BoolVar(&cmd.paste, "paste", cmd.paste, "Prints the consent URL and reads the authorisation code from the terminal")

	return c
}

func (cmd *Authorise) Execute(ctx context.Context, options *Options) error {
	cfg, err := options.load(false)
	if err != nil {
		return err
	}

	var flow auth.Flow = &auth.LoopbackFlow{
		Out: os.Stdout,
		Log: options.logger(),
	}

	if cmd.paste {
		flow = &auth.PasteFlow{
			In:  os.Stdin,
			Out: os.Stdout,
		}
	}

	h, err := options.connect(ctx, cfg, auth.WithFlow(flow), auth.Reauthorise())
	if err != nil {
		return err
	}

	options.infof("Authorised for %v", h.Scopes)
	options.printf("token saved to %s\n", filepath.Join(cfg.Credentials, auth.TokenFile))

	return nil
}
