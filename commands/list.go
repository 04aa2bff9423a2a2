package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/worksheet"
)

// List prints the ID and title of every worksheet in the spreadsheet.
type List struct {
}

func (cmd *List) Command(options *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "Lists the worksheets in a spreadsheet",
		Example: `  budget-sheets list --spreadsheet 1giRkGWGEw18NYc1b7LhxYvq9eRBF2F-XMJv_i_LG3tE`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context(), options)
		},
	}
}

func (cmd *List) Execute(ctx context.Context, options *Options) error {
	cfg, err := options.load(true)
	if err != nil {
		return err
	}

	h, err := options.connect(ctx, cfg)
	if err != nil {
		return err
	}

	list, err := worksheet.List(ctx, h, cfg.Spreadsheet)
	if err != nil {
		return err
	}

	for _, p := range list {
		options.printf("%-12d %s\n", p.SheetId, p.Title)
	}

	return nil
}
