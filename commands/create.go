package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/worksheet"
)

// Create adds an empty worksheet.
type Create struct {
	sheet int64
	title string
}

func (cmd *Create) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:     "create",
		Short:   "Creates an empty worksheet",
		Example: `  budget-sheets create --sheet 9 --title "Testing"`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if !c.Flags().Changed("sheet") {
				return fmt.Errorf("--sheet is a required option")
			}

			return cmd.Execute(c.Context(), options)
		},
	}

	c.Flags().Int64Var(&cmd.sheet, "sheet", cmd.sheet, "ID for the new worksheet")
	c.Flags().StringVar(&cmd.title, "title", cmd.title, "Title for the new worksheet")

	return c
}

func (cmd *Create) Execute(ctx context.Context, options *Options) error {
	if strings.TrimSpace(cmd.title) == "" {
		return fmt.Errorf("--title is a required option")
	}

	cfg, err := options.load(true)
	if err != nil {
		return err
	}

	h, err := options.connect(ctx, cfg)
	if err != nil {
		return err
	}

	created, err := worksheet.Create(ctx, h, cfg.Spreadsheet, cmd.sheet, cmd.title)
	if err != nil {
		return err
	}

	options.infof("Created worksheet '%s'", created.Title)
	options.printf("%-12d %s\n", created.SheetId, created.Title)

	return nil
}
