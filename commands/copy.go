package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/config"
	"github.com/budgetops/budget-sheets/worksheet"
)

// Copy duplicates a worksheet, optionally into another spreadsheet.
type Copy struct {
	sheet int64
	to    string
}

func (cmd *Copy) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:   "copy",
		Short: "Copies a worksheet",
		Long: `Copies a worksheet to a new worksheet titled 'Copy of <title>' in the same
spreadsheet, or in the spreadsheet given by --to.`,
		Example: `  budget-sheets copy --sheet 1164849594
  budget-sheets copy --sheet 1164849594 --to "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if !c.Flags().Changed("sheet") {
				return fmt.Errorf("--sheet is a required option")
			}

			return cmd.Execute(c.Context(), options)
		},
	}

	c.Flags().Int64Var(&cmd.sheet, "sheet", cmd.sheet, "ID of the worksheet to copy")
	c.Flags().StringVar(&cmd.to, "to", cmd.to, "Destination spreadsheet ID or URL. Defaults to the source spreadsheet")

	return c
}

func (cmd *Copy) Execute(ctx context.Context, options *Options) error {
	cfg, err := options.load(true)
	if err != nil {
		return err
	}

	destination := ""
	if cmd.to != "" {
		if destination, err = config.SpreadsheetID(cmd.to); err != nil {
			return err
		}
	}

	h, err := options.connect(ctx, cfg)
	if err != nil {
		return err
	}

	copied, err := worksheet.Copy(ctx, h, cfg.Spreadsheet, cmd.sheet, destination)
	if err != nil {
		return err
	}

	options.infof("Copied worksheet %d", cmd.sheet)
	options.printf("%-12d %s\n", copied.SheetId, copied.Title)

	return nil
}
