package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/worksheet"
)

// Delete removes a worksheet. There is no undo.
type Delete struct {
	sheet int64
}

func (cmd *Delete) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:     "delete",
		Short:   "Deletes a worksheet",
		Example: `  budget-sheets delete --sheet 9`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if !c.Flags().Changed("sheet") {
				return fmt.Errorf("--sheet is a required option")
			}

			return cmd.Execute(c.Context(), options)
		},
	}

	c.Flags().Int64Var(&cmd.sheet, "sheet", cmd.sheet, "ID of the worksheet to delete")

	return c
}

func (cmd *Delete) Execute(ctx context.Context, options *Options) error {
	cfg, err := options.load(true)
	if err != nil {
		return err
	}

	h, err := options.connect(ctx, cfg)
	if err != nil {
		return err
	}

	if err := worksheet.Delete(ctx, h, cfg.Spreadsheet, cmd.sheet); err != nil {
		return err
	}

	options.infof("Deleted worksheet %d", cmd.sheet)

	return nil
}
