package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/worksheet"
)

type Rename struct {
	sheet int64
	title string
}

func (cmd *Rename) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:     "rename",
		Short:   "Renames a worksheet",
		Example: `  budget-sheets rename --sheet 81190407 --title "New Name for New Sheet"`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if !c.Flags().Changed("sheet") {
				return fmt.Errorf("--sheet is a required option")
			}

			return cmd.Execute(c.Context(), options)
		},
	}

	c.Flags().Int64Var(&cmd.sheet, "sheet", cmd.sheet, "ID of the worksheet to rename")
	c.Flags().StringVar(&cmd.title, "title", cmd.title, "New worksheet title")

	return c
}

func (cmd *Rename) Execute(ctx context.Context, options *Options) error {
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

	renamed, err := worksheet.Rename(ctx, h, cfg.Spreadsheet, cmd.sheet, cmd.title)
	if err != nil {
		return err
	}

	options.infof("Renamed worksheet %d", renamed.SheetId)
	options.printf("%-12d %s\n", renamed.SheetId, renamed.Title)

	return nil
}
