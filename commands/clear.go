package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/worksheet"
)

// Clear removes the values from a worksheet, an A1 range or a block of rows
// and columns on a worksheet. Formatting is left unchanged.
type Clear struct {
	sheet    int64
	hasSheet bool
	area     string
	rows     string
	columns  string
}

func (cmd *Clear) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:   "clear",
		Short: "Clears the values in a worksheet or range",
		Long: `Clears the values in a whole worksheet (--sheet), an A1 range (--range) or a
block of cells on a worksheet (--sheet with --rows and/or --columns). Rows and
columns are zero-based 'start:end' index pairs with an exclusive end, either of
which may be omitted.`,
		Example: `  budget-sheets clear --sheet 81190407
  budget-sheets clear --range "Transactions December!B5:I80"
  budget-sheets clear --sheet 1116040579 --rows 4:80 --columns 1:9`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cmd.hasSheet = c.Flags().Changed("sheet")

			return cmd.Execute(c.Context(), options)
		},
	}

	flags := c.Flags()
	flags.Int64Var(&cmd.sheet, "sheet", cmd.sheet, "ID of the worksheet to clear")
	flags.StringVar(&cmd.area, "range", cmd.area, "A1 range to clear e.g. 'Transactions!B5:I80'")
	flags.StringVar(&cmd.rows, "rows", cmd.rows, "Rows to clear on --sheet e.g. '4:80'")
	flags.StringVar(&cmd.columns, "columns", cmd.columns, "Columns to clear on --sheet e.g. '1:9'")

	return c
}

func (cmd *Clear) Execute(ctx context.Context, options *Options) error {
	target, err := cmd.target()
	if err != nil {
		return err
	}

	cfg, err := options.load(true)
	if err != nil {
		return err
	}

	h, err := options.connect(ctx, cfg)
	if err != nil {
		return err
	}

	cleared, err := worksheet.Clear(ctx, h, cfg.Spreadsheet, target)
	if err != nil {
		return err
	}

	options.infof("Cleared %v", target)
	for _, r := range cleared.Ranges {
		options.printf("%s\n", r)
	}

	return nil
}

func (cmd *Clear) target() (worksheet.Target, error) {
	area := strings.TrimSpace(cmd.area)

	switch {
	case area != "" && cmd.hasSheet:
		return nil, fmt.Errorf("--range and --sheet are mutually exclusive")

	case area != "" && (cmd.rows != "" || cmd.columns != ""):
		return nil, fmt.Errorf("--rows and --columns require --sheet")

	case area != "":
		return worksheet.Range(area), nil

	case !cmd.hasSheet:
		return nil, fmt.Errorf("one of --sheet or --range is required")

	case cmd.rows == "" && cmd.columns == "":
		return worksheet.Sheet(cmd.sheet), nil
	}

	g := worksheet.GridRange{SheetID: cmd.sheet}

	if cmd.rows != "" {
		from, to, err := span(cmd.rows)
		if err != nil {
			return nil, fmt.Errorf("invalid --rows (%w)", err)
		}

		g.StartRow, g.EndRow = from, to
	}

	if cmd.columns != "" {
		from, to, err := span(cmd.columns)
		if err != nil {
			return nil, fmt.Errorf("invalid --columns (%w)", err)
		}

		g.StartColumn, g.EndColumn = from, to
	}

	return worksheet.Grid(g), nil
}
