package commands

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/rollover"
)

// Rollover creates the worksheets for a new month from the templates in the
// configuration file.
type Rollover struct {
	month  string
	dryrun bool
	now    func() time.Time
}

func (cmd *Rollover) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:   "rollover",
		Short: "Creates the worksheets for a new budget month",
		Long: `Copies each template worksheet listed in the configuration file, renames the
copy for the month (e.g. 'Transactions {{.Month}}' becomes 'Transactions
December') and clears the configured blocks of cells on the copy. Nothing is
changed if a worksheet with one of the new titles already exists.`,
		Example: `  budget-sheets --config rollover.yaml rollover
  budget-sheets --config rollover.yaml rollover --month December --dryrun`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context(), options)
		},
	}

	c.Flags().StringVar(&cmd.month, "month", cmd.month, "Month to create e.g. 'December' or '2026-12'. Defaults to next month")
	c.Flags().BoolVar(&cmd.dryrun, "dryrun", cmd.dryrun, "Reports the worksheets that would be created without changing anything")

	return c
}

func (cmd *Rollover) Execute(ctx context.Context, options *Options) error {
	now := time.Now
	if cmd.now != nil {
		now = cmd.now
	}

	month, err := rollover.ParseMonth(cmd.month, now())
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

	plan := rollover.Plan{
		Spreadsheet: cfg.Spreadsheet,
		Templates:   cfg.Templates,
	}

	log := options.logger()
	results, err := rollover.Run(ctx, h, plan, month, rollover.Options{DryRun: cmd.dryrun, Log: &log})

	for _, r := range results {
		switch {
		case cmd.dryrun:
			options.printf("%-12d -> %-30s clear: %s\n", r.Template, "'"+r.Title+"'", strings.Join(r.Planned, ", "))
		case r.Complete():
			options.printf("%-12d -> %-12d %s\n", r.Template, r.SheetID, r.Title)
		case r.Copied:
			options.warnf("Worksheet %d was copied to %d but not completed", r.Template, r.SheetID)
		}
	}

	return err
}
