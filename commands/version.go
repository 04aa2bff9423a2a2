package commands

import (
	"github.com/spf13/cobra"
)

// VERSION is set at build time with -ldflags "-X ...commands.VERSION=v1.2.3".
var VERSION = "v0.1.0"

// Version prints the budget-sheets version.
type Version struct {
}

func (cmd *Version) Command(options *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Displays the current version",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			options.printf("%s\n", VERSION)
		},
	}
}
