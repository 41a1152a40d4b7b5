// Package cli implements the at-harness command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "at-harness",
		Short:        "at-harness - AT command check runner for modem-class devices",
		SilenceUsage: true,
	}

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newTermCmd())
	cmd.AddCommand(newTraceCmd())
	return cmd
}
