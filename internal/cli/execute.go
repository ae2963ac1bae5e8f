// Package cli wires the rtsched commands together.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Execute builds the command tree and executes commands.
func Execute() error {
	return NewCommand(os.Stdout).Execute()
}

// NewCommand returns the root command writing reports to out.
func NewCommand(out io.Writer) *cobra.Command {
	command := &cobra.Command{
		Use:           "rtsched",
		Short:         "Fixed-priority real-time schedulability analysis and simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}
	command.SetOut(out)

	command.AddCommand(
		newAnalyzeCmd(),
		newSimulateCmd(),
		newGenerateCmd(),
	)
	return command
}
