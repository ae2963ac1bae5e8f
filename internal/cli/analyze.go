package cli

import (
	"github.com/spf13/cobra"

	"rtsched"
)

func newAnalyzeCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:     "analyze",
		Short:   "Run response-time analysis on a task set",
		Aliases: []string{"a", "rta"},
		Example: "rtsched analyze -f tasks.yaml --order rm",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, order, err := o.load()
			if err != nil {
				return err
			}
			return rtsched.NewReport(tasks, order, nil).WriteText(cmd.OutOrStdout())
		},
	}
	o.bind(cmd, false)
	return cmd
}
