package cli

import (
	"github.com/spf13/cobra"

	"rtsched"
	"rtsched/internal/taskset"
	"rtsched/pkg/env"
)

func newGenerateCmd() *cobra.Command {
	var (
		n        int
		maxRange int
		seed     uint64
	)
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Print a random task set as YAML",
		Aliases: []string{"g", "gen"},
		Example: "rtsched generate -n 4 --range 20 > tasks.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := rtsched.GenerateTasks(n, rtsched.Ttick(maxRange), rtsched.NewSampler(seed))
			if err != nil {
				return err
			}
			return taskset.Encode(cmd.OutOrStdout(), tasks)
		},
	}
	cmd.Flags().IntVarP(&n, "tasks", "n", 2, "number of tasks")
	cmd.Flags().IntVar(&maxRange, "range", 20, "upper bound used for wcet and deadline draws")
	cmd.Flags().Uint64Var(&seed, "seed", env.Variables().Seed, "sampling seed")
	return cmd
}
