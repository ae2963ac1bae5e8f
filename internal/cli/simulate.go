package cli

import (
	"github.com/spf13/cobra"

	"rtsched"
	"rtsched/pkg/log"
)

func newSimulateCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:     "simulate",
		Short:   "Simulate a task set tick by tick and report every job",
		Aliases: []string{"s", "run"},
		Example: "rtsched simulate -f tasks.yaml --horizon 200 -p 2 --policy preemptive",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, order, err := o.load()
			if err != nil {
				return err
			}
			policy, err := rtsched.ParsePolicy(o.policy)
			if err != nil {
				return err
			}
			if err := o.generateJobs(tasks); err != nil {
				return err
			}
			log.Debug("jobs generated", "tasks", len(tasks), "seed", o.seed, "worst_case", o.worstCase)

			res, err := rtsched.Simulate(tasks, rtsched.Config{
				Processors:  o.processors,
				Horizon:     rtsched.Ttick(o.horizon),
				Order:       order,
				Policy:      policy,
				ClockPeriod: rtsched.Ttick(o.clockPeriod),
			})
			if err != nil {
				return err
			}
			return rtsched.NewReport(tasks, order, res).WriteText(cmd.OutOrStdout())
		},
	}
	o.bind(cmd, true)
	return cmd
}
