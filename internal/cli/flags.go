package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"rtsched"
	"rtsched/internal/taskset"
	"rtsched/pkg/env"
)

// options are the flags shared by analyze and simulate. Defaults come from
// the environment.
type options struct {
	file        string
	order       string
	policy      string
	horizon     int
	processors  int
	jobsPerTask int
	seed        uint64
	clockPeriod int
	worstCase   bool
}

func (o *options) bind(cmd *cobra.Command, simulate bool) {
	vars := env.Variables()
	flags := cmd.Flags()
	flags.StringVarP(&o.file, "file", "f", "", "task set YAML file")
	flags.StringVar(&o.order, "order", vars.Priority, "priority order: list, rm, dm, explicit or all")
	_ = cmd.MarkFlagRequired("file")
	if !simulate {
		return
	}
	flags.StringVar(&o.policy, "policy", vars.Policy, "processor policy: fifo or preemptive")
	flags.IntVar(&o.horizon, "horizon", vars.Horizon, "number of ticks to simulate")
	flags.IntVarP(&o.processors, "processors", "p", vars.Processors, "number of processors")
	flags.IntVar(&o.jobsPerTask, "jobs", vars.JobsPerTask, "jobs per task, 0 derives them from the horizon")
	flags.Uint64Var(&o.seed, "seed", vars.Seed, "execution time sampling seed")
	flags.IntVar(&o.clockPeriod, "clock-period", vars.ClockPeriod, "nominal processor clock period")
	flags.BoolVar(&o.worstCase, "worst-case", false, "run every job for its task's wcet")
}

func (o *options) load() ([]*rtsched.Task, rtsched.PriorityOrder, error) {
	order, err := rtsched.ParsePriorityOrder(o.order)
	if err != nil {
		return nil, order, err
	}
	tasks, err := taskset.Load(o.file)
	if err != nil {
		return nil, order, err
	}
	return tasks, order, nil
}

func (o *options) sampler() rtsched.Sampler {
	if o.worstCase {
		return rtsched.WorstCase{}
	}
	return rtsched.NewSampler(o.seed)
}

// generateJobs gives every task its jobs for the run.
func (o *options) generateJobs(tasks []*rtsched.Task) error {
	s := o.sampler()
	for _, t := range tasks {
		n := o.jobsPerTask
		if n <= 0 {
			n = t.JobsForHorizon(rtsched.Ttick(o.horizon))
		}
		if err := t.GenerateJobs(n, s); err != nil {
			return errors.Wrapf(err, "failed to generate jobs for task %d", t.ID())
		}
	}
	return nil
}
