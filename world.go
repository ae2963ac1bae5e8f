package rtsched

import (
	"sort"

	"github.com/pkg/errors"

	"rtsched/pkg/log"
)

// Config describes a simulation run.
type Config struct {
	Processors  int
	Horizon     Ttick
	Order       PriorityOrder
	Policy      Policy
	ClockPeriod Ttick
}

// World drives time forward, releasing the tasks' jobs onto the processors
// at their release times until the horizon is reached. It owns the tasks and
// processors for the length of a run.
type World struct {
	currTick Ttick
	horizon  Ttick
	order    PriorityOrder
	tasks    []*Task
	dispatch []*Task
	procs    []*ProcessorUnit
}

// NewWorld takes tasks in list order; the dispatch order within a tick
// follows order.
func NewWorld(tasks []*Task, horizon Ttick, order PriorityOrder) *World {
	return &World{
		horizon:  horizon,
		order:    order,
		tasks:    tasks,
		dispatch: order.sortedByRank(tasks),
	}
}

// AddProcessor attaches a processor. Processors receive jobs in the order
// they were added when their loads tie.
func (w *World) AddProcessor(pu *ProcessorUnit) {
	w.procs = append(w.procs, pu)
}

// SetupProcessors attaches n processors with ids 0..n-1 using policy.
func (w *World) SetupProcessors(n int, clockPeriod Ttick, policy Policy) {
	rank := w.order.rankByTask(w.tasks)
	for i := 0; i < n; i++ {
		if policy == Preemptive {
			w.AddProcessor(NewPreemptiveUnit(i, clockPeriod, rank))
		} else {
			w.AddProcessor(NewProcessorUnit(i, clockPeriod))
		}
	}
}

func (w *World) CurrentTick() Ttick { return w.currTick }

func (w *World) Processors() []*ProcessorUnit { return w.procs }

// ready checks that there is a processor and that every task has jobs.
func (w *World) ready() error {
	if len(w.procs) == 0 {
		return errors.Wrap(ErrNotReady, "no processor configured")
	}
	if len(w.tasks) == 0 {
		return errors.Wrap(ErrNotReady, "no tasks configured")
	}
	for _, t := range w.tasks {
		if !t.hasJobs() {
			return errors.Wrapf(ErrNotReady, "task %d has no jobs", t.id)
		}
	}
	return nil
}

// pickProcessor returns the least loaded processor, lowest index on ties.
func (w *World) pickProcessor() *ProcessorUnit {
	best := w.procs[0]
	for _, pu := range w.procs[1:] {
		if pu.Load() < best.Load() {
			best = pu
		}
	}
	return best
}

// releaseJobs hands every job released at the current tick to a processor,
// higher ranked tasks first.
func (w *World) releaseJobs() {
	for _, t := range w.dispatch {
		for _, j := range t.releasedAt(w.currTick) {
			pu := w.pickProcessor()
			log.Debug("job released", "tick", int(w.currTick), "task", t.id, "job", j.id, "processor", pu.id)
			pu.AddJob(j)
		}
	}
}

// Tick releases, advances every processor once, and moves time forward.
func (w *World) Tick() error {
	if len(w.procs) == 0 {
		return errors.Wrapf(ErrNotReady, "no processor configured at %v", w.currTick)
	}
	w.releaseJobs()
	for _, pu := range w.procs {
		if err := pu.Advance(w.currTick); err != nil {
			return err
		}
	}
	w.currTick += 1
	return nil
}

// Run checks readiness and ticks until the horizon.
func (w *World) Run() (*Result, error) {
	if err := w.ready(); err != nil {
		return nil, err
	}
	log.Info("simulation started", "tasks", len(w.tasks), "processors", len(w.procs),
		"horizon", int(w.horizon), "order", w.order.String())
	for w.currTick < w.horizon {
		if err := w.Tick(); err != nil {
			return nil, errors.Wrapf(err, "simulation aborted at %v", w.currTick)
		}
	}
	res := w.result()
	log.Info("simulation finished", "ticks", int(w.currTick), "completed", res.Summary.Completed,
		"missed", res.Summary.Missed, "unfinished", res.Summary.Unfinished)
	return res, nil
}

// Outcome is what happened to one released job.
type Outcome struct {
	TaskID        int
	JobID         int
	Instance      int
	Processor     int
	Release       Ttick
	Deadline      Ttick
	ExecutionTime Ttick
	CompletedTime Ttick
	FinishedAt    Ttick // valid for Completed and Missed
	Status        JobStatus
	Kind          DeadlineKind
}

// ResponseTime is the time from release to completion, or false when the
// job did not complete.
func (o Outcome) ResponseTime() (Ttick, bool) {
	if o.Status != Completed {
		return 0, false
	}
	return o.FinishedAt + 1 - o.Release, true
}

func newOutcome(j *Job, processor int) Outcome {
	o := Outcome{
		TaskID:        j.taskId,
		JobID:         j.id,
		Processor:     processor,
		ExecutionTime: j.execTime,
		CompletedTime: j.compDone,
		Status:        j.status,
		Kind:          j.kind,
	}
	o.Instance, _ = j.Instance()
	o.Release, _ = j.ReleaseTime()
	o.Deadline, _ = j.AbsoluteDeadline()
	o.FinishedAt, _ = j.FinishedAt()
	return o
}

// ProcessorResult is one processor's audit log.
type ProcessorResult struct {
	ID         int
	History    []Job
	BusyTicks  Ttick
	ClockSpeed float64
}

// Result is the outcome of a run: per processor histories, one Outcome per
// released job ordered by task then instance, and summary statistics.
type Result struct {
	Horizon    Ttick
	Processors []ProcessorResult
	Outcomes   []Outcome
	Summary    Summary
}

func (w *World) result() *Result {
	res := &Result{Horizon: w.horizon}
	for _, pu := range w.procs {
		res.Processors = append(res.Processors, ProcessorResult{
			ID:         pu.id,
			History:    pu.History(),
			BusyTicks:  pu.busyTicks,
			ClockSpeed: pu.ClockSpeed(),
		})
		for i := range pu.history {
			res.Outcomes = append(res.Outcomes, newOutcome(&pu.history[i], pu.id))
		}
		for _, j := range pu.drain() {
			res.Outcomes = append(res.Outcomes, newOutcome(&j, pu.id))
		}
	}
	sort.SliceStable(res.Outcomes, func(a, b int) bool {
		oa, ob := res.Outcomes[a], res.Outcomes[b]
		if oa.TaskID != ob.TaskID {
			return oa.TaskID < ob.TaskID
		}
		return oa.Instance < ob.Instance
	})
	res.Summary = summarize(w.tasks, res)
	return res
}

// Simulate generates no jobs; every task must already have some.
func Simulate(tasks []*Task, cfg Config) (*Result, error) {
	if cfg.Processors <= 0 {
		return nil, errors.Wrapf(ErrNotReady, "%d processors requested", cfg.Processors)
	}
	w := NewWorld(tasks, cfg.Horizon, cfg.Order)
	w.SetupProcessors(cfg.Processors, cfg.ClockPeriod, cfg.Policy)
	return w.Run()
}

// Run simulates tasks in list order on processorCount FIFO processors.
func Run(tasks []*Task, processorCount int, horizon Ttick) (*Result, error) {
	return Simulate(tasks, Config{
		Processors:  processorCount,
		Horizon:     horizon,
		ClockPeriod: 1,
	})
}
