package rtsched

import (
	"fmt"

	"github.com/pkg/errors"
)

// Task is a periodic generator of jobs. It owns the canonical job records;
// processors only ever receive copies.
type Task struct {
	id       int
	wcet     Ttick
	bcet     Ttick
	deadline Ttick
	period   Ttick
	phase    Ttick
	priority int
	kind     DeadlineKind
	jobs     []*Job
}

// NewTask validates 0 < bcet <= wcet <= deadline and a positive period.
func NewTask(id int, wcet, bcet, deadline, period Ttick) (*Task, error) {
	switch {
	case bcet <= 0:
		return nil, errors.Wrapf(ErrInvalidParameters, "task %d: bcet %d must be positive", id, bcet)
	case bcet > wcet:
		return nil, errors.Wrapf(ErrInvalidParameters, "task %d: bcet %d exceeds wcet %d", id, bcet, wcet)
	case deadline <= 0:
		return nil, errors.Wrapf(ErrInvalidParameters, "task %d: deadline %d must be positive", id, deadline)
	case period <= 0:
		return nil, errors.Wrapf(ErrInvalidParameters, "task %d: period %d must be positive", id, period)
	case wcet > deadline:
		return nil, errors.Wrapf(ErrInvalidParameters, "task %d: wcet %d exceeds deadline %d", id, wcet, deadline)
	}
	return &Task{
		id:       id,
		wcet:     wcet,
		bcet:     bcet,
		deadline: deadline,
		period:   period,
		kind:     Hard,
	}, nil
}

func (t *Task) String() string {
	return fmt.Sprintf("{task %d wcet %v bcet %v dl %v period %v phase %v prio %d jobs %d}",
		t.id, t.wcet, t.bcet, t.deadline, t.period, t.phase, t.priority, len(t.jobs))
}

func (t *Task) ID() int { return t.id }

func (t *Task) WCET() Ttick { return t.wcet }

func (t *Task) BCET() Ttick { return t.bcet }

func (t *Task) RelativeDeadline() Ttick { return t.deadline }

func (t *Task) Period() Ttick { return t.period }

func (t *Task) Phase() Ttick { return t.phase }

func (t *Task) Priority() int { return t.priority }

func (t *Task) Kind() DeadlineKind { return t.kind }

// SetPhase sets the release offset. Jobs already generated keep their
// release times; call GenerateJobs again to apply it.
func (t *Task) SetPhase(phase Ttick) error {
	if phase < 0 {
		return errors.Wrapf(ErrInvalidParameters, "task %d: phase %d must not be negative", t.id, phase)
	}
	t.phase = phase
	return nil
}

// SetPriority sets the value used by the ExplicitPriority ordering; lower
// values run first.
func (t *Task) SetPriority(priority int) {
	t.priority = priority
}

// SetDeadlineKind sets the class given to subsequently generated jobs.
func (t *Task) SetDeadlineKind(kind DeadlineKind) {
	t.kind = kind
}

// Utilization is wcet / period.
func (t *Task) Utilization() float64 {
	return float64(t.wcet) / float64(t.period)
}

// releaseTimeFor computes phase + period*(k-1) for an instanced job.
func (t *Task) releaseTimeFor(j *Job) (Ttick, error) {
	k, ok := j.Instance()
	if !ok {
		return 0, errors.Wrapf(ErrUninstancedJob, "task %d job %d", t.id, j.id)
	}
	return t.phase + t.period*Ttick(k-1), nil
}

// deadlineFor computes release + relative deadline. The release time is
// always assigned first, so the job must already carry one.
func (t *Task) deadlineFor(j *Job) (Ttick, error) {
	rel, ok := j.ReleaseTime()
	if !ok {
		return 0, errors.Wrapf(ErrUninstancedJob, "task %d job %d has no release time", t.id, j.id)
	}
	return rel + t.deadline, nil
}

// prepare assigns instance, release time and absolute deadline, in that order.
func (t *Task) prepare(j *Job, k int) error {
	j.taskId = t.id
	if err := j.setInstance(k); err != nil {
		return err
	}
	rel, err := t.releaseTimeFor(j)
	if err != nil {
		return err
	}
	if err := j.setReleaseTime(rel); err != nil {
		return err
	}
	dl, err := t.deadlineFor(j)
	if err != nil {
		return err
	}
	return j.setAbsoluteDeadline(dl)
}

// GenerateJobs replaces the job sequence with n new jobs whose execution
// times are drawn from [bcet, wcet].
func (t *Task) GenerateJobs(n int, s Sampler) error {
	if n < 0 {
		return errors.Wrapf(ErrInvalidParameters, "task %d: cannot generate %d jobs", t.id, n)
	}
	jobs := make([]*Job, 0, n)
	for k := 1; k <= n; k++ {
		j, err := NewJob(k, s.Uniform(t.bcet, t.wcet), t.kind)
		if err != nil {
			return err
		}
		if err := t.prepare(j, k); err != nil {
			return err
		}
		jobs = append(jobs, j)
	}
	t.jobs = jobs
	return nil
}

// JobsForHorizon is the number of releases that fall strictly before horizon.
func (t *Task) JobsForHorizon(horizon Ttick) int {
	if horizon <= t.phase {
		return 0
	}
	return int(ceilDiv(horizon-t.phase, t.period))
}

// Jobs returns copies of the generated jobs in instance order.
func (t *Task) Jobs() []Job {
	out := make([]Job, len(t.jobs))
	for i, j := range t.jobs {
		out[i] = *j
	}
	return out
}

func (t *Task) hasJobs() bool {
	return len(t.jobs) > 0
}

// releasedAt returns copies of the jobs released exactly at tick now.
func (t *Task) releasedAt(now Ttick) []Job {
	var out []Job
	for _, j := range t.jobs {
		if rel, ok := j.ReleaseTime(); ok && rel == now {
			out = append(out, *j)
		}
	}
	return out
}

// JobByID looks a job up by id.
func (t *Task) JobByID(id int) (Job, error) {
	return t.findJob(id, func(j *Job) (int, bool) { return j.id, true })
}

// JobByInstance looks a job up by its instance number.
func (t *Task) JobByInstance(instance int) (Job, error) {
	return t.findJob(instance, (*Job).Instance)
}

// findJob returns the first job whose key equals want.
func (t *Task) findJob(want int, key func(*Job) (int, bool)) (Job, error) {
	for _, j := range t.jobs {
		if k, ok := key(j); ok && k == want {
			return *j, nil
		}
	}
	return Job{}, errors.Wrapf(ErrNotFound, "task %d: job %d", t.id, want)
}
