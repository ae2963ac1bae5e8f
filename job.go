package rtsched

import (
	"fmt"

	"github.com/markphelps/optional"
	"github.com/pkg/errors"
)

type JobStatus int

const (
	NotStarted JobStatus = iota
	InProgress
	Completed
	Missed
)

func (s JobStatus) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	case Missed:
		return "missed"
	default:
		return "unknown"
	}
}

// terminal reports whether no further transition is possible.
func (s JobStatus) terminal() bool {
	return s == Completed || s == Missed
}

// DeadlineKind is the deadline class a job was released with. It does not
// change how a miss is handled, only how it is reported.
type DeadlineKind int

const (
	Hard DeadlineKind = iota
	Soft
	Firm
)

var deadlineKindNames = []string{"hard", "soft", "firm"}

func (k DeadlineKind) String() string {
	if k >= 0 && int(k) < len(deadlineKindNames) {
		return deadlineKindNames[k]
	}
	return "unknown"
}

// ParseDeadlineKind maps "hard", "soft" or "firm" to a DeadlineKind. The
// empty string is Hard.
func ParseDeadlineKind(s string) (DeadlineKind, error) {
	switch s {
	case "", "hard":
		return Hard, nil
	case "soft":
		return Soft, nil
	case "firm":
		return Firm, nil
	}
	return Hard, errors.Wrapf(ErrInvalidParameters, "unknown deadline kind %q", s)
}

// Job is one released instance of a task. Timing fields stay absent until
// the owning task assigns them and are immutable afterwards.
type Job struct {
	id          int
	taskId      int
	instance    optional.Int
	releaseTime optional.Int
	absDeadline optional.Int
	execTime    Ttick
	compDone    Ttick
	status      JobStatus
	kind        DeadlineKind
	timeDone    optional.Int
}

// NewJob creates a job requiring execTime units of work.
func NewJob(id int, execTime Ttick, kind DeadlineKind) (*Job, error) {
	if execTime <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameters, "job %d: execution time %d must be positive", id, execTime)
	}
	return &Job{
		id:       id,
		execTime: execTime,
		status:   NotStarted,
		kind:     kind,
	}, nil
}

func (j *Job) String() string {
	return fmt.Sprintf("{task %d job %d inst %s rel %s dl %s comp %v/%v %v}",
		j.taskId, j.id, optString(j.instance), optString(j.releaseTime), optString(j.absDeadline),
		j.compDone, j.execTime, j.status)
}

func optString(o optional.Int) string {
	if v, err := o.Get(); err == nil {
		return fmt.Sprint(v)
	}
	return "-"
}

func (j *Job) ID() int { return j.id }

func (j *Job) TaskID() int { return j.taskId }

func (j *Job) ExecutionTime() Ttick { return j.execTime }

func (j *Job) CompletedTime() Ttick { return j.compDone }

func (j *Job) Status() JobStatus { return j.status }

func (j *Job) Kind() DeadlineKind { return j.kind }

// Instance returns the 1-based sequence number of the job within its task.
func (j *Job) Instance() (int, bool) {
	v, err := j.instance.Get()
	return v, err == nil
}

func (j *Job) ReleaseTime() (Ttick, bool) {
	v, err := j.releaseTime.Get()
	return Ttick(v), err == nil
}

func (j *Job) AbsoluteDeadline() (Ttick, bool) {
	v, err := j.absDeadline.Get()
	return Ttick(v), err == nil
}

// FinishedAt is the tick during which the job completed or was found to
// have missed its deadline.
func (j *Job) FinishedAt() (Ttick, bool) {
	v, err := j.timeDone.Get()
	return Ttick(v), err == nil
}

func (j *Job) setInstance(k int) error {
	if j.instance.Present() {
		return errors.Wrapf(ErrInvalidState, "job %d: instance already set", j.id)
	}
	if k < 1 {
		return errors.Wrapf(ErrInvalidParameters, "job %d: instance %d must be >= 1", j.id, k)
	}
	j.instance = optional.NewInt(k)
	return nil
}

func (j *Job) setReleaseTime(t Ttick) error {
	if j.releaseTime.Present() {
		return errors.Wrapf(ErrInvalidState, "job %d: release time already set", j.id)
	}
	j.releaseTime = optional.NewInt(int(t))
	return nil
}

func (j *Job) setAbsoluteDeadline(t Ttick) error {
	if j.absDeadline.Present() {
		return errors.Wrapf(ErrInvalidState, "job %d: absolute deadline already set", j.id)
	}
	j.absDeadline = optional.NewInt(int(t))
	return nil
}

// Start moves a NotStarted job to InProgress. Starting an InProgress job is
// a no-op; starting a finished job is an error.
func (j *Job) Start() error {
	switch j.status {
	case NotStarted:
		j.status = InProgress
	case InProgress:
	default:
		return errors.Wrapf(ErrInvalidState, "job %d: cannot start a %v job", j.id, j.status)
	}
	return nil
}

// Advance performs one unit of work at tick now.
func (j *Job) Advance(now Ttick) error {
	if j.status != InProgress {
		return errors.Wrapf(ErrInvalidState, "job %d: cannot advance a %v job", j.id, j.status)
	}
	j.compDone += 1
	if j.compDone >= j.execTime {
		j.compDone = j.execTime
		j.status = Completed
		j.timeDone = optional.NewInt(int(now))
	}
	return nil
}

// CheckDeadline marks the job Missed when now has reached its absolute
// deadline and it has not completed. It returns true only on the tick the
// transition happens.
func (j *Job) CheckDeadline(now Ttick) bool {
	if j.status.terminal() {
		return false
	}
	dl, ok := j.AbsoluteDeadline()
	if !ok || now < dl {
		return false
	}
	j.status = Missed
	j.timeDone = optional.NewInt(int(now))
	return true
}
