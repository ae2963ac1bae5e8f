package rtsched

import (
	"fmt"

	"github.com/pkg/errors"

	"rtsched/pkg/log"
)

// Policy selects how a processor orders its backlog.
type Policy int

const (
	// FIFO runs jobs to completion in arrival order.
	FIFO Policy = iota
	// Preemptive keeps the backlog ordered by task rank, then release
	// time, and lets an arriving job displace a lower ranked active one.
	Preemptive
)

var policyNames = []string{"fifo", "preemptive"}

func (p Policy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "fifo":
		return FIFO, nil
	case "preemptive", "fp":
		return Preemptive, nil
	}
	return FIFO, errors.Wrapf(ErrInvalidParameters, "unknown policy %q", s)
}

// ProcessorUnit executes at most one job per tick and keeps the rest in a
// backlog. Jobs are owned by the unit from AddJob until they land in its
// history.
type ProcessorUnit struct {
	id          int
	clockPeriod Ttick
	policy      Policy
	rank        map[int]int
	active      *Job
	backlog     *Queue
	history     []Job
	busyTicks   Ttick
}

// NewProcessorUnit creates a FIFO unit.
func NewProcessorUnit(id int, clockPeriod Ttick) *ProcessorUnit {
	return &ProcessorUnit{
		id:          id,
		clockPeriod: clockPeriod,
		policy:      FIFO,
		backlog:     newQueue(),
	}
}

// NewPreemptiveUnit creates a unit that orders jobs by rank, keyed by task
// id with lower ranks first. Tasks missing from rank sort last.
func NewPreemptiveUnit(id int, clockPeriod Ttick, rank map[int]int) *ProcessorUnit {
	pu := NewProcessorUnit(id, clockPeriod)
	pu.policy = Preemptive
	pu.rank = rank
	pu.backlog = newPriorityQueue(pu.outranks)
	return pu
}

func (pu *ProcessorUnit) String() string {
	active := "idle"
	if pu.active != nil {
		active = pu.active.String()
	}
	return fmt.Sprintf("processor %d (%v): active %v, backlog %v, history %d",
		pu.id, pu.policy, active, pu.backlog.String(), len(pu.history))
}

func (pu *ProcessorUnit) ID() int { return pu.id }

func (pu *ProcessorUnit) Policy() Policy { return pu.policy }

// ClockSpeed is 1 / clock period. It is informational only; simulation
// always steps in whole ticks.
func (pu *ProcessorUnit) ClockSpeed() float64 {
	if pu.clockPeriod <= 0 {
		return 0
	}
	return 1 / float64(pu.clockPeriod)
}

// Blocked reports whether a job holds the processor.
func (pu *ProcessorUnit) Blocked() bool {
	return pu.active != nil
}

// Active returns a copy of the job holding the processor.
func (pu *ProcessorUnit) Active() (Job, bool) {
	if pu.active == nil {
		return Job{}, false
	}
	return *pu.active, true
}

// Backlog returns copies of the waiting jobs in dequeue order.
func (pu *ProcessorUnit) Backlog() []Job {
	q := pu.backlog.getQ()
	out := make([]Job, len(q))
	for i, j := range q {
		out[i] = *j
	}
	return out
}

// Next returns a copy of the job an idle processor would promote next.
func (pu *ProcessorUnit) Next() (Job, bool) {
	j := pu.backlog.peek()
	if j == nil {
		return Job{}, false
	}
	return *j, true
}

// History returns copies of the completed and missed jobs in the order
// they finished.
func (pu *ProcessorUnit) History() []Job {
	out := make([]Job, len(pu.history))
	copy(out, pu.history)
	return out
}

// Load is the number of jobs held, active plus queued.
func (pu *ProcessorUnit) Load() int {
	n := pu.backlog.qlen()
	if pu.active != nil {
		n += 1
	}
	return n
}

// BusyTicks counts the ticks during which a job made progress.
func (pu *ProcessorUnit) BusyTicks() Ttick {
	return pu.busyTicks
}

func (pu *ProcessorUnit) taskRank(j *Job) int {
	if r, ok := pu.rank[j.taskId]; ok {
		return r
	}
	return len(pu.rank)
}

// outranks orders jobs by task rank, then release time, then instance.
func (pu *ProcessorUnit) outranks(a, b *Job) bool {
	ra, rb := pu.taskRank(a), pu.taskRank(b)
	if ra != rb {
		return ra < rb
	}
	relA, _ := a.ReleaseTime()
	relB, _ := b.ReleaseTime()
	if relA != relB {
		return relA < relB
	}
	ia, _ := a.Instance()
	ib, _ := b.Instance()
	return ia < ib
}

// AddJob hands a job to the processor. An idle processor takes the head of
// its backlog, which is the new job unless others are still waiting, to be
// started on the next Advance; a busy one queues it. Under
// the Preemptive policy a job that outranks the active one takes its place
// and the displaced job returns to the backlog with its progress.
func (pu *ProcessorUnit) AddJob(job Job) {
	j := &job
	switch {
	case pu.active == nil:
		pu.backlog.enq(j)
		pu.active = pu.backlog.deq()
	case pu.policy == Preemptive && pu.outranks(j, pu.active):
		log.Debug("preempt", "processor", pu.id, "task", pu.active.taskId, "job", pu.active.id, "by", j.taskId)
		pu.backlog.enq(pu.active)
		pu.active = j
	default:
		pu.backlog.enq(j)
	}
}

// Advance runs one tick at time now:
//  1. every held job whose deadline has been reached without completing
//     is marked Missed and moved to history,
//  2. an idle processor promotes the head of its backlog,
//  3. the active job is started if needed and performs one unit of work.
//     When it completes it moves to history and the backlog head takes
//     its place, so the processor is never idle while work is queued.
//
// A miss is a state transition, not an error; an error means a job was in a
// state it can never legally be in.
func (pu *ProcessorUnit) Advance(now Ttick) error {
	pu.retireMissed(now)

	if pu.active == nil {
		pu.active = pu.backlog.deq()
	}
	if pu.active == nil {
		return nil
	}

	j := pu.active
	if err := j.Start(); err != nil {
		return errors.Wrapf(err, "processor %d at %v", pu.id, now)
	}
	if err := j.Advance(now); err != nil {
		return errors.Wrapf(err, "processor %d at %v", pu.id, now)
	}
	pu.busyTicks += 1
	if j.Status() == Completed {
		log.Debug("job completed", "processor", pu.id, "task", j.taskId, "job", j.id, "tick", int(now))
		pu.history = append(pu.history, *j)
		pu.active = pu.backlog.deq()
	}
	return nil
}

func (pu *ProcessorUnit) retireMissed(now Ttick) {
	if pu.active != nil && pu.active.CheckDeadline(now) {
		pu.recordMiss(pu.active, now)
		pu.active = nil
	}
	for _, j := range pu.backlog.removeIf(func(j *Job) bool { return j.CheckDeadline(now) }) {
		pu.recordMiss(j, now)
	}
}

func (pu *ProcessorUnit) recordMiss(j *Job, now Ttick) {
	log.Debug("deadline missed", "processor", pu.id, "task", j.taskId, "job", j.id,
		"kind", j.kind.String(), "tick", int(now), "done", int(j.compDone), "of", int(j.execTime))
	pu.history = append(pu.history, *j)
}

// drain returns copies of the jobs still held, active first.
func (pu *ProcessorUnit) drain() []Job {
	var out []Job
	if pu.active != nil {
		out = append(out, *pu.active)
	}
	return append(out, pu.Backlog()...)
}
