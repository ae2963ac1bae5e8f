package rtsched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func advanceN(t *testing.T, pu *ProcessorUnit, from, n Ttick) {
	t.Helper()
	for now := from; now < from+n; now++ {
		require.NoError(t, pu.Advance(now))
	}
}

func TestProcessorSingleJobCompletesAfterExecTimeTicks(t *testing.T) {
	for _, e := range []Ttick{1, 2, 5, 13} {
		pu := NewProcessorUnit(0, 1)
		assert.False(t, pu.Blocked())

		pu.AddJob(preparedJob(t, 1, 1, e, 0, 100))
		assert.True(t, pu.Blocked())
		active, ok := pu.Active()
		require.True(t, ok)
		assert.Equal(t, NotStarted, active.Status(), "started by the next Advance")

		advanceN(t, pu, 0, e-1)
		if e > 1 {
			active, ok = pu.Active()
			require.True(t, ok)
			assert.Equal(t, InProgress, active.Status())
			assert.Equal(t, e-1, active.CompletedTime())
		}

		require.NoError(t, pu.Advance(e-1))
		assert.False(t, pu.Blocked())
		hist := pu.History()
		require.Len(t, hist, 1)
		assert.Equal(t, Completed, hist[0].Status())
		assert.Equal(t, e, hist[0].CompletedTime())
		assert.Equal(t, e, pu.BusyTicks())
	}
}

func TestProcessorDeadlineMissBeatsCompletion(t *testing.T) {
	pu := NewProcessorUnit(0, 1)
	pu.AddJob(preparedJob(t, 1, 1, 4, 0, 3))

	advanceN(t, pu, 0, 3)
	active, ok := pu.Active()
	require.True(t, ok)
	assert.Equal(t, Ttick(3), active.CompletedTime())

	require.NoError(t, pu.Advance(3))
	assert.False(t, pu.Blocked())
	hist := pu.History()
	require.Len(t, hist, 1)
	assert.Equal(t, Missed, hist[0].Status())
	assert.Equal(t, Ttick(3), hist[0].CompletedTime())
	done, _ := hist[0].FinishedAt()
	assert.Equal(t, Ttick(3), done)
}

func TestProcessorBacklogJobMissesWhileWaiting(t *testing.T) {
	pu := NewProcessorUnit(0, 1)
	pu.AddJob(preparedJob(t, 1, 1, 10, 0, 100))
	pu.AddJob(preparedJob(t, 2, 1, 2, 0, 5))
	assert.Equal(t, 2, pu.Load())

	advanceN(t, pu, 0, 5)
	assert.Len(t, pu.Backlog(), 1)
	assert.Empty(t, pu.History())

	require.NoError(t, pu.Advance(5))
	assert.Empty(t, pu.Backlog())
	hist := pu.History()
	require.Len(t, hist, 1)
	assert.Equal(t, 2, hist[0].TaskID())
	assert.Equal(t, Missed, hist[0].Status())
	assert.Equal(t, Ttick(0), hist[0].CompletedTime())

	active, ok := pu.Active()
	require.True(t, ok)
	assert.Equal(t, 1, active.TaskID())
	assert.Equal(t, Ttick(6), active.CompletedTime())
}

func TestProcessorFIFO(t *testing.T) {
	pu := NewProcessorUnit(0, 1)
	pu.AddJob(preparedJob(t, 1, 1, 3, 0, 100))
	pu.AddJob(preparedJob(t, 2, 1, 2, 0, 100))

	advanceN(t, pu, 0, 3)
	hist := pu.History()
	require.Len(t, hist, 1)
	assert.Equal(t, 1, hist[0].TaskID())

	assert.True(t, pu.Blocked(), "B takes over as soon as A completes")
	active, ok := pu.Active()
	require.True(t, ok)
	assert.Equal(t, 2, active.TaskID())
	assert.Equal(t, NotStarted, active.Status())
	assert.Empty(t, pu.Backlog())
	_, ok = pu.Next()
	assert.False(t, ok)

	advanceN(t, pu, 3, 2)
	hist = pu.History()
	require.Len(t, hist, 2)
	assert.Equal(t, 2, hist[1].TaskID())
	done, _ := hist[1].FinishedAt()
	assert.Equal(t, Ttick(4), done)
	assert.Equal(t, 0, pu.Load())
}

func TestProcessorNext(t *testing.T) {
	pu := NewProcessorUnit(0, 1)
	_, ok := pu.Next()
	assert.False(t, ok)

	pu.AddJob(preparedJob(t, 1, 1, 3, 0, 100))
	pu.AddJob(preparedJob(t, 2, 1, 2, 0, 100))
	pu.AddJob(preparedJob(t, 3, 1, 2, 0, 100))
	next, ok := pu.Next()
	require.True(t, ok)
	assert.Equal(t, 2, next.TaskID())
}

func TestProcessorFIFOArrivalAfterCompletionQueuesBehindBacklog(t *testing.T) {
	pu := NewProcessorUnit(0, 1)
	pu.AddJob(preparedJob(t, 1, 1, 2, 0, 100))
	pu.AddJob(preparedJob(t, 2, 1, 3, 0, 100))

	advanceN(t, pu, 0, 2)
	require.Len(t, pu.History(), 1)
	assert.True(t, pu.Blocked())

	pu.AddJob(preparedJob(t, 3, 1, 1, 2, 100))
	active, _ := pu.Active()
	assert.Equal(t, 2, active.TaskID())
	backlog := pu.Backlog()
	require.Len(t, backlog, 1)
	assert.Equal(t, 3, backlog[0].TaskID())

	advanceN(t, pu, 2, 4)
	var order []int
	for _, j := range pu.History() {
		order = append(order, j.TaskID())
	}
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestProcessorPreemptiveArrivalAfterCompletionKeepsRank(t *testing.T) {
	pu := NewPreemptiveUnit(0, 1, map[int]int{1: 0, 2: 1, 3: 2})
	pu.AddJob(preparedJob(t, 1, 1, 1, 0, 100))
	pu.AddJob(preparedJob(t, 2, 1, 3, 0, 100))

	require.NoError(t, pu.Advance(0))
	require.Len(t, pu.History(), 1)

	pu.AddJob(preparedJob(t, 3, 1, 1, 1, 100))
	active, _ := pu.Active()
	assert.Equal(t, 2, active.TaskID())
	next, ok := pu.Next()
	require.True(t, ok)
	assert.Equal(t, 3, next.TaskID())
}

func TestProcessorIdleUnitTakesBacklogHeadFirst(t *testing.T) {
	pu := NewProcessorUnit(0, 1)
	waiting := preparedJob(t, 2, 1, 2, 0, 100)
	pu.backlog.enq(&waiting)

	pu.AddJob(preparedJob(t, 3, 1, 2, 1, 100))
	active, _ := pu.Active()
	assert.Equal(t, 2, active.TaskID())
	backlog := pu.Backlog()
	require.Len(t, backlog, 1)
	assert.Equal(t, 3, backlog[0].TaskID())
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "fifo", FIFO.String())
	assert.Equal(t, "preemptive", Preemptive.String())
	assert.Equal(t, "unknown", Policy(7).String())
	assert.Equal(t, "unknown", Policy(-1).String())

	p, err := ParsePolicy("preemptive")
	require.NoError(t, err)
	assert.Equal(t, Preemptive, p)
	_, err = ParsePolicy("edf")
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestProcessorFIFOIgnoresPriority(t *testing.T) {
	pu := NewProcessorUnit(0, 1)
	pu.AddJob(preparedJob(t, 2, 1, 3, 0, 100))
	require.NoError(t, pu.Advance(0))
	pu.AddJob(preparedJob(t, 1, 1, 1, 1, 100))

	active, _ := pu.Active()
	assert.Equal(t, 2, active.TaskID())
}

func TestProcessorPreemption(t *testing.T) {
	pu := NewPreemptiveUnit(0, 1, map[int]int{1: 0, 2: 1})
	pu.AddJob(preparedJob(t, 2, 1, 4, 0, 100))
	require.NoError(t, pu.Advance(0))

	pu.AddJob(preparedJob(t, 1, 1, 2, 1, 100))
	active, _ := pu.Active()
	assert.Equal(t, 1, active.TaskID())
	backlog := pu.Backlog()
	require.Len(t, backlog, 1)
	assert.Equal(t, InProgress, backlog[0].Status())
	assert.Equal(t, Ttick(1), backlog[0].CompletedTime())

	advanceN(t, pu, 1, 5)
	hist := pu.History()
	require.Len(t, hist, 2)
	assert.Equal(t, 1, hist[0].TaskID())
	assert.Equal(t, 2, hist[1].TaskID())
	first, _ := hist[0].FinishedAt()
	second, _ := hist[1].FinishedAt()
	assert.Equal(t, Ttick(2), first)
	assert.Equal(t, Ttick(5), second)
	assert.Equal(t, Ttick(6), pu.BusyTicks())
}

func TestProcessorPreemptiveBacklogOrder(t *testing.T) {
	pu := NewPreemptiveUnit(0, 1, map[int]int{1: 0, 2: 1, 3: 2})
	pu.AddJob(preparedJob(t, 1, 1, 5, 0, 100))
	pu.AddJob(preparedJob(t, 3, 1, 1, 0, 100))
	pu.AddJob(preparedJob(t, 2, 2, 1, 10, 100))
	pu.AddJob(preparedJob(t, 2, 1, 1, 0, 100))
	pu.AddJob(preparedJob(t, 1, 2, 1, 0, 100))

	var order []int
	for _, j := range pu.Backlog() {
		k, _ := j.Instance()
		order = append(order, j.TaskID()*10+k)
	}
	assert.Equal(t, []int{12, 21, 22, 31}, order)
}

func TestProcessorAdvanceRejectsFinishedActiveJob(t *testing.T) {
	pu := NewProcessorUnit(0, 1)
	j := preparedJob(t, 1, 1, 1, 0, 100)
	require.NoError(t, j.Start())
	require.NoError(t, j.Advance(0))
	pu.active = &j

	assert.ErrorIs(t, pu.Advance(1), ErrInvalidState)
}

func TestProcessorIdleAdvance(t *testing.T) {
	pu := NewProcessorUnit(3, 4)
	advanceN(t, pu, 0, 10)
	assert.Equal(t, Ttick(0), pu.BusyTicks())
	assert.Empty(t, pu.History())
	assert.Equal(t, 3, pu.ID())
	assert.InDelta(t, 0.25, pu.ClockSpeed(), 1e-9)
	assert.Equal(t, 0.0, NewProcessorUnit(0, 0).ClockSpeed())
}

func TestProcessorNeverHoldsJobTwice(t *testing.T) {
	pu := NewPreemptiveUnit(0, 1, map[int]int{1: 0, 2: 1})
	s := NewSampler(3)
	seen := func() map[int]int {
		count := map[int]int{}
		if a, ok := pu.Active(); ok {
			count[a.TaskID()*1000+a.ID()] += 1
		}
		for _, b := range pu.Backlog() {
			count[b.TaskID()*1000+b.ID()] += 1
		}
		for _, h := range pu.History() {
			count[h.TaskID()*1000+h.ID()] += 1
		}
		return count
	}
	id := 0
	for now := Ttick(0); now < 60; now++ {
		if now%3 == 0 {
			id += 1
			task := 1 + id%2
			pu.AddJob(preparedJob(t, task, id, s.Uniform(1, 4), now, now+6))
		}
		require.NoError(t, pu.Advance(now))
		for key, n := range seen() {
			assert.Equal(t, 1, n, "job %d held %d times", key, n)
		}
		assert.Equal(t, pu.Blocked(), pu.active != nil)
	}
}
