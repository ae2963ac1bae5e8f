package rtsched

import (
	"container/heap"
	"sort"
	"strings"
)

// Queue is a processor backlog. With a nil less function it is FIFO;
// otherwise it is a heap popping the least element, with arrival order
// breaking ties.
type Queue struct {
	q    []*queued
	less func(a, b *Job) bool
	seq  int
}

type queued struct {
	job *Job
	seq int
}

func newQueue() *Queue {
	return &Queue{q: make([]*queued, 0)}
}

func newPriorityQueue(less func(a, b *Job) bool) *Queue {
	return &Queue{q: make([]*queued, 0), less: less}
}

func (q *Queue) String() string {
	strs := make([]string, 0, len(q.q))
	for _, e := range q.getQ() {
		strs = append(strs, e.String())
	}
	return "[" + strings.Join(strs, ", ") + "]"
}

func (q *Queue) enq(j *Job) {
	e := &queued{job: j, seq: q.seq}
	q.seq += 1
	if q.less == nil {
		q.q = append(q.q, e)
		return
	}
	heap.Push((*jobHeap)(q), e)
}

func (q *Queue) deq() *Job {
	if len(q.q) == 0 {
		return nil
	}
	if q.less != nil {
		return heap.Pop((*jobHeap)(q)).(*queued).job
	}
	e := q.q[0]
	q.q[0] = nil
	q.q = q.q[1:]
	return e.job
}

// peek returns the job deq would return, without removing it.
func (q *Queue) peek() *Job {
	if len(q.q) == 0 {
		return nil
	}
	return q.q[0].job
}

func (q *Queue) qlen() int {
	return len(q.q)
}

// getQ returns the queued jobs in dequeue order.
func (q *Queue) getQ() []*Job {
	entries := make([]*queued, len(q.q))
	copy(entries, q.q)
	return q.ordered(entries)
}

// removeIf drops every job for which drop returns true and returns them in
// dequeue order.
func (q *Queue) removeIf(drop func(*Job) bool) []*Job {
	var removed []*queued
	kept := q.q[:0]
	for _, e := range q.q {
		if drop(e.job) {
			removed = append(removed, e)
		} else {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(q.q); i++ {
		q.q[i] = nil
	}
	q.q = kept
	if q.less != nil {
		heap.Init((*jobHeap)(q))
	}
	return q.ordered(removed)
}

func (q *Queue) ordered(entries []*queued) []*Job {
	if q.less != nil {
		sort.Sort(&jobHeap{q: entries, less: q.less})
	}
	out := make([]*Job, len(entries))
	for i, e := range entries {
		out[i] = e.job
	}
	return out
}

// jobHeap implements heap.Interface over the queue's entries.
type jobHeap Queue

func (h *jobHeap) Len() int { return len(h.q) }

func (h *jobHeap) Less(i, j int) bool {
	a, b := h.q[i], h.q[j]
	if h.less(a.job, b.job) {
		return true
	}
	if h.less(b.job, a.job) {
		return false
	}
	return a.seq < b.seq
}

func (h *jobHeap) Swap(i, j int) { h.q[i], h.q[j] = h.q[j], h.q[i] }

func (h *jobHeap) Push(x any) {
	h.q = append(h.q, x.(*queued))
}

func (h *jobHeap) Pop() any {
	old := h.q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	h.q = old[:n-1]
	return e
}
