package rtsched

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// PriorityOrder decides which tasks run ahead of which. Every ordering
// breaks ties by position in the task list, so the result is total and
// deterministic.
type PriorityOrder int

const (
	// ListOrder ranks tasks by their index in the list, first is highest.
	ListOrder PriorityOrder = iota
	// RateMonotonic ranks shorter periods higher.
	RateMonotonic
	// DeadlineMonotonic ranks shorter relative deadlines higher.
	DeadlineMonotonic
	// ExplicitPriority ranks lower Task.Priority values higher.
	ExplicitPriority
	// AllOthers treats every other task as interference. It exists to
	// compare against analyses that ignore priorities; for dispatch it
	// behaves like ListOrder.
	AllOthers
)

var priorityOrderNames = []string{"list", "rm", "dm", "explicit", "all"}

func (o PriorityOrder) String() string {
	if o >= 0 && int(o) < len(priorityOrderNames) {
		return priorityOrderNames[o]
	}
	return "unknown"
}

func ParsePriorityOrder(s string) (PriorityOrder, error) {
	switch strings.ToLower(s) {
	case "", "list":
		return ListOrder, nil
	case "rm", "rate-monotonic":
		return RateMonotonic, nil
	case "dm", "deadline-monotonic":
		return DeadlineMonotonic, nil
	case "explicit":
		return ExplicitPriority, nil
	case "all", "all-others":
		return AllOthers, nil
	}
	return ListOrder, errors.Wrapf(ErrInvalidParameters, "unknown priority order %q", s)
}

// ranks returns rank[i] for tasks[i]; rank 0 is the highest priority.
func (o PriorityOrder) ranks(tasks []*Task) []int {
	idx := make([]int, len(tasks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := tasks[idx[a]], tasks[idx[b]]
		switch o {
		case RateMonotonic:
			return ta.period < tb.period
		case DeadlineMonotonic:
			return ta.deadline < tb.deadline
		case ExplicitPriority:
			return ta.priority < tb.priority
		}
		return false
	})
	rank := make([]int, len(tasks))
	for r, i := range idx {
		rank[i] = r
	}
	return rank
}

// interferers returns the indices of the tasks that delay tasks[i], in rank order.
func (o PriorityOrder) interferers(tasks []*Task, rank []int, i int) []int {
	var hp []int
	for j := range tasks {
		if j == i {
			continue
		}
		if o == AllOthers || rank[j] < rank[i] {
			hp = append(hp, j)
		}
	}
	sort.Slice(hp, func(a, b int) bool { return rank[hp[a]] < rank[hp[b]] })
	return hp
}

// rankByTask maps task ids to ranks for the processors.
func (o PriorityOrder) rankByTask(tasks []*Task) map[int]int {
	rank := o.ranks(tasks)
	m := make(map[int]int, len(tasks))
	for i, t := range tasks {
		m[t.id] = rank[i]
	}
	return m
}

// sortedByRank returns the tasks in dispatch order without touching the input.
func (o PriorityOrder) sortedByRank(tasks []*Task) []*Task {
	rank := o.ranks(tasks)
	out := make([]*Task, len(tasks))
	for i, t := range tasks {
		out[rank[i]] = t
	}
	return out
}
