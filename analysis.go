package rtsched

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"rtsched/pkg/log"
)

// Analysis is the response-time analysis outcome for one task.
type Analysis struct {
	TaskID       int
	Rank         int
	Deadline     Ttick
	ResponseTime Ttick // fixed point, or the first iterate past the deadline
	Iterations   int
	Schedulable  bool
}

func (a Analysis) String() string {
	verdict := "unschedulable"
	if a.Schedulable {
		verdict = "schedulable"
	}
	return fmt.Sprintf("task %d: R=%v D=%v after %d iterations, %s",
		a.TaskID, a.ResponseTime, a.Deadline, a.Iterations, verdict)
}

// ResponseTimeAnalysis computes, for every task in list order, the smallest
// fixed point of
//
//	R(0)   = wcet_i
//	R(k+1) = wcet_i + sum_{j in HP(i)} ceil(R(k)/period_j) * wcet_j
//
// stopping early once an iterate exceeds the relative deadline. HP(i) is
// given by order. The tasks are only read.
func ResponseTimeAnalysis(tasks []*Task, order PriorityOrder) []Analysis {
	rank := order.ranks(tasks)
	out := make([]Analysis, len(tasks))
	for i, t := range tasks {
		hp := order.interferers(tasks, rank, i)
		res := Analysis{TaskID: t.id, Rank: rank[i], Deadline: t.deadline}

		r := t.wcet
		for {
			res.Iterations += 1
			if r > t.deadline {
				break
			}
			next := t.wcet
			for _, j := range hp {
				next += ceilDiv(r, tasks[j].period) * tasks[j].wcet
			}
			if next == r {
				res.Schedulable = true
				break
			}
			r = next
		}
		res.ResponseTime = r
		out[i] = res
		log.Debug("response time analysis", "task", t.id, "rank", rank[i],
			"interferers", len(hp), "response", int(r), "schedulable", res.Schedulable)
	}
	return out
}

// Schedulable returns the ids of the tasks whose response time converges
// at or below their relative deadline, in list order.
func Schedulable(tasks []*Task, order PriorityOrder) []int {
	var ids []int
	for _, a := range ResponseTimeAnalysis(tasks, order) {
		if a.Schedulable {
			ids = append(ids, a.TaskID)
		}
	}
	return ids
}

// Utilization is the total processor demand sum(wcet/period).
func Utilization(tasks []*Task) float64 {
	u := make([]float64, len(tasks))
	for i, t := range tasks {
		u[i] = t.Utilization()
	}
	return floats.Sum(u)
}
