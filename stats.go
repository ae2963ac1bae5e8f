package rtsched

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TaskStats aggregates the outcomes of one task's released jobs.
type TaskStats struct {
	TaskID         int
	Released       int
	Completed      int
	Missed         int
	Unfinished     int
	MeanResponse   float64
	StdDevResponse float64
	MaxResponse    float64
	MedianResponse float64
	ObservedWorst  Ttick // largest execution time drawn among released jobs
	MissedByKind   map[DeadlineKind]int
}

func (ts TaskStats) String() string {
	return fmt.Sprintf("task %d: released %d completed %d missed %d unfinished %d response avg %.2f sd %.2f max %.0f",
		ts.TaskID, ts.Released, ts.Completed, ts.Missed, ts.Unfinished, ts.MeanResponse, ts.StdDevResponse, ts.MaxResponse)
}

// Summary aggregates a whole run.
type Summary struct {
	Released    int
	Completed   int
	Missed      int
	Unfinished  int
	MissRatio   float64
	Utilization []float64 // busy ticks / horizon, per processor
	MeanUtil    float64
	Tasks       []TaskStats
}

func summarize(tasks []*Task, res *Result) Summary {
	byTask := make(map[int][]Outcome, len(tasks))
	for _, o := range res.Outcomes {
		byTask[o.TaskID] = append(byTask[o.TaskID], o)
	}

	var sum Summary
	for _, t := range tasks {
		ts := taskStats(t.id, byTask[t.id])
		sum.Released += ts.Released
		sum.Completed += ts.Completed
		sum.Missed += ts.Missed
		sum.Unfinished += ts.Unfinished
		sum.Tasks = append(sum.Tasks, ts)
	}
	if sum.Released > 0 {
		sum.MissRatio = float64(sum.Missed) / float64(sum.Released)
	}
	for _, p := range res.Processors {
		u := 0.0
		if res.Horizon > 0 {
			u = float64(p.BusyTicks) / float64(res.Horizon)
		}
		sum.Utilization = append(sum.Utilization, u)
	}
	sum.MeanUtil = avg(sum.Utilization)
	return sum
}

func taskStats(id int, outcomes []Outcome) TaskStats {
	ts := TaskStats{TaskID: id, Released: len(outcomes), MissedByKind: map[DeadlineKind]int{}}
	var responses []Ttick
	for _, o := range outcomes {
		if o.ExecutionTime > ts.ObservedWorst {
			ts.ObservedWorst = o.ExecutionTime
		}
		switch o.Status {
		case Completed:
			ts.Completed += 1
			r, _ := o.ResponseTime()
			responses = append(responses, r)
		case Missed:
			ts.Missed += 1
			ts.MissedByKind[o.Kind] += 1
		default:
			ts.Unfinished += 1
		}
	}
	if len(responses) == 0 {
		return ts
	}
	x := toFloats(responses)
	sort.Float64s(x)
	ts.MeanResponse = stat.Mean(x, nil)
	if len(x) > 1 {
		ts.StdDevResponse = stat.StdDev(x, nil)
	}
	ts.MaxResponse = floats.Max(x)
	ts.MedianResponse = stat.Quantile(0.5, stat.Empirical, x, nil)
	return ts
}
