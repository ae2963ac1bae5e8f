package rtsched

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Report pairs the analytical verdict with an optional simulation result.
type Report struct {
	Order       PriorityOrder
	Utilization float64
	Analysis    []Analysis
	Result      *Result
}

// NewReport runs the response-time analysis; res may be nil.
func NewReport(tasks []*Task, order PriorityOrder, res *Result) *Report {
	return &Report{
		Order:       order,
		Utilization: Utilization(tasks),
		Analysis:    ResponseTimeAnalysis(tasks, order),
		Result:      res,
	}
}

// AllSchedulable reports whether every task passed the analysis.
func (r *Report) AllSchedulable() bool {
	for _, a := range r.Analysis {
		if !a.Schedulable {
			return false
		}
	}
	return true
}

func (r *Report) WriteText(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "response time analysis (%v order), utilization %.3f\n", r.Order, r.Utilization)
	fmt.Fprintln(w, "task\trank\tR\tD\titer\tverdict")
	for _, a := range r.Analysis {
		verdict := "unschedulable"
		if a.Schedulable {
			verdict = "schedulable"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\n", a.TaskID, a.Rank, a.ResponseTime, a.Deadline, a.Iterations, verdict)
	}
	if r.AllSchedulable() {
		fmt.Fprintln(w, "the system is schedulable")
	} else {
		fmt.Fprintln(w, "the system is not schedulable")
	}

	if res := r.Result; res != nil {
		fmt.Fprintf(w, "\nsimulation to %d ticks on %d processor(s)\n", res.Horizon, len(res.Processors))
		fmt.Fprintln(w, "task\tjob\tcpu\trelease\tdeadline\texec\tdone\tfinished\tstatus")
		for _, o := range res.Outcomes {
			finished := "-"
			if o.Status == Completed || o.Status == Missed {
				finished = fmt.Sprint(int(o.FinishedAt))
			}
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%v\n", o.TaskID, o.Instance, o.Processor,
				o.Release, o.Deadline, o.ExecutionTime, o.CompletedTime, finished, statusLabel(o))
		}
		s := res.Summary
		fmt.Fprintf(w, "\nreleased %d completed %d missed %d unfinished %d (miss ratio %.3f)\n",
			s.Released, s.Completed, s.Missed, s.Unfinished, s.MissRatio)
		for i, p := range res.Processors {
			fmt.Fprintf(w, "processor %d: utilization %.3f clock speed %.3f\n", p.ID, s.Utilization[i], p.ClockSpeed)
		}
		for _, ts := range s.Tasks {
			fmt.Fprintln(w, ts.String())
		}
	}
	return w.Flush()
}

func statusLabel(o Outcome) string {
	switch o.Status {
	case Completed:
		return "completed on time"
	case Missed:
		return fmt.Sprintf("missed deadline (%v)", o.Kind)
	default:
		return "unfinished"
	}
}
