// Package taskset reads and writes task sets as YAML.
package taskset

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"rtsched"
)

// File is the on-disk layout of a task set.
type File struct {
	Tasks []Spec `yaml:"tasks"`
}

// Spec is one task entry.
type Spec struct {
	ID       int    `yaml:"id"`
	WCET     int    `yaml:"wcet"`
	BCET     int    `yaml:"bcet"`
	Deadline int    `yaml:"deadline"`
	Period   int    `yaml:"period"`
	Phase    int    `yaml:"phase,omitempty"`
	Priority int    `yaml:"priority,omitempty"`
	Kind     string `yaml:"kind,omitempty"`
}

// Decode parses a task set and validates every task. Task order in the
// file is the list order used for priorities.
func Decode(r io.Reader) ([]*rtsched.Task, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(rtsched.ErrInvalidParameters, "empty task set")
		}
		return nil, errors.Wrap(err, "failed to decode task set")
	}
	if len(f.Tasks) == 0 {
		return nil, errors.Wrap(rtsched.ErrInvalidParameters, "task set has no tasks")
	}

	seen := make(map[int]bool, len(f.Tasks))
	tasks := make([]*rtsched.Task, 0, len(f.Tasks))
	for _, s := range f.Tasks {
		if seen[s.ID] {
			return nil, errors.Wrapf(rtsched.ErrInvalidParameters, "duplicate task id %d", s.ID)
		}
		seen[s.ID] = true

		t, err := s.Task()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Load reads a task set from path.
func Load(path string) ([]*rtsched.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %v", path)
	}
	defer f.Close()
	return Decode(f)
}

// Task builds the validated task described by s.
func (s Spec) Task() (*rtsched.Task, error) {
	t, err := rtsched.NewTask(s.ID, rtsched.Ttick(s.WCET), rtsched.Ttick(s.BCET),
		rtsched.Ttick(s.Deadline), rtsched.Ttick(s.Period))
	if err != nil {
		return nil, err
	}
	if err := t.SetPhase(rtsched.Ttick(s.Phase)); err != nil {
		return nil, err
	}
	t.SetPriority(s.Priority)
	kind, err := rtsched.ParseDeadlineKind(s.Kind)
	if err != nil {
		return nil, errors.Wrapf(err, "task %d", s.ID)
	}
	t.SetDeadlineKind(kind)
	return t, nil
}

// FromTask is the inverse of Spec.Task.
func FromTask(t *rtsched.Task) Spec {
	s := Spec{
		ID:       t.ID(),
		WCET:     int(t.WCET()),
		BCET:     int(t.BCET()),
		Deadline: int(t.RelativeDeadline()),
		Period:   int(t.Period()),
		Phase:    int(t.Phase()),
		Priority: t.Priority(),
	}
	if t.Kind() != rtsched.Hard {
		s.Kind = t.Kind().String()
	}
	return s
}

// Encode writes tasks as YAML.
func Encode(w io.Writer, tasks []*rtsched.Task) error {
	f := File{Tasks: make([]Spec, 0, len(tasks))}
	for _, t := range tasks {
		f.Tasks = append(f.Tasks, FromTask(t))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return errors.Wrap(err, "failed to encode task set")
	}
	return enc.Close()
}
