package rtsched

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Sampler draws integers uniformly from a closed interval.
type Sampler interface {
	Uniform(lo, hi Ttick) Ttick
}

// RandSampler is a seeded Sampler; the same seed gives the same sequence.
type RandSampler struct {
	r *rand.Rand
}

func NewSampler(seed uint64) *RandSampler {
	return &RandSampler{r: rand.New(rand.NewSource(seed))}
}

func (s *RandSampler) Uniform(lo, hi Ttick) Ttick {
	if hi <= lo {
		return lo
	}
	return lo + Ttick(s.r.Int63n(int64(hi-lo)+1))
}

// WorstCase always returns the upper bound, which makes every job run for
// its task's wcet.
type WorstCase struct{}

func (WorstCase) Uniform(lo, hi Ttick) Ttick {
	if hi < lo {
		return lo
	}
	return hi
}

// BestCase always returns the lower bound.
type BestCase struct{}

func (BestCase) Uniform(lo, hi Ttick) Ttick {
	return lo
}

// GenerateTasks builds n random tasks with ids 0..n-1 where
// wcet is in [2, maxRange), bcet in [1, wcet), deadline in [wcet, wcet+maxRange)
// and the period equals the deadline.
func GenerateTasks(n int, maxRange Ttick, s Sampler) ([]*Task, error) {
	if n < 0 || maxRange < 3 {
		return nil, errors.Wrapf(ErrInvalidParameters, "cannot generate %d tasks with range %d", n, maxRange)
	}
	tasks := make([]*Task, 0, n)
	for i := 0; i < n; i++ {
		wcet := s.Uniform(2, maxRange-1)
		bcet := s.Uniform(1, wcet-1)
		deadline := s.Uniform(wcet, wcet+maxRange-1)
		t, err := NewTask(i, wcet, bcet, deadline, deadline)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
