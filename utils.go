package rtsched

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Ttick is one logical time unit of the simulation.
type Ttick int

func (t Ttick) String() string {
	return fmt.Sprintf("%dT", int(t))
}

type Number interface {
	constraints.Integer | constraints.Float
}

func avg[T Number](list []T) float64 {
	if len(list) == 0 {
		return 0
	}

	var sum T
	for _, val := range list {
		sum += val
	}
	return float64(sum) / float64(len(list))
}

// ceilDiv returns ceil(a/b) for positive b without going through floats.
func ceilDiv[T constraints.Integer](a, b T) T {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func toFloats[T Number](list []T) []float64 {
	out := make([]float64, len(list))
	for i, v := range list {
		out[i] = float64(v)
	}
	return out
}
