package domain

import (
	"errors"
	"fmt"
	"math"
)

// Allocation errors.
var (
	ErrAllocationSum    = errors.New("allocation weights must sum to 1")
	ErrAllocationWeight = errors.New("allocation weight out of [0, 1]")
)

// WeightTolerance is the absolute tolerance for the sum-to-one check.
const WeightTolerance = 1e-9

// AllocationVector is one static portfolio choice: per-symbol capital weights
// summing to 1. Generated and consumed inside the optimizer, never persisted.
type AllocationVector []float64

// Validate checks weights are within [0, 1] and sum to 1 within tolerance.
func (a AllocationVector) Validate() error {
	sum := 0.0
	for i, w := range a {
		if w < -WeightTolerance || w > 1+WeightTolerance {
			return fmt.Errorf("%w: weight %d = %g", ErrAllocationWeight, i, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > WeightTolerance {
		return fmt.Errorf("%w: sum = %g", ErrAllocationSum, sum)
	}
	return nil
}

// Clone returns a copy of the vector.
func (a AllocationVector) Clone() AllocationVector {
	return append(AllocationVector(nil), a...)
}
