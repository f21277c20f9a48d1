// Package optimize searches the discretized allocation simplex for the
// weight vector with the best historical Sharpe ratio.
package optimize

import (
	"errors"
	"math"

	"equity-strategy-lab/internal/domain"
)

// DefaultGranularity is the default grid step.
const DefaultGranularity = 0.1

// granularityTolerance absorbs float noise when checking that 1/granularity
// is a whole number of grid units.
const granularityTolerance = 1e-9

// Grid errors.
var (
	ErrBadGranularity    = errors.New("granularity must divide 1.0 into whole steps")
	ErrNoSymbols         = errors.New("at least one symbol required")
	ErrDimensionMismatch = errors.New("allocation length does not match symbol count")
)

// Grid enumerates every allocation of numSymbols weights on the simplex at
// the given granularity: all vectors of multiples of granularity summing to
// exactly 1.0. Output is in lexicographic order, so for one symbol the single
// candidate is [1.0] and the all-in-last vector always comes first. The count
// is C(1/g + k - 1, k - 1).
func Grid(numSymbols int, granularity float64) ([]domain.AllocationVector, error) {
	if numSymbols < 1 {
		return nil, ErrNoSymbols
	}
	if granularity <= 0 || granularity > 1 {
		return nil, ErrBadGranularity
	}
	units := int(math.Round(1 / granularity))
	if math.Abs(1/granularity-float64(units)) > granularityTolerance {
		return nil, ErrBadGranularity
	}

	var out []domain.AllocationVector
	current := make([]float64, numSymbols)
	compose(units, units, 0, current, &out)
	return out, nil
}

// compose assigns `remaining` grid units to positions [pos:], recursing in
// ascending unit order so the final list is lexicographic.
func compose(totalUnits, remaining, pos int, current []float64, out *[]domain.AllocationVector) {
	if pos == len(current)-1 {
		current[pos] = float64(remaining) / float64(totalUnits)
		*out = append(*out, domain.AllocationVector(current).Clone())
		return
	}
	for u := 0; u <= remaining; u++ {
		current[pos] = float64(u) / float64(totalUnits)
		compose(totalUnits, remaining-u, pos+1, current, out)
	}
}

// WeightedSeries computes the value series of a weighted portfolio: the
// matrix-vector product of a normalized days × symbols price matrix and an
// allocation vector.
func WeightedSeries(normalized [][]float64, weights domain.AllocationVector) ([]float64, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, len(normalized))
	for i, row := range normalized {
		if len(row) != len(weights) {
			return nil, ErrDimensionMismatch
		}
		v := 0.0
		for j, w := range weights {
			v += row[j] * w
		}
		out[i] = v
	}
	return out, nil
}
