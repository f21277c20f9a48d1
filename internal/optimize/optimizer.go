package optimize

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/stats"
)

// Search errors.
var (
	ErrNoFeasibleAllocation = errors.New("no feasible allocation candidates")
	ErrNoDefinedSharpe      = errors.New("no candidate has a defined sharpe ratio")
)

// Candidate is one evaluated allocation.
type Candidate struct {
	Allocation domain.AllocationVector
	Summary    *stats.Summary
}

// Result holds the search outcome.
type Result struct {
	// Best is the candidate with the highest defined Sharpe ratio. Ties keep
	// the earliest candidate in grid order, so results are deterministic.
	Best Candidate
	// Top holds the best candidates in descending Sharpe order, at most the
	// searcher's retention limit.
	Top []Candidate
	// Evaluated is the number of candidates scored.
	Evaluated int
}

// Searcher scores allocations over a raw days × symbols price matrix.
// Implementations must be safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, prices [][]float64) (*Result, error)
}

// GridSearcher is the brute-force baseline: it evaluates every point of the
// allocation grid. Exhaustive and exact, which makes it the reference any
// smarter search can be checked against.
type GridSearcher struct {
	// Granularity is the grid step; DefaultGranularity when zero.
	Granularity float64
	// Workers bounds parallel evaluation; GOMAXPROCS when zero.
	Workers int
	// TopN is how many best candidates to retain; 1 when zero.
	TopN int
}

// Compile-time interface check.
var _ Searcher = (*GridSearcher)(nil)

// Search evaluates the full grid and returns the best candidates. The context
// cancels or times out the search; a canceled search returns the context
// error, not partial results.
func (s *GridSearcher) Search(ctx context.Context, prices [][]float64) (*Result, error) {
	if len(prices) == 0 || len(prices[0]) == 0 {
		return nil, ErrNoSymbols
	}

	granularity := s.Granularity
	if granularity == 0 {
		granularity = DefaultGranularity
	}
	candidates, err := Grid(len(prices[0]), granularity)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoFeasibleAllocation
	}

	normalized, err := stats.Normalize(prices)
	if err != nil {
		return nil, fmt.Errorf("normalize prices: %w", err)
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	// Each worker fills its own stride of the scores slice; merging afterward
	// preserves grid order for the tie-break.
	scores := make([]Candidate, len(candidates))
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(candidates); i += workers {
				if ctx.Err() != nil {
					errs[w] = ctx.Err()
					return
				}
				summary, err := evaluate(normalized, candidates[i])
				if err != nil {
					errs[w] = err
					return
				}
				scores[i] = Candidate{Allocation: candidates[i], Summary: summary}
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return reduce(scores, s.topN())
}

func (s *GridSearcher) topN() int {
	if s.TopN <= 0 {
		return 1
	}
	return s.TopN
}

// evaluate scores one allocation: weighted value series, then summary stats.
func evaluate(normalized [][]float64, allocation domain.AllocationVector) (*stats.Summary, error) {
	series, err := WeightedSeries(normalized, allocation)
	if err != nil {
		return nil, err
	}
	return stats.Summarize(series)
}

// reduce picks the best defined-Sharpe candidate and the top-N list.
// sort.SliceStable keeps grid order among equal Sharpe values.
func reduce(scores []Candidate, topN int) (*Result, error) {
	defined := make([]Candidate, 0, len(scores))
	for _, c := range scores {
		if c.Summary != nil && c.Summary.Sharpe != nil {
			defined = append(defined, c)
		}
	}
	if len(defined) == 0 {
		return nil, ErrNoDefinedSharpe
	}

	sort.SliceStable(defined, func(i, j int) bool {
		return *defined[i].Summary.Sharpe > *defined[j].Summary.Sharpe
	})
	if topN > len(defined) {
		topN = len(defined)
	}

	return &Result{
		Best:      defined[0],
		Top:       defined[:topN],
		Evaluated: len(scores),
	}, nil
}
