package optimize

import (
	"context"
	"errors"
	"testing"
	"time"

	"equity-strategy-lab/internal/stats"
)

func TestGrid_CandidateCounts(t *testing.T) {
	cases := []struct {
		symbols int
		want    int
	}{
		{1, 1},
		{2, 11},
		{3, 66},
		{4, 286},
	}
	for _, tc := range cases {
		got, err := Grid(tc.symbols, 0.1)
		if err != nil {
			t.Fatalf("Grid(%d) failed: %v", tc.symbols, err)
		}
		if len(got) != tc.want {
			t.Errorf("Grid(%d): expected %d candidates, got %d", tc.symbols, tc.want, len(got))
		}
	}
}

func TestGrid_LexicographicOrderAndExactSums(t *testing.T) {
	candidates, err := Grid(3, 0.1)
	if err != nil {
		t.Fatalf("Grid failed: %v", err)
	}

	first := candidates[0]
	if first[0] != 0 || first[1] != 0 || first[2] != 1 {
		t.Errorf("expected [0 0 1] first, got %v", first)
	}
	last := candidates[len(candidates)-1]
	if last[0] != 1 || last[1] != 0 || last[2] != 0 {
		t.Errorf("expected [1 0 0] last, got %v", last)
	}

	for i, c := range candidates {
		if err := c.Validate(); err != nil {
			t.Errorf("candidate %d invalid: %v", i, err)
		}
	}
}

func TestGrid_BadGranularity(t *testing.T) {
	for _, g := range []float64{0, -0.1, 1.5, 0.3} {
		if _, err := Grid(2, g); !errors.Is(err, ErrBadGranularity) {
			t.Errorf("Grid(2, %g): expected ErrBadGranularity, got %v", g, err)
		}
	}
}

func TestWeightedSeries(t *testing.T) {
	normalized := [][]float64{
		{1.0, 1.0},
		{1.1, 0.9},
	}

	series, err := WeightedSeries(normalized, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("WeightedSeries failed: %v", err)
	}
	if series[0] != 1.0 || series[1] != 1.0 {
		t.Errorf("unexpected series: %v", series)
	}

	_, err = WeightedSeries(normalized, []float64{1.0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

// risingPrices builds an n-day matrix where column 0 rises steadily with some
// wobble and column 1 is nearly flat, so all-in on column 0 wins the search.
func risingPrices(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		wobble := 0.0
		if i%2 == 1 {
			wobble = 0.3
		}
		out[i] = []float64{100 + 2*float64(i) + wobble, 50 + 0.01*float64(i)}
	}
	return out
}

func TestGridSearcher_FindsBestAllocation(t *testing.T) {
	searcher := &GridSearcher{Granularity: 0.1, Workers: 4, TopN: 3}

	result, err := searcher.Search(context.Background(), risingPrices(30))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.Evaluated != 11 {
		t.Errorf("expected 11 evaluated candidates, got %d", result.Evaluated)
	}
	if len(result.Top) != 3 {
		t.Errorf("expected top 3 retained, got %d", len(result.Top))
	}
	if result.Best.Summary.Sharpe == nil {
		t.Fatal("best candidate has undefined sharpe")
	}
	for _, c := range result.Top[1:] {
		if *c.Summary.Sharpe > *result.Best.Summary.Sharpe {
			t.Errorf("top list out of order: %v beats best", c.Allocation)
		}
	}
}

func TestGridSearcher_SingleSymbolMatchesUnweighted(t *testing.T) {
	prices := [][]float64{{100}, {102}, {101}, {105}, {104}}
	searcher := &GridSearcher{Granularity: 0.1}

	result, err := searcher.Search(context.Background(), prices)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if result.Evaluated != 1 || result.Best.Allocation[0] != 1.0 {
		t.Fatalf("expected single [1.0] candidate, got %+v", result)
	}

	column := []float64{100, 102, 101, 105, 104}
	want, err := stats.Summarize(column)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	got := result.Best.Summary
	if got.AvgDailyReturn != want.AvgDailyReturn || got.StdDev != want.StdDev {
		t.Errorf("weighted stats diverge from unweighted: %+v vs %+v", got, want)
	}
	if *got.Sharpe != *want.Sharpe {
		t.Errorf("sharpe diverges: %f vs %f", *got.Sharpe, *want.Sharpe)
	}
}

func TestGridSearcher_TieBreakKeepsGridOrder(t *testing.T) {
	// Two identical columns: every allocation yields the same series, so the
	// first grid candidate [0 1] must win.
	prices := [][]float64{
		{100, 100},
		{102, 102},
		{101, 101},
		{105, 105},
	}
	searcher := &GridSearcher{Granularity: 0.5}

	result, err := searcher.Search(context.Background(), prices)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if result.Best.Allocation[0] != 0 || result.Best.Allocation[1] != 1 {
		t.Errorf("expected first grid candidate [0 1] on tie, got %v", result.Best.Allocation)
	}
}

func TestGridSearcher_AllSharpeUndefined(t *testing.T) {
	// Constant prices give zero volatility for every allocation.
	prices := [][]float64{
		{100, 50},
		{100, 50},
		{100, 50},
	}
	searcher := &GridSearcher{Granularity: 0.5}

	_, err := searcher.Search(context.Background(), prices)
	if !errors.Is(err, ErrNoDefinedSharpe) {
		t.Errorf("expected ErrNoDefinedSharpe, got %v", err)
	}
}

func TestGridSearcher_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	searcher := &GridSearcher{Granularity: 0.1, Workers: 2}
	_, err := searcher.Search(ctx, risingPrices(20))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGridSearcher_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	searcher := &GridSearcher{Granularity: 0.1}
	_, err := searcher.Search(ctx, risingPrices(20))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestGridSearcher_EmptyInput(t *testing.T) {
	searcher := &GridSearcher{}
	if _, err := searcher.Search(context.Background(), nil); !errors.Is(err, ErrNoSymbols) {
		t.Errorf("expected ErrNoSymbols, got %v", err)
	}
}
