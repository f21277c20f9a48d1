package reporting

import (
	"context"
	"fmt"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/marketsim"
	"equity-strategy-lab/internal/stats"
	"equity-strategy-lab/internal/storage"
)

// Generator assembles run reports.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Benchmark is one labeled comparison series for a report.
type Benchmark struct {
	Label   string
	Summary *stats.Summary
}

// FromSimulation builds a report from a finished simulation run.
func (g *Generator) FromSimulation(runID string, priceField domain.Field, result *marketsim.Result, benchmarks ...Benchmark) *Report {
	report := &Report{
		GeneratedAt: g.now(),
		RunID:       runID,
		PriceField:  priceField,
		Performance: performanceRows("Fund", result.Summary, benchmarks),
		EquityCurve: result.EquityCurve,
		FinalCash:   result.Final.Cash,
		DataQuality: DataQualitySection{SkippedOrders: result.Skipped},
	}
	for _, symbol := range result.Final.Symbols() {
		report.FinalHoldings = append(report.FinalHoldings, HoldingRow{
			Symbol: symbol,
			Shares: result.Final.Holding(symbol),
		})
	}
	return report
}

// FromCurve builds a report from a bare equity curve, as the analyzer does
// for fund-value files.
func (g *Generator) FromCurve(runID string, curve []domain.FundValueRecord, benchmarks ...Benchmark) (*Report, error) {
	values := make([]float64, len(curve))
	for i, r := range curve {
		values[i] = r.Value
	}
	summary, err := stats.Summarize(values)
	if err != nil {
		return nil, fmt.Errorf("summarize fund values: %w", err)
	}

	return &Report{
		GeneratedAt: g.now(),
		RunID:       runID,
		Performance: performanceRows("Fund", summary, benchmarks),
		EquityCurve: curve,
	}, nil
}

// FromStoredRun loads a persisted equity curve and builds its report.
func (g *Generator) FromStoredRun(ctx context.Context, store storage.FundValueStore, runID string, benchmarks ...Benchmark) (*Report, error) {
	curve, err := store.GetByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return g.FromCurve(runID, curve, benchmarks...)
}

func performanceRows(fundLabel string, fund *stats.Summary, benchmarks []Benchmark) []PerformanceRow {
	rows := []PerformanceRow{summaryRow(fundLabel, fund)}
	for _, b := range benchmarks {
		rows = append(rows, summaryRow(b.Label, b.Summary))
	}
	return rows
}

func summaryRow(label string, s *stats.Summary) PerformanceRow {
	row := PerformanceRow{Label: label}
	if s == nil {
		return row
	}
	row.Sharpe = s.Sharpe
	row.AvgDailyReturn = s.AvgDailyReturn
	row.StdDev = s.StdDev
	row.CumulativeReturn = s.CumulativeReturn
	return row
}
