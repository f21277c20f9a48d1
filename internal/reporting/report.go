package reporting

import (
	"time"

	"equity-strategy-lab/internal/domain"
)

// Report is the rendered outcome of one simulation or analysis run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	PriceField  domain.Field

	// Performance rows: the fund first, then any benchmarks, in input order.
	Performance []PerformanceRow

	// Equity curve of the run, in calendar order.
	EquityCurve []domain.FundValueRecord

	// Final state
	FinalCash     float64
	FinalHoldings []HoldingRow

	// Data Quality
	DataQuality DataQualitySection
}

// PerformanceRow is one labeled statistics summary.
type PerformanceRow struct {
	Label            string
	Sharpe           *float64 // nil when volatility is zero
	AvgDailyReturn   float64
	StdDev           float64
	CumulativeReturn float64
}

// HoldingRow is one open position at the end of the run.
type HoldingRow struct {
	Symbol string
	Shares int
}

// DataQualitySection lists inputs the run could not honor.
type DataQualitySection struct {
	// SkippedOrders were dated outside the trading calendar and not executed.
	SkippedOrders []domain.Order
	// LineErrors are per-record parse failures from lenient input reading.
	LineErrors []string
}

// Clean reports whether the run consumed every input as given.
func (s DataQualitySection) Clean() bool {
	return len(s.SkippedOrders) == 0 && len(s.LineErrors) == 0
}
