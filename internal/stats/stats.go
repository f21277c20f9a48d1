// Package stats implements the pure time-series statistics shared by the
// analyzer, the signal detector, the market simulator and the allocation
// optimizer. All functions operate over series aligned to one trading
// calendar and hold no state.
package stats

import (
	"errors"
	"math"
)

// TradingDaysPerYear is the annualization factor base for daily returns.
const TradingDaysPerYear = 252

// Statistics errors. Degenerate arithmetic is surfaced as an explicit error,
// never as a silently returned NaN or Inf.
var (
	ErrInsufficientData = errors.New("insufficient data points")
	ErrZeroBasePrice    = errors.New("first price is zero, cannot normalize")
	ErrZeroVolatility   = errors.New("undefined metric: zero volatility")
)

// Normalize divides every row of a days × symbols price matrix by the first
// row, so every series starts at 1.0.
func Normalize(prices [][]float64) ([][]float64, error) {
	if len(prices) == 0 {
		return nil, ErrInsufficientData
	}
	first := prices[0]
	for _, base := range first {
		if base == 0 {
			return nil, ErrZeroBasePrice
		}
	}

	out := make([][]float64, len(prices))
	for i, row := range prices {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v / first[j]
		}
	}
	return out, nil
}

// NormalizeSeries divides a single series by its first value.
func NormalizeSeries(prices []float64) ([]float64, error) {
	if len(prices) == 0 {
		return nil, ErrInsufficientData
	}
	if prices[0] == 0 {
		return nil, ErrZeroBasePrice
	}
	out := make([]float64, len(prices))
	for i, v := range prices {
		out[i] = v / prices[0]
	}
	return out, nil
}

// DailyReturns computes day-over-day fractional change. The first index has
// no prior value and is fixed to 0.
func DailyReturns(series []float64) []float64 {
	out := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		if series[i-1] == 0 {
			out[i] = 0
			continue
		}
		out[i] = series[i]/series[i-1] - 1
	}
	return out
}

// Mean returns the arithmetic mean, 0 for an empty series.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation (n-1 denominator).
// Returns ErrInsufficientData for fewer than two points.
func StdDev(xs []float64) (float64, error) {
	n := len(xs)
	if n < 2 {
		return 0, ErrInsufficientData
	}
	mean := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1)), nil
}

// SharpeRatio annualizes avg/std by √252. Zero volatility makes the ratio
// undefined and returns ErrZeroVolatility.
func SharpeRatio(avgDailyReturn, stdDev float64) (float64, error) {
	if stdDev == 0 {
		return 0, ErrZeroVolatility
	}
	return avgDailyReturn * math.Sqrt(TradingDaysPerYear) / stdDev, nil
}

// CumulativeReturn of a normalized series: 1 + (last − first).
func CumulativeReturn(normalized []float64) (float64, error) {
	if len(normalized) == 0 {
		return 0, ErrInsufficientData
	}
	return 1 + normalized[len(normalized)-1] - normalized[0], nil
}

// Summary bundles the externally observable results of a statistics run.
type Summary struct {
	AvgDailyReturn   float64
	StdDev           float64
	Sharpe           *float64 // nil when volatility is zero (undefined metric)
	CumulativeReturn float64
}

// Summarize computes the full summary for a raw price series: normalize,
// daily returns, mean, sample deviation, Sharpe and cumulative return.
func Summarize(prices []float64) (*Summary, error) {
	normalized, err := NormalizeSeries(prices)
	if err != nil {
		return nil, err
	}
	rets := DailyReturns(normalized)

	std, err := StdDev(rets)
	if err != nil {
		return nil, err
	}
	cumulative, err := CumulativeReturn(normalized)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		AvgDailyReturn:   Mean(rets),
		StdDev:           std,
		CumulativeReturn: cumulative,
	}
	if sharpe, err := SharpeRatio(s.AvgDailyReturn, s.StdDev); err == nil {
		s.Sharpe = &sharpe
	}
	return s, nil
}
