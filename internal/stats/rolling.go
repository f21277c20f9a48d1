package stats

import "math"

// DefaultWindow is the rolling lookback in trading days for the Bollinger
// indicator.
const DefaultWindow = 20

// RollingMean computes the trailing mean with the given window. For index
// i < window-1 the statistic is taken over the available prefix [0..i]
// (minPeriods = 1).
func RollingMean(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	sum := 0.0
	for i, v := range series {
		sum += v
		n := i + 1
		if n > window {
			sum -= series[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RollingStd computes the trailing sample standard deviation with the given
// window, over the available prefix for early indices. A single-point prefix
// has no defined sample deviation: index 0 is nil, and callers must treat nil
// as "no value", never as zero.
func RollingStd(series []float64, window int) []*float64 {
	out := make([]*float64, len(series))
	for i := range series {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		n := i - lo + 1
		if n < 2 {
			continue
		}

		mean := 0.0
		for _, v := range series[lo : i+1] {
			mean += v
		}
		mean /= float64(n)

		sumSq := 0.0
		for _, v := range series[lo : i+1] {
			d := v - mean
			sumSq += d * d
		}
		std := math.Sqrt(sumSq / float64(n-1))
		out[i] = &std
	}
	return out
}

// BollingerSeries holds the per-day band state for one symbol, recomputed per
// run. Nullable entries are undefined where the rolling deviation is.
type BollingerSeries struct {
	Price []float64
	Mean  []float64
	Std   []*float64
	Upper []*float64 // mean + std
	Lower []*float64 // mean − std
	Value []*float64 // (price − mean) / std; nil when std is 0 or undefined
}

// Bollinger computes the rolling band state for a price series. The
// normalized band distance is undefined wherever the deviation is undefined
// or zero; undefined values propagate as nil and must never trigger a signal.
func Bollinger(prices []float64, window int) *BollingerSeries {
	b := &BollingerSeries{
		Price: append([]float64(nil), prices...),
		Mean:  RollingMean(prices, window),
		Std:   RollingStd(prices, window),
		Upper: make([]*float64, len(prices)),
		Lower: make([]*float64, len(prices)),
		Value: make([]*float64, len(prices)),
	}
	for i := range prices {
		if b.Std[i] == nil {
			continue
		}
		std := *b.Std[i]
		upper := b.Mean[i] + std
		lower := b.Mean[i] - std
		b.Upper[i] = &upper
		b.Lower[i] = &lower
		if std == 0 {
			continue
		}
		value := (prices[i] - b.Mean[i]) / std
		b.Value[i] = &value
	}
	return b
}
