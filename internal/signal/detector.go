// Package signal detects mean-reversion trading events from band-based
// indicators over aligned daily series. Detection uses only same-day and
// prior-day values; there is no lookahead.
package signal

import (
	"errors"
	"fmt"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/stats"
)

// Detection defaults. The trading variant demands a stronger bullish regime
// from the reference series than plain event scanning does.
const (
	DefaultPriceThreshold      = 20.00
	DefaultUpperThreshold      = 1.0
	DefaultTradeUpperThreshold = 1.5
	DefaultLowerThreshold      = -2.0
)

// Detector errors.
var (
	ErrMissingReference = errors.New("reference symbol not in price frame")
	ErrBadWindow        = errors.New("window must be positive")
)

// Event is one flagged (date, symbol) pair, in calendar order.
type Event struct {
	Date   time.Time
	Symbol string
	Price  float64
}

// IndicatorRecord is the per (day, symbol) band state emitted alongside
// events, matching the indicator record schema. Nullable fields are undefined
// where the rolling deviation is.
type IndicatorRecord struct {
	Date           time.Time
	Symbol         string
	Price          float64
	RollingMean    float64
	RollingStd     *float64
	UpperBand      *float64
	LowerBand      *float64
	BollingerValue *float64
	Event          bool
}

// ThresholdCrossings flags every date where a symbol's price crosses below
// the threshold: price[i] < t while price[i-1] >= t. Output follows calendar
// order.
func ThresholdCrossings(prices *domain.Frame, threshold float64) ([]Event, error) {
	calendar := prices.Calendar()
	symbols := prices.Symbols()

	var events []Event
	for i := 1; i < calendar.Len(); i++ {
		for _, symbol := range symbols {
			today, err := prices.At(i, symbol)
			if err != nil {
				return nil, err
			}
			yesterday, err := prices.At(i-1, symbol)
			if err != nil {
				return nil, err
			}
			if today < threshold && yesterday >= threshold {
				events = append(events, Event{
					Date:   calendar.Day(i),
					Symbol: symbol,
					Price:  today,
				})
			}
		}
	}
	return events, nil
}

// BandConfig parameterizes the band mean-reversion detector.
type BandConfig struct {
	// ReferenceSymbol is the market regime series; it is never flagged as a
	// tradeable event itself.
	ReferenceSymbol string
	// Upper is the reference-symbol band distance that marks a bullish
	// regime (reference value >= Upper).
	Upper float64
	// Lower is the oversold band distance a symbol must cross down through
	// (value <= Lower while the prior value was >= Lower).
	Lower float64
	// Window is the rolling lookback in trading days.
	Window int
}

// Validate checks the config.
func (c BandConfig) Validate() error {
	if c.ReferenceSymbol == "" {
		return fmt.Errorf("%w: empty reference symbol", domain.ErrInvalidSymbol)
	}
	if c.Window <= 0 {
		return ErrBadWindow
	}
	return nil
}

// BandDetector holds per-symbol rolling band state over one price frame.
type BandDetector struct {
	cfg      BandConfig
	calendar *domain.TradingCalendar
	symbols  []string
	bands    map[string]*stats.BollingerSeries
}

// NewBandDetector computes the band state for every symbol of the frame.
func NewBandDetector(prices *domain.Frame, cfg BandConfig) (*BandDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !prices.HasSymbol(cfg.ReferenceSymbol) {
		return nil, fmt.Errorf("%w: %s", ErrMissingReference, cfg.ReferenceSymbol)
	}

	d := &BandDetector{
		cfg:      cfg,
		calendar: prices.Calendar(),
		symbols:  prices.Symbols(),
		bands:    make(map[string]*stats.BollingerSeries),
	}
	for _, symbol := range d.symbols {
		series, err := prices.Column(symbol)
		if err != nil {
			return nil, err
		}
		d.bands[symbol] = stats.Bollinger(series, cfg.Window)
	}
	return d, nil
}

// triggered reports whether a mean-reversion event fires for symbol at day i.
// Undefined band values never trigger, and the reference symbol is never
// flagged.
func (d *BandDetector) triggered(symbol string, i int) bool {
	if symbol == d.cfg.ReferenceSymbol || i < 1 {
		return false
	}
	ref := d.bands[d.cfg.ReferenceSymbol].Value[i]
	today := d.bands[symbol].Value[i]
	yesterday := d.bands[symbol].Value[i-1]
	if ref == nil || today == nil || yesterday == nil {
		return false
	}
	return *ref >= d.cfg.Upper && *today <= d.cfg.Lower && *yesterday >= d.cfg.Lower
}

// Events returns all mean-reversion events in calendar order.
func (d *BandDetector) Events() []Event {
	var events []Event
	for i := 1; i < d.calendar.Len(); i++ {
		for _, symbol := range d.symbols {
			if !d.triggered(symbol, i) {
				continue
			}
			events = append(events, Event{
				Date:   d.calendar.Day(i),
				Symbol: symbol,
				Price:  d.bands[symbol].Price[i],
			})
		}
	}
	return events
}

// Records returns the full indicator stream: one record per (day, symbol)
// pair from day 1 on, with the event flag set where detection fired.
func (d *BandDetector) Records() []IndicatorRecord {
	var records []IndicatorRecord
	for i := 1; i < d.calendar.Len(); i++ {
		for _, symbol := range d.symbols {
			b := d.bands[symbol]
			records = append(records, IndicatorRecord{
				Date:           d.calendar.Day(i),
				Symbol:         symbol,
				Price:          b.Price[i],
				RollingMean:    b.Mean[i],
				RollingStd:     b.Std[i],
				UpperBand:      b.Upper[i],
				LowerBand:      b.Lower[i],
				BollingerValue: b.Value[i],
				Event:          d.triggered(symbol, i),
			})
		}
	}
	return records
}
