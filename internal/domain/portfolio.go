package domain

import (
	"sort"
	"time"
)

// Portfolio is the backtest state at one instant: free cash plus signed share
// counts per symbol. Negative holdings (short) and negative cash are permitted
// and unchecked; this mirrors unconstrained backtesting, not a risk-managed
// broker. Treat values as immutable: derive new states with WithTrade.
type Portfolio struct {
	Cash     float64
	holdings map[string]int
}

// NewPortfolio creates an all-cash portfolio.
func NewPortfolio(cash float64) Portfolio {
	return Portfolio{Cash: cash, holdings: map[string]int{}}
}

// Holding returns the signed share count for a symbol (zero if never traded).
func (p Portfolio) Holding(symbol string) int {
	return p.holdings[symbol]
}

// Symbols returns the symbols with a nonzero holding, sorted.
func (p Portfolio) Symbols() []string {
	var out []string
	for s, q := range p.holdings {
		if q != 0 {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Holdings returns a copy of all nonzero holdings.
func (p Portfolio) Holdings() map[string]int {
	out := make(map[string]int, len(p.holdings))
	for s, q := range p.holdings {
		if q != 0 {
			out[s] = q
		}
	}
	return out
}

// WithTrade returns a new portfolio with the share delta applied to a symbol
// and the cash delta applied to cash. The receiver is left untouched.
func (p Portfolio) WithTrade(symbol string, shareDelta int, cashDelta float64) Portfolio {
	next := Portfolio{
		Cash:     p.Cash + cashDelta,
		holdings: make(map[string]int, len(p.holdings)+1),
	}
	for s, q := range p.holdings {
		next.holdings[s] = q
	}
	next.holdings[symbol] += shareDelta
	return next
}

// Value prices the portfolio: cash plus every nonzero holding at the given
// close price. The price function is expected to cover all held symbols.
func (p Portfolio) Value(price func(symbol string) (float64, error)) (float64, error) {
	total := p.Cash
	for _, s := range p.Symbols() {
		px, err := price(s)
		if err != nil {
			return 0, err
		}
		total += float64(p.holdings[s]) * px
	}
	return total, nil
}

// FundValueRecord is one point of the equity curve: the portfolio's total
// value at the close of a trading day. Append-only, derived per run.
type FundValueRecord struct {
	Date  time.Time
	Value float64
}
