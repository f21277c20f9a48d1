package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Side tags the direction of an order.
type Side string

// Order sides.
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Order validation errors.
var (
	ErrUnknownSide       = errors.New("unknown order side")
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrNonPositiveAmount = errors.New("quantity must be positive")
	ErrZeroOrderDate     = errors.New("order date is not set")
)

// ParseSide parses an order side case-insensitively.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SideBuy):
		return SideBuy, nil
	case string(SideSell):
		return SideSell, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSide, s)
	}
}

// NormalizeSymbol uppercases and trims a ticker symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidateSymbol checks that a symbol is a plausible ticker: nonempty,
// uppercase letters, digits, and the '.', '-', '$' characters ('$' for index
// symbols such as $SPX).
func ValidateSymbol(s string) error {
	if s == "" {
		return ErrInvalidSymbol
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '$':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
		}
	}
	return nil
}

// Order is one dated buy or sell instruction. Orders are immutable: they are
// created by external input or by the signal detector and never changed.
type Order struct {
	Date     time.Time
	Symbol   string
	Side     Side
	Quantity int // share count, always positive; Side carries direction
}

// NewOrder builds a validated order with a normalized symbol and date.
func NewOrder(date time.Time, symbol string, side Side, quantity int) (Order, error) {
	o := Order{
		Date:     NormalizeDate(date),
		Symbol:   NormalizeSymbol(symbol),
		Side:     side,
		Quantity: quantity,
	}
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Validate checks the order invariants.
func (o Order) Validate() error {
	if o.Date.IsZero() {
		return ErrZeroOrderDate
	}
	if err := ValidateSymbol(o.Symbol); err != nil {
		return err
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return fmt.Errorf("%w: %q", ErrUnknownSide, o.Side)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("%w: %d", ErrNonPositiveAmount, o.Quantity)
	}
	return nil
}

// SignedQuantity returns the share delta the order applies to a holding:
// positive for buys, negative for sells.
func (o Order) SignedQuantity() int {
	if o.Side == SideSell {
		return -o.Quantity
	}
	return o.Quantity
}
