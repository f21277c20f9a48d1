package domain

import (
	"errors"
	"fmt"
)

// Field identifies one price/volume series of a daily bar.
type Field string

// Bar fields. FieldClose is the raw closing print; FieldAdjClose is
// dividend/split adjusted. Statistics diverge materially between the two, so
// consumers must pick one explicitly.
const (
	FieldOpen     Field = "open"
	FieldHigh     Field = "high"
	FieldLow      Field = "low"
	FieldClose    Field = "close"
	FieldVolume   Field = "volume"
	FieldAdjClose Field = "adj_close"
)

// AllFields lists every bar field in canonical order.
var AllFields = []Field{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume, FieldAdjClose}

// ValidField reports whether f names a known bar field.
func ValidField(f Field) bool {
	for _, k := range AllFields {
		if k == f {
			return true
		}
	}
	return false
}

// Frame errors.
var (
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Frame is one field's values for every (trading day, symbol) pair.
// Rows follow the calendar; columns follow the symbol list.
type Frame struct {
	calendar *TradingCalendar
	symbols  []string
	col      map[string]int
	data     [][]float64
}

// NewFrame allocates a zero-filled frame over a calendar and symbol list.
func NewFrame(calendar *TradingCalendar, symbols []string) *Frame {
	f := &Frame{
		calendar: calendar,
		symbols:  append([]string(nil), symbols...),
		col:      make(map[string]int, len(symbols)),
		data:     make([][]float64, calendar.Len()),
	}
	for j, s := range symbols {
		f.col[s] = j
	}
	for i := range f.data {
		f.data[i] = make([]float64, len(symbols))
	}
	return f
}

// Calendar returns the frame's trading calendar.
func (f *Frame) Calendar() *TradingCalendar {
	return f.calendar
}

// Symbols returns the frame's symbols in column order.
func (f *Frame) Symbols() []string {
	return append([]string(nil), f.symbols...)
}

// HasSymbol reports whether the frame carries a column for the symbol.
func (f *Frame) HasSymbol(symbol string) bool {
	_, ok := f.col[symbol]
	return ok
}

// At returns the value at day index i for a symbol.
func (f *Frame) At(i int, symbol string) (float64, error) {
	j, ok := f.col[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return f.data[i][j], nil
}

// Set stores the value at day index i for a symbol.
func (f *Frame) Set(i int, symbol string, v float64) error {
	j, ok := f.col[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	f.data[i][j] = v
	return nil
}

// Column returns a copy of one symbol's series over the calendar.
func (f *Frame) Column(symbol string) ([]float64, error) {
	j, ok := f.col[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	out := make([]float64, len(f.data))
	for i := range f.data {
		out[i] = f.data[i][j]
	}
	return out, nil
}

// Matrix returns a copy of the full days × symbols matrix.
func (f *Frame) Matrix() [][]float64 {
	out := make([][]float64, len(f.data))
	for i := range f.data {
		out[i] = append([]float64(nil), f.data[i]...)
	}
	return out
}

// History is the aligned set of bar-field frames for one run. Invariant: all
// frames share the same calendar and symbol list, with no missing values after
// the provider's fill policy has been applied.
type History struct {
	calendar *TradingCalendar
	symbols  []string
	frames   map[Field]*Frame
}

// NewHistory builds a history over a calendar and symbol list with one
// zero-filled frame per bar field.
func NewHistory(calendar *TradingCalendar, symbols []string) *History {
	h := &History{
		calendar: calendar,
		symbols:  append([]string(nil), symbols...),
		frames:   make(map[Field]*Frame, len(AllFields)),
	}
	for _, field := range AllFields {
		h.frames[field] = NewFrame(calendar, symbols)
	}
	return h
}

// Calendar returns the shared trading calendar.
func (h *History) Calendar() *TradingCalendar {
	return h.calendar
}

// Symbols returns the symbols in column order.
func (h *History) Symbols() []string {
	return append([]string(nil), h.symbols...)
}

// Frame returns the frame for a bar field.
func (h *History) Frame(field Field) (*Frame, error) {
	f, ok := h.frames[field]
	if !ok {
		return nil, fmt.Errorf("unknown bar field: %s", field)
	}
	return f, nil
}
