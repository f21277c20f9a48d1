package domain

import (
	"errors"
	"time"
)

// Calendar errors.
var (
	ErrEmptyCalendar     = errors.New("empty trading calendar")
	ErrUnorderedCalendar = errors.New("calendar dates must be strictly increasing")
)

// dateKey formats a date as its calendar key. Time-of-day and zone are ignored.
const dateKey = "2006-01-02"

// TradingCalendar is the ordered set of market-open dates for a run.
// All aligned series in a run share one calendar.
type TradingCalendar struct {
	days  []time.Time
	index map[string]int
}

// NewTradingCalendar builds a calendar from strictly increasing dates.
// Dates are normalized to UTC midnight.
func NewTradingCalendar(days []time.Time) (*TradingCalendar, error) {
	if len(days) == 0 {
		return nil, ErrEmptyCalendar
	}

	c := &TradingCalendar{
		days:  make([]time.Time, len(days)),
		index: make(map[string]int, len(days)),
	}
	for i, d := range days {
		d = NormalizeDate(d)
		if i > 0 && !c.days[i-1].Before(d) {
			return nil, ErrUnorderedCalendar
		}
		c.days[i] = d
		c.index[d.Format(dateKey)] = i
	}
	return c, nil
}

// NormalizeDate truncates a timestamp to UTC midnight.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Len returns the number of trading days.
func (c *TradingCalendar) Len() int {
	return len(c.days)
}

// Day returns the date at index i.
func (c *TradingCalendar) Day(i int) time.Time {
	return c.days[i]
}

// Index returns the position of a date in the calendar.
func (c *TradingCalendar) Index(t time.Time) (int, bool) {
	i, ok := c.index[NormalizeDate(t).Format(dateKey)]
	return i, ok
}

// Contains reports whether the date is a trading day of this calendar.
func (c *TradingCalendar) Contains(t time.Time) bool {
	_, ok := c.Index(t)
	return ok
}

// First returns the earliest trading day.
func (c *TradingCalendar) First() time.Time {
	return c.days[0]
}

// Last returns the latest trading day.
func (c *TradingCalendar) Last() time.Time {
	return c.days[len(c.days)-1]
}

// Days returns a copy of all trading days in order.
func (c *TradingCalendar) Days() []time.Time {
	out := make([]time.Time, len(c.days))
	copy(out, c.days)
	return out
}

// Weekdays returns all weekdays in [start, end] excluding the given holidays.
// It is a convenience for runs without an exchange calendar source; holidays
// must be supplied by the caller.
func Weekdays(start, end time.Time, holidays ...time.Time) []time.Time {
	skip := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		skip[NormalizeDate(h).Format(dateKey)] = struct{}{}
	}

	var days []time.Time
	for d := NormalizeDate(start); !d.After(NormalizeDate(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if _, ok := skip[d.Format(dateKey)]; ok {
			continue
		}
		days = append(days, d)
	}
	return days
}
