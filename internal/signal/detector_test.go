package signal

import (
	"errors"
	"testing"
	"time"

	"equity-strategy-lab/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// buildFrame lays the per-symbol series onto sequential trading days.
func buildFrame(t *testing.T, series map[string][]float64) *domain.Frame {
	t.Helper()

	n := 0
	var symbols []string
	for s, col := range series {
		symbols = append(symbols, s)
		if n == 0 {
			n = len(col)
		}
		if len(col) != n {
			t.Fatalf("uneven series for %s", s)
		}
	}

	days := make([]time.Time, n)
	for i := range days {
		days[i] = day(2012, 1, 2).AddDate(0, 0, i)
	}
	cal, err := domain.NewTradingCalendar(days)
	if err != nil {
		t.Fatalf("NewTradingCalendar failed: %v", err)
	}

	frame := domain.NewFrame(cal, symbols)
	for s, col := range series {
		for i, v := range col {
			if err := frame.Set(i, s, v); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
		}
	}
	return frame
}

func TestThresholdCrossings(t *testing.T) {
	frame := buildFrame(t, map[string][]float64{
		"ABC": {25, 21, 19.5, 18, 21, 19}, // crosses at index 2 and again at 5
	})

	events, err := ThresholdCrossings(frame, DefaultPriceThreshold)
	if err != nil {
		t.Fatalf("ThresholdCrossings failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[0].Date.Equal(day(2012, 1, 4)) || events[0].Price != 19.5 {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if !events[1].Date.Equal(day(2012, 1, 7)) {
		t.Errorf("unexpected second event date: %v", events[1].Date)
	}
}

func TestThresholdCrossings_BoundaryIsExclusive(t *testing.T) {
	// A touch of exactly 20.00 is not below the threshold; the prior day at
	// exactly 20.00 does count as at-or-above.
	frame := buildFrame(t, map[string][]float64{
		"ABC": {20.0, 20.0, 19.99},
	})

	events, err := ThresholdCrossings(frame, 20.0)
	if err != nil {
		t.Fatalf("ThresholdCrossings failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(events))
	}
	if !events[0].Date.Equal(day(2012, 1, 4)) {
		t.Errorf("unexpected event date: %v", events[0].Date)
	}
}

func TestThresholdCrossings_NoRetriggerWhileBelow(t *testing.T) {
	frame := buildFrame(t, map[string][]float64{
		"ABC": {25, 19, 18, 17}, // one crossing, then stays below
	})

	events, err := ThresholdCrossings(frame, 20.0)
	if err != nil {
		t.Fatalf("ThresholdCrossings failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestBandDetector_DetectsCrossDown(t *testing.T) {
	// With a 2-day window the band value is +-sqrt(2)/2 depending on the
	// move direction, so thresholds of +-0.5 make direction changes fire.
	frame := buildFrame(t, map[string][]float64{
		"REF": {50, 51, 52, 53, 54},
		"XYZ": {10, 11, 12, 11, 10},
	})

	d, err := NewBandDetector(frame, BandConfig{
		ReferenceSymbol: "REF",
		Upper:           0.5,
		Lower:           -0.5,
		Window:          2,
	})
	if err != nil {
		t.Fatalf("NewBandDetector failed: %v", err)
	}

	events := d.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %+v", len(events), events)
	}
	// Fires on the first down day only; the next day the prior value is
	// already below the lower threshold.
	if events[0].Symbol != "XYZ" || !events[0].Date.Equal(day(2012, 1, 5)) {
		t.Errorf("unexpected event: %+v", events[0])
	}
	if events[0].Price != 11 {
		t.Errorf("expected event price 11, got %f", events[0].Price)
	}
}

func TestBandDetector_ReferenceNeverFlagged(t *testing.T) {
	// Identical series: the reference satisfies every numeric condition a
	// flagged symbol does, but must never appear in the output.
	frame := buildFrame(t, map[string][]float64{
		"REF": {10, 11, 12, 11},
		"XYZ": {10, 11, 12, 11},
	})

	d, err := NewBandDetector(frame, BandConfig{
		ReferenceSymbol: "REF",
		Upper:           -1.0,
		Lower:           -0.5,
		Window:          2,
	})
	if err != nil {
		t.Fatalf("NewBandDetector failed: %v", err)
	}

	events := d.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Symbol == "REF" {
			t.Errorf("reference symbol flagged as event: %+v", ev)
		}
	}
}

func TestBandDetector_ConstantSeriesNeverFires(t *testing.T) {
	frame := buildFrame(t, map[string][]float64{
		"REF": {50, 50, 50, 50, 50, 50},
		"XYZ": {42, 42, 42, 42, 42, 42},
	})

	d, err := NewBandDetector(frame, BandConfig{
		ReferenceSymbol: "REF",
		Upper:           DefaultUpperThreshold,
		Lower:           DefaultLowerThreshold,
		Window:          3,
	})
	if err != nil {
		t.Fatalf("NewBandDetector failed: %v", err)
	}

	if events := d.Events(); len(events) != 0 {
		t.Errorf("constant series produced %d events", len(events))
	}
}

func TestBandDetector_MissingReference(t *testing.T) {
	frame := buildFrame(t, map[string][]float64{
		"XYZ": {10, 11, 12},
	})

	_, err := NewBandDetector(frame, BandConfig{
		ReferenceSymbol: "REF",
		Upper:           1.0,
		Lower:           -2.0,
		Window:          2,
	})
	if !errors.Is(err, ErrMissingReference) {
		t.Errorf("expected ErrMissingReference, got %v", err)
	}
}

func TestBandDetector_Records(t *testing.T) {
	frame := buildFrame(t, map[string][]float64{
		"REF": {50, 51, 52, 53, 54},
		"XYZ": {10, 11, 12, 11, 10},
	})

	d, err := NewBandDetector(frame, BandConfig{
		ReferenceSymbol: "REF",
		Upper:           0.5,
		Lower:           -0.5,
		Window:          2,
	})
	if err != nil {
		t.Fatalf("NewBandDetector failed: %v", err)
	}

	records := d.Records()
	// Days 1..4 for both symbols
	if len(records) != 8 {
		t.Fatalf("expected 8 records, got %d", len(records))
	}

	flagged := 0
	for _, r := range records {
		if r.RollingStd == nil && r.BollingerValue != nil {
			t.Errorf("value defined without deviation: %+v", r)
		}
		if r.Event {
			flagged++
			if r.Symbol != "XYZ" || !r.Date.Equal(day(2012, 1, 5)) {
				t.Errorf("unexpected flagged record: %+v", r)
			}
		}
	}
	if flagged != 1 {
		t.Errorf("expected 1 flagged record, got %d", flagged)
	}
}
