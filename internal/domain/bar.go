package domain

import "time"

// DailyBar is one symbol's OHLCV row for a trading day, as stored.
// Corresponds to the daily_bars table.
type DailyBar struct {
	Symbol   string
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64 // raw closing print
	Volume   float64
	AdjClose float64 // dividend/split adjusted close
}

// FieldValue returns the bar's value for a field.
func (b *DailyBar) FieldValue(f Field) float64 {
	switch f {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldClose:
		return b.Close
	case FieldVolume:
		return b.Volume
	case FieldAdjClose:
		return b.AdjClose
	default:
		return 0
	}
}
