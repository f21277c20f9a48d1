package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"equity-strategy-lab/internal/signal"
)

// indicatorHeader names the indicator stream columns. Undefined band fields
// render as empty cells, never as NaN.
var indicatorHeader = []string{
	"date", "symbol", "price", "rolling_mean", "rolling_std",
	"upper_band", "lower_band", "bollinger_value", "event",
}

// WriteIndicators renders the full indicator/event stream with a header row.
func WriteIndicators(w io.Writer, records []signal.IndicatorRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(indicatorHeader); err != nil {
		return fmt.Errorf("write indicators: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Date.Format("2006-01-02"),
			r.Symbol,
			formatFloat(r.Price),
			formatFloat(r.RollingMean),
			formatNullable(r.RollingStd),
			formatNullable(r.UpperBand),
			formatNullable(r.LowerBand),
			formatNullable(r.BollingerValue),
			strconv.FormatBool(r.Event),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write indicators: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteEvents renders detected events as date,symbol,price lines.
func WriteEvents(w io.Writer, events []signal.Event) error {
	writer := csv.NewWriter(w)
	for _, ev := range events {
		row := []string{ev.Date.Format("2006-01-02"), ev.Symbol, formatFloat(ev.Price)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write events: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
