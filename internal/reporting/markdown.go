package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Strategy Run Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: %s\n\n", r.RunID))
	}
	if r.PriceField != "" {
		sb.WriteString(fmt.Sprintf("Price field: %s\n\n", r.PriceField))
	}

	// Performance
	sb.WriteString("## Performance\n\n")
	if len(r.Performance) > 0 {
		sb.WriteString("| Series | Sharpe | AvgDailyReturn | StdDev | CumulativeReturn |\n")
		sb.WriteString("|--------|--------|----------------|--------|------------------|\n")
		for _, p := range r.Performance {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.6f | %.6f | %.6f |\n",
				p.Label, formatSharpe(p.Sharpe), p.AvgDailyReturn, p.StdDev, p.CumulativeReturn))
		}
	} else {
		sb.WriteString("No performance data available.\n")
	}
	sb.WriteString("\n")

	// Equity Curve
	sb.WriteString("## Equity Curve\n\n")
	if len(r.EquityCurve) > 0 {
		first := r.EquityCurve[0]
		last := r.EquityCurve[len(r.EquityCurve)-1]
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Trading Days | %d |\n", len(r.EquityCurve)))
		sb.WriteString(fmt.Sprintf("| Start (%s) | %.2f |\n", first.Date.Format("2006-01-02"), first.Value))
		sb.WriteString(fmt.Sprintf("| End (%s) | %.2f |\n", last.Date.Format("2006-01-02"), last.Value))
	} else {
		sb.WriteString("No equity curve available.\n")
	}
	sb.WriteString("\n")

	// Final Holdings
	if len(r.FinalHoldings) > 0 || r.FinalCash != 0 {
		sb.WriteString("## Final Holdings\n\n")
		sb.WriteString("| Symbol | Shares |\n")
		sb.WriteString("|--------|--------|\n")
		for _, h := range r.FinalHoldings {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", h.Symbol, h.Shares))
		}
		sb.WriteString(fmt.Sprintf("| (cash) | %.2f |\n", r.FinalCash))
		sb.WriteString("\n")
	}

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if r.DataQuality.Clean() {
		sb.WriteString("All inputs consumed.\n\n")
	} else {
		if len(r.DataQuality.SkippedOrders) > 0 {
			sb.WriteString("### Skipped Orders\n\n")
			sb.WriteString("| Date | Symbol | Side | Quantity |\n")
			sb.WriteString("|------|--------|------|----------|\n")
			for _, o := range r.DataQuality.SkippedOrders {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n",
					o.Date.Format("2006-01-02"), o.Symbol, o.Side, o.Quantity))
			}
			sb.WriteString("\n")
		}
		if len(r.DataQuality.LineErrors) > 0 {
			sb.WriteString("### Rejected Records\n\n")
			for _, e := range r.DataQuality.LineErrors {
				sb.WriteString(fmt.Sprintf("- %s\n", e))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// formatSharpe renders a nullable Sharpe; undefined stays readable, never NaN.
func formatSharpe(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.6f", *v)
}
