package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the performance rows as CSV string.
func RenderCSV(rows []PerformanceRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("series,sharpe,avg_daily_return,std_dev,cumulative_return\n")

	// Rows; an undefined sharpe is an empty cell, never NaN
	for _, p := range rows {
		sharpe := ""
		if p.Sharpe != nil {
			sharpe = fmt.Sprintf("%.6f", *p.Sharpe)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f\n",
			p.Label, sharpe, p.AvgDailyReturn, p.StdDev, p.CumulativeReturn))
	}

	return sb.String()
}
