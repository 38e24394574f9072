package insight

import "strings"

// Chart kinds the API can suggest.
const (
	ChartBar  = "bar"
	ChartLine = "line"
	ChartPie  = "pie"
)

// SuggestChart maps insight text to a chart kind by keyword matching.
// First match wins, matching is case-sensitive, and the priority order
// is fixed: trend, compare, percentage/proportion, then the bar default.
// Golden outputs depend on this exact order.
func SuggestChart(insights string) string {
	switch {
	case strings.Contains(insights, "trend"):
		return ChartLine
	case strings.Contains(insights, "compare"):
		return ChartBar
	case strings.Contains(insights, "percentage"), strings.Contains(insights, "proportion"):
		return ChartPie
	default:
		return ChartBar
	}
}
