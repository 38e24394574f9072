package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestChart(t *testing.T) {
	cases := []struct {
		insights string
		want     string
	}{
		{"Sales show an upward trend", ChartLine},
		{"Let's compare Q1 and Q2", ChartBar},
		{"Electronics account for 40% proportion of sales", ChartPie},
		{"The percentage of repeat buyers is growing", ChartPie},
		{"Nothing keyword-shaped here", ChartBar},
		// trend outranks compare
		{"compare the trend across quarters", ChartLine},
		// matching is case-sensitive
		{"Trend and Compare and Percentage", ChartBar},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SuggestChart(tc.insights), "insights: %q", tc.insights)
	}
}
