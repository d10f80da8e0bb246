// Package analysis holds the derived analyses layered on top of the
// quarterly aggregation: monthly totals with month-over-month growth, and
// customer revenue concentration.
package analysis

import (
	"gonum.org/v1/gonum/stat"

	"mrrdash/domain/revenue"
)

// MonthlyPoint is one month's total across all group keys.
type MonthlyPoint struct {
	Month     string  `json:"month"`
	Total     float64 `json:"total"`
	GrowthPct float64 `json:"growth_pct"`
	// HasGrowth is false for the first month and whenever the prior month's
	// total is zero, where a growth percentage is undefined.
	HasGrowth bool `json:"has_growth"`
}

// MonthlySeries is the monthly totals series with a fitted linear trend.
type MonthlySeries struct {
	Points []MonthlyPoint `json:"points"`
	// TrendSlope is the per-month slope of a least-squares line through the
	// totals; positive means revenue is growing across the window.
	TrendSlope float64 `json:"trend_slope"`
}

// MonthlyTotals sums each detected month across all group keys and derives
// month-over-month growth percentages.
func MonthlyTotals(res *revenue.Result) MonthlySeries {
	points := make([]MonthlyPoint, 0, len(res.Months))
	for i, m := range res.Months {
		total := 0.0
		for _, g := range res.Groups {
			total += res.Monthly[g][m.Label.String()]
		}

		p := MonthlyPoint{Month: displayMonth(m), Total: revenue.Round2(total)}
		if i > 0 {
			prev := points[i-1].Total
			if prev != 0 {
				p.GrowthPct = revenue.Round2((total - prev) / prev * 100)
				p.HasGrowth = true
			}
		}
		points = append(points, p)
	}

	series := MonthlySeries{Points: points}
	if len(points) >= 2 {
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i] = float64(i)
			ys[i] = p.Total
		}
		_, slope := stat.LinearRegression(xs, ys, nil, false)
		series.TrendSlope = revenue.Round2(slope)
	}
	return series
}

// displayMonth renders "Jan 2024" for resolved dates and falls back to a
// truncated raw label when the date never parsed.
func displayMonth(m revenue.MonthColumn) string {
	if m.Parsed {
		return m.Date.Format("Jan 2006")
	}
	s := m.Label.String()
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
