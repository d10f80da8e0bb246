// Package charts shapes aggregated revenue tables into chart-ready
// structures. Builders are pure, stateless transforms: no computation beyond
// mapping tables to series plus cosmetic configuration.
package charts

import (
	"fmt"

	"mrrdash/domain/revenue"
	"mrrdash/internal/analysis"
	"mrrdash/internal/errors"
)

// paletteGeography and paletteIndustry are the qualitative color schemes
// keyed by dimension.
var (
	paletteGeography = []string{
		"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
		"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
	}
	paletteIndustry = []string{
		"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f",
		"#e5c494", "#b3b3b3",
	}
)

// Palette returns the color scheme for a dimension.
func Palette(dim revenue.Dimension) []string {
	if dim == revenue.DimensionGeography {
		return paletteGeography
	}
	return paletteIndustry
}

// Series is one named data series aligned with a chart's categories.
type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// BarChart is a grouped bar chart over categorical x values.
type BarChart struct {
	Title       string   `json:"title"`
	XTitle      string   `json:"x_title"`
	YTitle      string   `json:"y_title"`
	LegendTitle string   `json:"legend_title,omitempty"`
	Categories  []string `json:"categories"`
	Series      []Series `json:"series"`
	Colors      []string `json:"colors,omitempty"`
}

// PieChart is a single-ring share chart.
type PieChart struct {
	Title       string    `json:"title"`
	LegendTitle string    `json:"legend_title,omitempty"`
	Labels      []string  `json:"labels"`
	Values      []float64 `json:"values"`
	Colors      []string  `json:"colors,omitempty"`
}

// TrendChart is a multi-series line chart with markers.
type TrendChart struct {
	Title      string   `json:"title"`
	XTitle     string   `json:"x_title"`
	YTitle     string   `json:"y_title"`
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
}

// ComboChart pairs a bar series with a line series on a secondary axis.
type ComboChart struct {
	Title      string   `json:"title"`
	Categories []string `json:"categories"`
	Bars       Series   `json:"bars"`
	Line       Series   `json:"line"`
	BarAxis    string   `json:"bar_axis"`
	LineAxis   string   `json:"line_axis"`
}

// QuarterlyBar builds the quarterly MRR bar chart, one series per group key.
func QuarterlyBar(res *revenue.Result) BarChart {
	chart := BarChart{
		Title:       fmt.Sprintf("Quarterly MRR by %s", res.Dimension),
		XTitle:      "Quarter",
		YTitle:      "MRR (USD)",
		LegendTitle: string(res.Dimension),
		Categories:  res.Quarters,
		Colors:      Palette(res.Dimension),
	}
	for _, g := range res.Groups {
		data := make([]float64, len(res.Quarters))
		for i, q := range res.Quarters {
			data[i] = res.MRR[g][q]
		}
		chart.Series = append(chart.Series, Series{Name: g, Data: data})
	}
	return chart
}

// QuarterPie builds the percentage-distribution pie for a single quarter.
// Zero shares are filtered out for a cleaner chart.
func QuarterPie(res *revenue.Result, quarter string) (PieChart, error) {
	known := false
	for _, q := range res.Quarters {
		if q == quarter {
			known = true
			break
		}
	}
	if !known {
		return PieChart{}, errors.InvalidInput(fmt.Sprintf("unknown quarter: %q", quarter))
	}

	chart := PieChart{
		Title:       fmt.Sprintf("MRR Percentage Distribution by %s - %s", res.Dimension, quarter),
		LegendTitle: string(res.Dimension),
		Colors:      Palette(res.Dimension),
	}
	for _, g := range res.Groups {
		if share := res.Percentages[g][quarter]; share > 0 {
			chart.Labels = append(chart.Labels, g)
			chart.Values = append(chart.Values, share)
		}
	}
	return chart, nil
}

// QuarterlyTrend builds the multi-series MRR trend line chart.
func QuarterlyTrend(res *revenue.Result) TrendChart {
	chart := TrendChart{
		Title:      fmt.Sprintf("MRR Trend Analysis by %s", res.Dimension),
		XTitle:     "Quarter",
		YTitle:     "MRR (USD)",
		Categories: res.Quarters,
	}
	for _, g := range res.Groups {
		data := make([]float64, len(res.Quarters))
		for i, q := range res.Quarters {
			data[i] = res.MRR[g][q]
		}
		chart.Series = append(chart.Series, Series{Name: g, Data: data})
	}
	return chart
}

// MonthlyCombo builds the monthly MRR bars with the MoM growth line on a
// secondary axis. Months without a defined growth figure carry 0 on the line.
func MonthlyCombo(series analysis.MonthlySeries) ComboChart {
	chart := ComboChart{
		Title:    "Monthly Revenue and MOM Growth",
		BarAxis:  "MRR (USD)",
		LineAxis: "MOM Growth (%)",
		Bars:     Series{Name: "Monthly MRR"},
		Line:     Series{Name: "MOM Growth %"},
	}
	for _, p := range series.Points {
		chart.Categories = append(chart.Categories, p.Month)
		chart.Bars.Data = append(chart.Bars.Data, p.Total)
		chart.Line.Data = append(chart.Line.Data, p.GrowthPct)
	}
	return chart
}

// TopCustomersBar builds the horizontal top-N customer revenue chart.
func TopCustomersBar(report *analysis.ConcentrationReport, n int) (BarChart, error) {
	var summary *analysis.TopNSummary
	for i := range report.TopN {
		if report.TopN[i].N == n {
			summary = &report.TopN[i]
			break
		}
	}
	if summary == nil {
		return BarChart{}, errors.InvalidInput(fmt.Sprintf("no top-%d cohort in report", n))
	}

	chart := BarChart{
		Title:  fmt.Sprintf("Top %d Individual Customers by Q1 Revenue", n),
		XTitle: "Q1 Revenue (USD)",
		YTitle: "Customer Name",
	}
	data := Series{Name: "Q1 Revenue"}
	for _, c := range summary.Customers {
		chart.Categories = append(chart.Categories, c.Name)
		data.Data = append(data.Data, c.Total)
	}
	chart.Series = append(chart.Series, data)
	return chart, nil
}

// CustomerMonthlyBreakdown builds the per-month revenue chart for the top-N
// customer cohort, one series per customer across the Q1 months.
func CustomerMonthlyBreakdown(report *analysis.ConcentrationReport, n int) (BarChart, error) {
	var summary *analysis.TopNSummary
	for i := range report.TopN {
		if report.TopN[i].N == n {
			summary = &report.TopN[i]
			break
		}
	}
	if summary == nil {
		return BarChart{}, errors.InvalidInput(fmt.Sprintf("no top-%d cohort in report", n))
	}

	chart := BarChart{
		Title:       fmt.Sprintf("Monthly Revenue Breakdown - Top %d Customers", n),
		XTitle:      "Month",
		YTitle:      "Revenue (USD)",
		LegendTitle: "Customer",
		Categories:  report.QuarterMonths,
	}
	for _, c := range summary.Customers {
		data := make([]float64, len(report.QuarterMonths))
		for i, m := range report.QuarterMonths {
			data[i] = report.MonthlyByCustomer[c.Name][m]
		}
		chart.Series = append(chart.Series, Series{Name: c.Name, Data: data})
	}
	return chart, nil
}

// ConcentrationBar builds the revenue-concentration chart across cohorts.
func ConcentrationBar(report *analysis.ConcentrationReport) BarChart {
	chart := BarChart{
		Title:  "Revenue Concentration Analysis",
		XTitle: "Customer Groups",
		YTitle: "Percentage of Total Q1 Revenue",
	}
	data := Series{Name: "Revenue Share"}
	for _, summary := range report.TopN {
		chart.Categories = append(chart.Categories, fmt.Sprintf("Top %d", summary.N))
		data.Data = append(data.Data, summary.SharePct)
	}
	chart.Series = append(chart.Series, data)
	return chart
}
