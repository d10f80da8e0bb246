package analysis

import (
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"mrrdash/domain/revenue"
	"mrrdash/internal/errors"
)

// customerColumnCandidates are the identifier labels checked first, in order.
var customerColumnCandidates = []string{
	"Customer", "Client", "Customer Name", "Client Name",
	"Company", "Company Name", "Entity", "Account",
	"Customer_Name", "Client_Name",
}

// groupingLabels are dimension columns that must not be mistaken for a
// customer identifier when falling back to the first text column.
var groupingLabels = map[string]bool{
	"Country":   true,
	"Industry":  true,
	"Geography": true,
}

// DefaultTopN are the cohort sizes reported by the concentration analysis.
var DefaultTopN = []int{5, 10, 15}

// CustomerRevenue is one customer's summed first-quarter revenue.
type CustomerRevenue struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// TopNSummary describes the revenue weight of the top N customers.
type TopNSummary struct {
	N         int               `json:"n"`
	Customers []CustomerRevenue `json:"customers"`
	Revenue   float64           `json:"revenue"`
	SharePct  float64           `json:"share_pct"`
}

// ConcentrationReport is the Q1 customer concentration analysis: ranked
// customers, top-N revenue shares, and an HHI concentration index.
type ConcentrationReport struct {
	CustomerColumn string            `json:"customer_column"`
	QuarterMonths  []string          `json:"quarter_months"`
	Ranked         []CustomerRevenue `json:"ranked"`
	TotalRevenue   float64           `json:"total_revenue"`
	TopN           []TopNSummary     `json:"top_n"`
	HHI            float64           `json:"hhi"`
	Band           string            `json:"band"`
	// MonthlyByCustomer maps customer -> month label -> summed revenue, the
	// per-month breakdown behind the ranked totals.
	MonthlyByCustomer map[string]map[string]float64 `json:"monthly_by_customer"`
}

// AnalyzeQ1Customers ranks individual customers by revenue over the first
// quarter's months (the first up-to-three detected month columns) and
// reports top-N concentration. topN defaults to DefaultTopN when empty.
func AnalyzeQ1Customers(table revenue.RawTable, year int, topN []int) (*ConcentrationReport, error) {
	if len(topN) == 0 {
		topN = DefaultTopN
	}

	custCol, ok := findCustomerColumn(table)
	if !ok {
		return nil, errors.NoCustomerColumn()
	}

	months := revenue.DetectMonths(table, year)
	if len(months) == 0 {
		return nil, errors.NoMonthColumnsFound(year)
	}
	q1 := months
	if len(q1) > 3 {
		q1 = q1[:3]
	}

	byCustomer := sumByCustomer(table, custCol, q1)
	totals := make(map[string]float64, len(byCustomer))
	for name, byMonth := range byCustomer {
		for m, v := range byMonth {
			byMonth[m] = revenue.Round2(v)
			totals[name] += v
		}
	}
	ranked := rankDescending(totals)

	values := make([]float64, len(ranked))
	for i, c := range ranked {
		values[i] = c.Total
	}
	total, err := stats.Sum(values)
	if err != nil {
		total = 0
	}

	report := &ConcentrationReport{
		CustomerColumn:    custCol.Label.String(),
		Ranked:            ranked,
		TotalRevenue:      revenue.Round2(total),
		MonthlyByCustomer: byCustomer,
	}
	for _, m := range q1 {
		report.QuarterMonths = append(report.QuarterMonths, m.Label.String())
	}

	for _, n := range topN {
		summary := TopNSummary{N: n}
		top := ranked
		if len(top) > n {
			top = top[:n]
		}
		summary.Customers = top
		for _, c := range top {
			summary.Revenue += c.Total
		}
		if total > 0 {
			summary.SharePct = revenue.Round2(summary.Revenue / total * 100)
		}
		summary.Revenue = revenue.Round2(summary.Revenue)
		report.TopN = append(report.TopN, summary)
	}

	report.HHI, report.Band = concentrationIndex(ranked, total)
	return report, nil
}

// findCustomerColumn locates a customer identifier column: the fixed
// candidate list first, then the first mostly-text column that is not a
// grouping dimension.
func findCustomerColumn(table revenue.RawTable) (revenue.Column, bool) {
	for _, name := range customerColumnCandidates {
		if col, ok := table.ColumnByLabel(name); ok {
			return col, true
		}
	}
	for _, col := range table.Columns {
		if col.Label.Kind != revenue.LabelText || groupingLabels[col.Label.Text] {
			continue
		}
		if isMostlyText(col) {
			return col, true
		}
	}
	return revenue.Column{}, false
}

// isMostlyText reports whether the majority of a column's non-missing cells
// are text rather than numbers.
func isMostlyText(col revenue.Column) bool {
	textCount, valueCount := 0, 0
	for _, v := range col.Cells {
		switch v.Kind {
		case revenue.ValueText:
			textCount++
			valueCount++
		case revenue.ValueNumeric:
			valueCount++
		}
	}
	return valueCount > 0 && textCount*2 > valueCount
}

// sumByCustomer folds Q1 month values per customer and month, skipping rows
// with a blank identifier and zeroing malformed cells, mirroring the
// aggregation core's filtering rules.
func sumByCustomer(table revenue.RawTable, custCol revenue.Column, q1 []revenue.MonthColumn) map[string]map[string]float64 {
	monthCols := make([]revenue.Column, 0, len(q1))
	for _, m := range q1 {
		if c, ok := table.ColumnByLabel(m.Label.String()); ok {
			monthCols = append(monthCols, c)
		}
	}

	byCustomer := make(map[string]map[string]float64)
	for row := 0; row < table.RowCount(); row++ {
		var key revenue.Value
		if row < len(custCol.Cells) {
			key = custCol.Cells[row]
		}
		name := strings.TrimSpace(key.DisplayString())
		if key.Kind == revenue.ValueMissing || name == "" {
			continue
		}
		byMonth, ok := byCustomer[name]
		if !ok {
			byMonth = make(map[string]float64, len(monthCols))
			byCustomer[name] = byMonth
		}
		for _, mc := range monthCols {
			var cell revenue.Value
			if row < len(mc.Cells) {
				cell = mc.Cells[row]
			}
			byMonth[mc.Label.String()] += cell.NumberOrZero()
		}
	}
	return byCustomer
}

// rankDescending orders customers by total, breaking ties by name so the
// ranking is deterministic.
func rankDescending(totals map[string]float64) []CustomerRevenue {
	ranked := make([]CustomerRevenue, 0, len(totals))
	for name, total := range totals {
		ranked = append(ranked, CustomerRevenue{Name: name, Total: revenue.Round2(total)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// concentrationIndex computes the Herfindahl-Hirschman index over customer
// revenue shares (0-10000 scale) with the standard concentration bands.
func concentrationIndex(ranked []CustomerRevenue, total float64) (float64, string) {
	if total <= 0 {
		return 0, "unconcentrated"
	}
	hhi := 0.0
	for _, c := range ranked {
		share := c.Total / total * 100
		hhi += share * share
	}
	hhi = revenue.Round2(hhi)
	switch {
	case hhi < 1500:
		return hhi, "unconcentrated"
	case hhi < 2500:
		return hhi, "moderately concentrated"
	default:
		return hhi, "highly concentrated"
	}
}
