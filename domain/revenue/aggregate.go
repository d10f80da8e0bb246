package revenue

import (
	"math"
	"sort"
	"strings"

	"mrrdash/internal/errors"
)

// maxMonths caps the quarterly rollup to one year of month columns; excess
// detected columns stay in the monthly table but never reach a quarter.
const maxMonths = 12

// monthsPerQuarter fixes quarter membership by ordinal position.
const monthsPerQuarter = 3

// Config holds the aggregation policy knobs.
type Config struct {
	// Year is the target calendar year month columns are detected for.
	Year int
	// Denylist enumerates known-irrelevant column labels dropped up front.
	// Absence of a denylisted column is not an error.
	Denylist []string
}

// DefaultConfig returns the policy matching the revenue export this system
// was built for.
func DefaultConfig() Config {
	return Config{
		Year: 2024,
		Denylist: []string{
			"Entity\nUpto Mar 2024",
			"Entity April 2024",
			"Entity grouped",
			"S. no.",
		},
	}
}

// Aggregator folds a raw monthly-revenue table into quarterly totals and
// percentage shares by a chosen dimension. It is a pure, synchronous,
// single-pass computation: the same table and dimension always produce the
// same result, and any failure is terminal for that invocation.
type Aggregator struct {
	cfg  Config
	diag Diagnostics
}

// NewAggregator creates an aggregator. A nil diagnostics sink defaults to
// logging via the standard logger.
func NewAggregator(cfg Config, diag Diagnostics) *Aggregator {
	if cfg.Year == 0 {
		cfg.Year = DefaultConfig().Year
	}
	if diag == nil {
		diag = LogDiagnostics{}
	}
	return &Aggregator{cfg: cfg, diag: diag}
}

// Aggregate runs the full pipeline: prune, resolve the grouping column,
// detect and order month columns, coerce and group cell values, roll up into
// fixed quarter windows, and normalize into percentage shares.
func (a *Aggregator) Aggregate(table RawTable, dim Dimension) (*Result, error) {
	cols, dropped := a.pruneColumns(table.Columns)
	a.diag.ColumnsPruned(len(cols), dropped)

	groupLabel, ok := dim.GroupingColumn()
	if !ok {
		return nil, errors.InvalidInput("unknown dimension: " + string(dim))
	}
	groupCol, found := findColumn(cols, groupLabel)
	if !found {
		a.diag.ColumnListing(RawTable{Columns: cols})
		return nil, errors.MissingGroupingColumn(string(dim), groupLabel)
	}

	months, method := detectMonthColumns(cols, a.cfg.Year)
	if len(months) == 0 {
		a.diag.ColumnListing(RawTable{Columns: cols})
		return nil, errors.NoMonthColumnsFound(a.cfg.Year)
	}
	months = orderChronologically(months)
	a.diag.MonthsDetected(method, months)

	monthly, groups := a.groupByKey(cols, groupCol, months)

	// The monthly table keeps every detected month; only the quarterly
	// rollup window is capped.
	rollupMonths := months
	if len(rollupMonths) > maxMonths {
		rollupMonths = rollupMonths[:maxMonths]
	}

	quarters := QuarterLabels(a.cfg.Year)
	mrr := a.rollupQuarters(monthly, groups, rollupMonths, quarters)
	pct, totals := a.percentages(mrr, groups, quarters)
	a.diag.QuarterTotals(quarters, totals)

	roundTable(mrr)
	roundTable(pct)
	roundTable(monthly)

	return &Result{
		Dimension:      dim,
		GroupingColumn: groupLabel,
		Year:           a.cfg.Year,
		Months:         months,
		Quarters:       quarters,
		Groups:         groups,
		MRR:            QuarterlyMRR(mrr),
		Percentages:    QuarterlyPercentages(pct),
		Monthly:        MonthlyGrouped(monthly),
	}, nil
}

// pruneColumns drops the fixed denylist of known-irrelevant columns.
func (a *Aggregator) pruneColumns(cols []Column) ([]Column, []string) {
	deny := make(map[string]bool, len(a.cfg.Denylist))
	for _, label := range a.cfg.Denylist {
		deny[label] = true
	}

	kept := make([]Column, 0, len(cols))
	var dropped []string
	for _, c := range cols {
		if deny[c.Label.String()] {
			dropped = append(dropped, c.Label.String())
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}

func findColumn(cols []Column, label string) (Column, bool) {
	for _, c := range cols {
		if c.Label.String() == label {
			return c, true
		}
	}
	return Column{}, false
}

// groupByKey sums month values per distinct group key. Rows with a null,
// empty, or whitespace-only key are excluded; malformed numeric cells
// contribute 0 rather than being dropped.
func (a *Aggregator) groupByKey(cols []Column, groupCol Column, months []MonthColumn) (map[string]map[string]float64, []string) {
	monthCols := make([]Column, len(months))
	for i, m := range months {
		if c, ok := findColumn(cols, m.Label.String()); ok {
			monthCols[i] = c
		} else {
			monthCols[i] = Column{Label: m.Label}
		}
	}

	rowCount := 0
	for _, c := range cols {
		if len(c.Cells) > rowCount {
			rowCount = len(c.Cells)
		}
	}

	monthly := make(map[string]map[string]float64)
	kept, droppedRows := 0, 0
	for row := 0; row < rowCount; row++ {
		key := cellAt(groupCol, row)
		keyStr := strings.TrimSpace(key.DisplayString())
		if key.Kind == ValueMissing || keyStr == "" {
			droppedRows++
			continue
		}
		kept++

		byMonth, ok := monthly[keyStr]
		if !ok {
			byMonth = make(map[string]float64, len(months))
			for _, m := range months {
				byMonth[m.Label.String()] = 0
			}
			monthly[keyStr] = byMonth
		}
		for _, mc := range monthCols {
			byMonth[mc.Label.String()] += cellAt(mc, row).NumberOrZero()
		}
	}
	a.diag.RowsFiltered(kept, droppedRows)

	groups := make([]string, 0, len(monthly))
	for g := range monthly {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return monthly, groups
}

func cellAt(c Column, row int) Value {
	if row < len(c.Cells) {
		return c.Cells[row]
	}
	return MissingValue()
}

// rollupQuarters partitions the ordered month columns into four fixed windows
// of three. A window with fewer than three months present still yields a
// quarter with a partial sum; a window with none yields an all-zero quarter.
func (a *Aggregator) rollupQuarters(monthly map[string]map[string]float64, groups []string, months []MonthColumn, quarters []string) map[string]map[string]float64 {
	mrr := make(map[string]map[string]float64, len(groups))
	for _, g := range groups {
		byQuarter := make(map[string]float64, len(quarters))
		for qi, q := range quarters {
			start := qi * monthsPerQuarter
			end := start + monthsPerQuarter
			if start > len(months) {
				start = len(months)
			}
			if end > len(months) {
				end = len(months)
			}
			sum := 0.0
			for _, m := range months[start:end] {
				sum += monthly[g][m.Label.String()]
			}
			byQuarter[q] = sum
		}
		mrr[g] = byQuarter
	}
	return mrr
}

// percentages computes each key's share of the column-wide quarter total.
// A quarter whose total is zero or negative yields 0 for every key.
func (a *Aggregator) percentages(mrr map[string]map[string]float64, groups []string, quarters []string) (map[string]map[string]float64, []float64) {
	totals := make([]float64, len(quarters))
	for qi, q := range quarters {
		for _, g := range groups {
			totals[qi] += mrr[g][q]
		}
	}

	pct := make(map[string]map[string]float64, len(groups))
	for _, g := range groups {
		byQuarter := make(map[string]float64, len(quarters))
		for qi, q := range quarters {
			if totals[qi] > 0 {
				byQuarter[q] = mrr[g][q] / totals[qi] * 100
			} else {
				byQuarter[q] = 0
			}
		}
		pct[g] = byQuarter
	}
	return pct, totals
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundTable[M ~map[string]map[string]float64](table M) {
	for _, inner := range table {
		for k, v := range inner {
			inner[k] = Round2(v)
		}
	}
}
