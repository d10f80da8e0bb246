package revenue

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dimension selects which column the revenue rows are grouped by.
type Dimension string

const (
	DimensionGeography Dimension = "Geography"
	DimensionIndustry  Dimension = "Industry"
)

// GroupingColumn returns the source column label a dimension aggregates by.
func (d Dimension) GroupingColumn() (string, bool) {
	switch d {
	case DimensionGeography:
		return "Country", true
	case DimensionIndustry:
		return "Industry", true
	}
	return "", false
}

// ParseDimension validates a user-supplied dimension string.
func ParseDimension(s string) (Dimension, bool) {
	switch Dimension(strings.TrimSpace(s)) {
	case DimensionGeography:
		return DimensionGeography, true
	case DimensionIndustry:
		return DimensionIndustry, true
	}
	return "", false
}

// LabelKind distinguishes structured date labels from plain text labels.
type LabelKind int

const (
	LabelText LabelKind = iota
	LabelDate
)

// Label is a column header. Source data labels columns with either real
// date values or strings, so the two are kept as a tagged union rather
// than inspected dynamically.
type Label struct {
	Kind LabelKind
	Text string
	Date time.Time
}

// TextLabel creates a plain string label.
func TextLabel(s string) Label {
	return Label{Kind: LabelText, Text: s}
}

// DateLabel creates a structured date label. The string form mirrors the
// serialized timestamp representation seen in exported workbooks.
func DateLabel(t time.Time) Label {
	return Label{Kind: LabelDate, Date: t, Text: t.Format("2006-01-02 15:04:05")}
}

// String returns the display/lookup form of the label.
func (l Label) String() string {
	return l.Text
}

// ValueKind classifies a heterogeneous cell value.
type ValueKind int

const (
	ValueMissing ValueKind = iota
	ValueNumeric
	ValueText
)

// Value is a single cell: numeric, text, or blank/null.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

func NumericValue(v float64) Value {
	return Value{Kind: ValueNumeric, Num: v}
}

func TextValue(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

func MissingValue() Value {
	return Value{Kind: ValueMissing}
}

// NumberOrZero coerces the cell to a number. Non-numeric and missing cells
// become 0, never an error and never a dropped row.
func (v Value) NumberOrZero() float64 {
	if v.Kind == ValueNumeric {
		return v.Num
	}
	return 0
}

// DisplayString returns the string form of the cell for use as a group key.
func (v Value) DisplayString() string {
	switch v.Kind {
	case ValueNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueText:
		return v.Text
	}
	return ""
}

// Column is a labeled, positionally aligned sequence of cells.
type Column struct {
	Label Label
	Cells []Value
}

// RawTable is the tabular dataset the reader boundary yields: an ordered
// sequence of named columns with rows aligned by position.
type RawTable struct {
	Columns []Column
}

// RowCount returns the longest column length; shorter columns are treated
// as padded with missing values.
func (t RawTable) RowCount() int {
	n := 0
	for _, c := range t.Columns {
		if len(c.Cells) > n {
			n = len(c.Cells)
		}
	}
	return n
}

// ColumnByLabel finds a column whose label string matches exactly.
func (t RawTable) ColumnByLabel(label string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Label.String() == label {
			return c, true
		}
	}
	return Column{}, false
}

// MonthColumn is a column identified as a calendar month of the target year.
type MonthColumn struct {
	Label   Label
	Date    time.Time // resolved date; zero when Parsed is false
	Parsed  bool
	Ordinal int // position among detected month columns after ordering
}

// QuarterLabels returns the fixed quarter labels for a year, in order.
func QuarterLabels(year int) []string {
	return []string{
		fmt.Sprintf("Q1 %d", year),
		fmt.Sprintf("Q2 %d", year),
		fmt.Sprintf("Q3 %d", year),
		fmt.Sprintf("Q4 %d", year),
	}
}

// MonthlyGrouped maps group key -> month label -> summed revenue.
type MonthlyGrouped map[string]map[string]float64

// QuarterlyMRR maps group key -> quarter label -> summed revenue.
type QuarterlyMRR map[string]map[string]float64

// QuarterlyPercentages maps group key -> quarter label -> share of that
// quarter's total, as a percentage in [0, 100].
type QuarterlyPercentages map[string]map[string]float64

// Result holds the derived, read-only output of one aggregation pass.
type Result struct {
	Dimension      Dimension
	GroupingColumn string
	Year           int

	Months   []MonthColumn // all detected months, chronologically ordered
	Quarters []string      // Q1..Q4 labels in order
	Groups   []string      // sorted group keys

	MRR         QuarterlyMRR
	Percentages QuarterlyPercentages
	Monthly     MonthlyGrouped
}
