package revenue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrrdash/internal/errors"
)

func textCol(label string, cells ...Value) Column {
	return Column{Label: TextLabel(label), Cells: cells}
}

func dateCol(year int, month time.Month, cells ...Value) Column {
	return Column{Label: DateLabel(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)), Cells: cells}
}

func nums(vals ...float64) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = NumericValue(v)
	}
	return out
}

func newTestAggregator() *Aggregator {
	return NewAggregator(DefaultConfig(), NopDiagnostics{})
}

func TestAggregateByGeography(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("Country", TextValue("US"), TextValue("US"), TextValue("FR")),
		dateCol(2024, time.January, nums(10, 20, 30)...),
		dateCol(2024, time.February, nums(5, 5, 40)...),
		dateCol(2024, time.March, nums(0, 100, 50)...),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionGeography)
	require.NoError(t, err)

	assert.Equal(t, "Country", res.GroupingColumn)
	assert.Equal(t, []string{"FR", "US"}, res.Groups)
	assert.Equal(t, []string{"Q1 2024", "Q2 2024", "Q3 2024", "Q4 2024"}, res.Quarters)

	// Rows sharing a key are summed per month before the quarterly rollup.
	jan := res.Months[0].Label.String()
	assert.Equal(t, 30.0, res.Monthly["US"][jan])
	assert.Equal(t, 30.0, res.Monthly["FR"][jan])

	assert.Equal(t, 140.0, res.MRR["US"]["Q1 2024"])
	assert.Equal(t, 120.0, res.MRR["FR"]["Q1 2024"])

	// Quarters with no constituent months exist with value 0.
	for _, q := range []string{"Q2 2024", "Q3 2024", "Q4 2024"} {
		assert.Equal(t, 0.0, res.MRR["US"][q])
		assert.Equal(t, 0.0, res.Percentages["US"][q])
	}

	assert.InDelta(t, 53.85, res.Percentages["US"]["Q1 2024"], 0.001)
	assert.InDelta(t, 46.15, res.Percentages["FR"]["Q1 2024"], 0.001)
}

func TestAggregateQuarterConservation(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("Country", TextValue("US"), TextValue("DE"), TextValue("FR")),
		dateCol(2024, time.January, nums(1.11, 2.22, 3.33)...),
		dateCol(2024, time.February, nums(4.44, 5.55, 6.66)...),
		dateCol(2024, time.March, nums(7.77, 8.88, 9.99)...),
		dateCol(2024, time.April, nums(1, 2, 3)...),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionGeography)
	require.NoError(t, err)

	// Each quarter's MRR equals the sum of its constituent months.
	for _, g := range res.Groups {
		q1 := 0.0
		for _, m := range res.Months[:3] {
			q1 += res.Monthly[g][m.Label.String()]
		}
		assert.InDelta(t, q1, res.MRR[g]["Q1 2024"], 0.01)
		assert.InDelta(t, res.Monthly[g][res.Months[3].Label.String()], res.MRR[g]["Q2 2024"], 0.01)
	}

	// Percentages sum to 100 for quarters with a positive total.
	for _, q := range []string{"Q1 2024", "Q2 2024"} {
		sum := 0.0
		for _, g := range res.Groups {
			sum += res.Percentages[g][q]
		}
		assert.InDelta(t, 100.0, sum, 0.01)
	}
}

func TestAggregatePartialQuarter(t *testing.T) {
	// Five month columns: Q2 is computed from its two available slots, no error.
	cols := []Column{textCol("Country", TextValue("US"))}
	for m := time.January; m <= time.May; m++ {
		cols = append(cols, dateCol(2024, m, NumericValue(10)))
	}

	res, err := newTestAggregator().Aggregate(RawTable{Columns: cols}, DimensionGeography)
	require.NoError(t, err)

	assert.Equal(t, 30.0, res.MRR["US"]["Q1 2024"])
	assert.Equal(t, 20.0, res.MRR["US"]["Q2 2024"])
	assert.Equal(t, 0.0, res.MRR["US"]["Q3 2024"])
	assert.Equal(t, 0.0, res.MRR["US"]["Q4 2024"])
}

func TestAggregateMissingGroupingColumn(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("Country", TextValue("US")),
		dateCol(2024, time.January, NumericValue(10)),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionIndustry)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingGroupingColumn, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Industry")
}

func TestAggregateNoMonthColumns(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("Country", TextValue("US")),
		textCol("Revenue 2023", NumericValue(10)),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionGeography)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNoMonthColumns, errors.GetCode(err))
}

func TestAggregateCoercesMalformedCells(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("Country", TextValue("US"), TextValue("US"), TextValue("US")),
		dateCol(2024, time.January, NumericValue(10), TextValue("N/A"), MissingValue()),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionGeography)
	require.NoError(t, err)

	// "N/A" and blank coerce to 0; the rows are never dropped.
	assert.Equal(t, 10.0, res.MRR["US"]["Q1 2024"])
}

func TestAggregateFiltersBlankGroupKeys(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("Country", TextValue("US"), TextValue(""), TextValue("   "), MissingValue(), TextValue("FR")),
		dateCol(2024, time.January, nums(1, 2, 3, 4, 5)...),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionGeography)
	require.NoError(t, err)

	assert.Equal(t, []string{"FR", "US"}, res.Groups)
	assert.Equal(t, 1.0, res.MRR["US"]["Q1 2024"])
	assert.Equal(t, 5.0, res.MRR["FR"]["Q1 2024"])
}

func TestAggregateZeroTotalQuarterPercentages(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("Country", TextValue("US"), TextValue("FR")),
		dateCol(2024, time.January, nums(-10, -5)...),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionGeography)
	require.NoError(t, err)

	// Negative quarter total: every key's share is 0.
	assert.Equal(t, 0.0, res.Percentages["US"]["Q1 2024"])
	assert.Equal(t, 0.0, res.Percentages["FR"]["Q1 2024"])
}

func TestAggregateRollupClampsToTwelveMonths(t *testing.T) {
	cols := []Column{textCol("Country", TextValue("US"))}
	for m := 0; m < 12; m++ {
		cols = append(cols, dateCol(2024, time.Month(m+1), NumericValue(1)))
	}
	// A 13th detected column stays in the monthly table but never reaches
	// a quarter.
	cols = append(cols, Column{
		Label: DateLabel(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)),
		Cells: []Value{NumericValue(1000)},
	})

	res, err := newTestAggregator().Aggregate(RawTable{Columns: cols}, DimensionGeography)
	require.NoError(t, err)

	require.Len(t, res.Months, 13)
	extra := res.Months[12].Label.String()
	assert.Equal(t, "2024-12-31 00:00:00", extra)
	assert.Equal(t, 1000.0, res.Monthly["US"][extra])

	total := 0.0
	for _, q := range res.Quarters {
		total += res.MRR["US"][q]
	}
	assert.Equal(t, 12.0, total)
}

func TestAggregatePrunesDenylistedColumns(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("S. no.", NumericValue(1)),
		textCol("Entity grouped", TextValue("x")),
		textCol("Country", TextValue("US")),
		dateCol(2024, time.January, NumericValue(10)),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionGeography)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.MRR["US"]["Q1 2024"])
}

func TestAggregateIdempotent(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("Industry", TextValue("SaaS"), TextValue("Fintech")),
		dateCol(2024, time.January, nums(100.555, 200.333)...),
		dateCol(2024, time.February, nums(1, 2)...),
	}}

	agg := newTestAggregator()
	first, err := agg.Aggregate(table, DimensionIndustry)
	require.NoError(t, err)
	second, err := agg.Aggregate(table, DimensionIndustry)
	require.NoError(t, err)

	assert.Equal(t, first.MRR, second.MRR)
	assert.Equal(t, first.Percentages, second.Percentages)
	assert.Equal(t, first.Monthly, second.Monthly)
}

func TestAggregateRoundsToTwoDecimals(t *testing.T) {
	table := RawTable{Columns: []Column{
		textCol("Country", TextValue("US"), TextValue("FR"), TextValue("DE")),
		dateCol(2024, time.January, nums(1, 1, 1)...),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionGeography)
	require.NoError(t, err)

	// 1/3 shares round to 33.33.
	for _, g := range res.Groups {
		assert.Equal(t, 33.33, res.Percentages[g]["Q1 2024"])
	}
}

func TestAggregateNumericGroupKeys(t *testing.T) {
	// A numeric grouping cell is used via its string form, not dropped.
	table := RawTable{Columns: []Column{
		textCol("Country", NumericValue(840), TextValue("FR")),
		dateCol(2024, time.January, nums(7, 3)...),
	}}

	res, err := newTestAggregator().Aggregate(table, DimensionGeography)
	require.NoError(t, err)
	assert.Equal(t, []string{"840", "FR"}, res.Groups)
	assert.Equal(t, 7.0, res.MRR["840"]["Q1 2024"])
}
