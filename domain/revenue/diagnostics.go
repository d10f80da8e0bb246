package revenue

import (
	"log"
	"strings"
)

// Diagnostics is the observability side channel the aggregator writes to on
// every run. It is never part of the functional output contract.
type Diagnostics interface {
	// ColumnsPruned reports the denylist pass: how many columns remain and
	// which labels were dropped.
	ColumnsPruned(remaining int, dropped []string)
	// MonthsDetected reports which detection method matched and the columns
	// it yielded.
	MonthsDetected(method string, months []MonthColumn)
	// RowsFiltered reports how many rows survived the group-key filter.
	RowsFiltered(kept, dropped int)
	// QuarterTotals reports the column-wide total per quarter.
	QuarterTotals(quarters []string, totals []float64)
	// ColumnListing dumps every column label with its detected kind. Emitted
	// on failure so the caller can see what the detector was looking at.
	ColumnListing(table RawTable)
}

// LogDiagnostics writes diagnostics to the standard logger.
type LogDiagnostics struct{}

func (LogDiagnostics) ColumnsPruned(remaining int, dropped []string) {
	if len(dropped) > 0 {
		log.Printf("[Aggregator] Dropped %d denylisted columns: %s", len(dropped), strings.Join(dropped, ", "))
	}
	log.Printf("[Aggregator] %d columns remaining after cleanup", remaining)
}

func (LogDiagnostics) MonthsDetected(method string, months []MonthColumn) {
	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = m.Label.String()
	}
	log.Printf("[Aggregator] Found %d monthly columns via %s: %s", len(months), method, strings.Join(labels, ", "))
}

func (LogDiagnostics) RowsFiltered(kept, dropped int) {
	log.Printf("[Aggregator] %d rows kept, %d rows dropped (empty group key)", kept, dropped)
}

func (LogDiagnostics) QuarterTotals(quarters []string, totals []float64) {
	for i, q := range quarters {
		if i < len(totals) {
			log.Printf("[Aggregator] %s total: %.2f", q, totals[i])
		}
	}
}

func (LogDiagnostics) ColumnListing(table RawTable) {
	for i, col := range table.Columns {
		kind := "text"
		if col.Label.Kind == LabelDate {
			kind = "date"
		}
		log.Printf("[Aggregator] column %d: %q (label kind: %s)", i, col.Label.String(), kind)
	}
}

// NopDiagnostics discards all diagnostics.
type NopDiagnostics struct{}

func (NopDiagnostics) ColumnsPruned(int, []string)          {}
func (NopDiagnostics) MonthsDetected(string, []MonthColumn) {}
func (NopDiagnostics) RowsFiltered(int, int)                {}
func (NopDiagnostics) QuarterTotals([]string, []float64)    {}
func (NopDiagnostics) ColumnListing(RawTable)               {}
