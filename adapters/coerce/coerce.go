// Package coerce converts raw spreadsheet strings into typed domain values.
// Coercion is deliberately lenient: values that cannot be parsed degrade to
// text (and later to zero in aggregation) instead of raising errors.
package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"

	"mrrdash/domain/revenue"
)

// dateFormats are the layouts tried when parsing serialized date strings,
// most specific first.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"1-2-06",
	"01-02-06",
	"Jan-06",
	"Jan 2006",
	"January 2006",
}

// Cell converts a raw cell string into a typed Value. Empty strings become
// missing; parseable numbers become numeric; everything else stays text.
func Cell(raw string) revenue.Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return revenue.MissingValue()
	}
	if n, ok := Number(trimmed); ok {
		return revenue.NumericValue(n)
	}
	return revenue.TextValue(trimmed)
}

// Number attempts to parse a string as a number. It tolerates the formats
// that show up in exported financial data: currency symbols, thousands
// separators, percent signs, and parentheses for negatives.
func Number(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	// Parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")
	cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	cleanVal = strings.ReplaceAll(cleanVal, " ", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// Date attempts to parse a string as a calendar date.
func Date(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
