package revenue

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// labelDateFormats are the layouts tried when resolving a text label to a
// date, most specific first.
var labelDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan-06",
	"Jan 2006",
	"January 2006",
}

// parseLabelDate resolves a label to a calendar date. Structured date labels
// resolve directly; text labels go through the layout list.
func parseLabelDate(l Label) (time.Time, bool) {
	if l.Kind == LabelDate {
		return l.Date, true
	}
	s := strings.TrimSpace(l.Text)
	for _, layout := range labelDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// detector is one strategy for spotting month columns. Detectors run as a
// short-circuiting chain in priority order: typed date label, parseable date
// string, serialized-timestamp heuristic, bare year substring.
type detector struct {
	name  string
	match func(cols []Column, year int) []MonthColumn
}

var monthDetectors = []detector{
	{"typed date labels", detectTypedDates},
	{"parsed date strings", detectParsedStrings},
	{"timestamp-pattern labels", detectTimestampPatterns},
	{"year substring", detectYearSubstring},
}

// detectTypedDates matches columns whose label is a structured date value in
// the target year.
func detectTypedDates(cols []Column, year int) []MonthColumn {
	var months []MonthColumn
	for _, c := range cols {
		if c.Label.Kind == LabelDate && c.Label.Date.Year() == year {
			months = append(months, MonthColumn{Label: c.Label, Date: c.Label.Date, Parsed: true})
		}
	}
	return months
}

// detectParsedStrings matches text labels that contain the year and a date
// separator and parse to a date in the target year.
func detectParsedStrings(cols []Column, year int) []MonthColumn {
	yearStr := strconv.Itoa(year)
	var months []MonthColumn
	for _, c := range cols {
		if c.Label.Kind != LabelText {
			continue
		}
		s := c.Label.Text
		if !strings.Contains(s, yearStr) {
			continue
		}
		if !strings.Contains(s, "-") && !strings.Contains(s, "/") {
			continue
		}
		if d, ok := parseLabelDate(c.Label); ok && d.Year() == year {
			months = append(months, MonthColumn{Label: c.Label, Date: d, Parsed: true})
		}
	}
	return months
}

// detectTimestampPatterns matches labels that look like serialized midnight
// timestamps, e.g. "2024-01-01 00:00:00".
func detectTimestampPatterns(cols []Column, year int) []MonthColumn {
	marker := strconv.Itoa(year) + "-"
	var months []MonthColumn
	for _, c := range cols {
		s := c.Label.String()
		if strings.Contains(s, marker) && strings.Contains(s, "00:00:00") {
			m := MonthColumn{Label: c.Label}
			if d, ok := parseLabelDate(c.Label); ok {
				m.Date, m.Parsed = d, true
			}
			months = append(months, m)
		}
	}
	return months
}

// detectYearSubstring is the last resort: any label containing the year digits.
func detectYearSubstring(cols []Column, year int) []MonthColumn {
	yearStr := strconv.Itoa(year)
	var months []MonthColumn
	for _, c := range cols {
		if strings.Contains(c.Label.String(), yearStr) {
			m := MonthColumn{Label: c.Label}
			if d, ok := parseLabelDate(c.Label); ok {
				m.Date, m.Parsed = d, true
			}
			months = append(months, m)
		}
	}
	return months
}

// DetectMonths runs the month-column detection chain over a table and
// returns the chronologically ordered result. An empty slice means no
// method matched any column.
func DetectMonths(table RawTable, year int) []MonthColumn {
	months, _ := detectMonthColumns(table.Columns, year)
	if len(months) == 0 {
		return nil
	}
	return orderChronologically(months)
}

// detectMonthColumns runs the detector chain and returns the first non-empty
// result along with the name of the method that produced it.
func detectMonthColumns(cols []Column, year int) ([]MonthColumn, string) {
	for _, d := range monthDetectors {
		if months := d.match(cols, year); len(months) > 0 {
			return months, d.name
		}
	}
	return nil, ""
}

// orderChronologically sorts month columns by resolved date. If any label
// failed to parse, the whole set falls back to a lexicographic sort of the
// raw label strings; that ordering may be semantically wrong, which is a
// known limitation of the source data rather than something to correct here.
func orderChronologically(months []MonthColumn) []MonthColumn {
	ordered := make([]MonthColumn, len(months))
	copy(ordered, months)

	allParsed := true
	for _, m := range ordered {
		if !m.Parsed {
			allParsed = false
			break
		}
	}

	if allParsed {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Date.Before(ordered[j].Date)
		})
	} else {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Label.String() < ordered[j].Label.String()
		})
	}

	for i := range ordered {
		ordered[i].Ordinal = i
	}
	return ordered
}
