package schema

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spektr-org/sheetdash/engine"
)

// ============================================================================
// DISCOVERY — Heuristic column classification
// ============================================================================
// Runs alongside Unify over every cell of a header:
//   1. Count values by detected type (number, bool, date, text)
//   2. Kind = the type shared by 80%+ of non-empty values, else text
//   3. Cardinality hint from the distinct-value count
// No cell is validated or rejected; this only feeds hints to hosts.
// ============================================================================

// maxChartCardinality bounds the distinct values of a useful category column.
const maxChartCardinality = 100

type columnAnalysis struct {
	header  string
	unique  map[string]struct{}
	sources []string

	filled    int
	numCount  int
	boolCount int
	dateCount int
}

func newColumnAnalysis(header string) *columnAnalysis {
	return &columnAnalysis{header: header, unique: make(map[string]struct{})}
}

func (col *columnAnalysis) observe(source string, v engine.Value) {
	if n := len(col.sources); n == 0 || col.sources[n-1] != source {
		col.sources = append(col.sources, source)
	}
	if v.IsEmpty() {
		return
	}

	s := v.String()
	col.filled++
	col.unique[s] = struct{}{}

	switch v.Kind() {
	case engine.KindNumber:
		col.numCount++
	case engine.KindBool:
		col.boolCount++
	default:
		if isNumeric(s) {
			col.numCount++
		}
		if isBool(s) {
			col.boolCount++
		}
		if isDate(s) {
			col.dateCount++
		}
	}
}

func (col *columnAnalysis) kind() ColumnKind {
	if col.filled == 0 {
		return KindEmpty
	}
	threshold := int(float64(col.filled) * 0.8)
	if threshold == 0 {
		threshold = 1
	}
	switch {
	case col.boolCount >= threshold:
		return KindBool
	case col.dateCount >= threshold:
		return KindDate
	case col.numCount >= threshold:
		return KindNumber
	default:
		return KindText
	}
}

func (col *columnAnalysis) toMeta() ColumnMeta {
	n := len(col.unique)
	hint := "high"
	switch {
	case n <= 10:
		hint = "low"
	case n <= maxChartCardinality:
		hint = "medium"
	}
	return ColumnMeta{
		Header:          col.header,
		Kind:            col.kind(),
		DistinctCount:   n,
		FilledCount:     col.filled,
		CardinalityHint: hint,
		Sources:         col.sources,
	}
}

// SuggestChartColumns returns headers usable as chart categories: non-empty
// columns with at most 100 distinct values, in header order.
func SuggestChartColumns(u *Unified) []string {
	if u == nil {
		return nil
	}
	var out []string
	for _, c := range u.Columns {
		if c.Kind != KindEmpty && c.DistinctCount <= maxChartCardinality {
			out = append(out, c.Header)
		}
	}
	return out
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "") // "1,234.56"
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	s = strings.TrimPrefix(s, "R$")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"Jan-2006",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	switch cases.Lower(language.Und).String(strings.TrimSpace(s)) {
	case "true", "false", "yes", "no", "sim", "não", "nao":
		return true
	}
	return false
}
