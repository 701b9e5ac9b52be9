package schema

import (
	"sort"

	"github.com/spektr-org/sheetdash/engine"
)

// ============================================================================
// UNIFY — Merge N non-uniform datasets into one schema
// ============================================================================
// Scans datasets left to right, rows top to bottom, headers in row order.
// The first time a header is seen fixes its position. Distinct values are
// collected per header across ALL datasets, then sorted.
// ============================================================================

// Unify builds the unified schema of datasets. Zero-row datasets contribute
// nothing; an empty input yields an empty (non-nil) schema.
func Unify(datasets []engine.Dataset) *Unified {
	u := &Unified{
		Headers:        []string{},
		DistinctValues: make(map[string][]string),
		Columns:        []ColumnMeta{},
	}

	columns := make(map[string]*columnAnalysis)
	for _, ds := range datasets {
		for _, row := range ds.Rows {
			for _, h := range row.Headers() {
				col, ok := columns[h]
				if !ok {
					col = newColumnAnalysis(h)
					columns[h] = col
					u.Headers = append(u.Headers, h)
				}
				col.observe(ds.SourceID, row.Get(h))
			}
		}
	}

	for _, h := range u.Headers {
		col := columns[h]
		u.DistinctValues[h] = col.sortedValues()
		u.Columns = append(u.Columns, col.toMeta())
	}
	return u
}

func (col *columnAnalysis) sortedValues() []string {
	vals := make([]string, 0, len(col.unique))
	for v := range col.unique {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return vals
}
