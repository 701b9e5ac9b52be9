package engine

import "fmt"

// ============================================================================
// TABLE BUILDER — Tabular projection of the filtered rows
// ============================================================================
// Column visibility comes from the same VisibilityState that gates filter
// enforcement: hiding a column also stops filtering on it.
// ============================================================================

// VisibleHeaders returns headers whose visibility flag is on, in order.
func VisibleHeaders(headers []string, visibility VisibilityState) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if visibility.Enabled(h) {
			out = append(out, h)
		}
	}
	return out
}

// BuildTable projects view onto the visible headers. total is the row count
// before filtering, used for the summary line.
func BuildTable(view RecordView, headers []string, visibility VisibilityState, total int) *TableData {
	visible := VisibleHeaders(headers, visibility)

	columns := make([]Column, 0, len(visible))
	for _, h := range visible {
		columns = append(columns, describeColumn(view, h))
	}

	rows := make([][]string, 0, view.Len())
	sources := make([]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, 0, len(visible))
		for _, h := range visible {
			row = append(row, view.Cell(i, h))
		}
		rows = append(rows, row)
		sources = append(sources, view.Source(i))
	}

	return &TableData{
		Columns: columns,
		Rows:    rows,
		Sources: sources,
		Summary: &Summary{
			Label: fmt.Sprintf("%d of %d rows", view.Len(), total),
			Rows:  view.Len(),
			Total: total,
		},
	}
}

// describeColumn marks a column numeric when every non-empty cell is a number.
func describeColumn(view RecordView, header string) Column {
	col := Column{Key: header, Label: header, Type: "text", Align: "left"}
	numeric, seen := true, false
	for i := 0; i < view.Len() && numeric; i++ {
		v := view.Value(i, header)
		if v.IsEmpty() {
			continue
		}
		seen = true
		numeric = v.Kind() == KindNumber
	}
	if seen && numeric {
		col.Type = "number"
		col.Align = "right"
	}
	return col
}
