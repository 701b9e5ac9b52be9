package engine

import "sort"

// ============================================================================
// RECORD VIEW — Zero-Copy Row Access Interface
// ============================================================================
// The engine never owns host data. It reads through this interface.
//
// Implementations:
//   DatasetsView — virtual concatenation of datasets, dataset then row order
//   SourcedView  — wraps []SourcedRow (already-filtered output, tests)
//   SubView      — filtered subset (indices into parent, zero-copy)
// ============================================================================

// RecordView provides indexed access to sourced rows.
// The engine calls Cell in tight loops — keep implementations fast.
type RecordView interface {
	Len() int
	Row(index int) Row
	Source(index int) string
	Value(index int, header string) Value
	Cell(index int, header string) string // stringified Value
	Headers() []string                    // first-seen header order
}

// Materialize copies a view into a flat []SourcedRow (rows are shared,
// not deep-copied).
func Materialize(view RecordView) []SourcedRow {
	out := make([]SourcedRow, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		out = append(out, SourcedRow{SourceID: view.Source(i), Row: view.Row(i)})
	}
	return out
}

// firstSeen appends headers of rows to an ordered set.
type firstSeen struct {
	seen  map[string]bool
	order []string
}

func (f *firstSeen) add(r Row) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	for _, h := range r.Headers() {
		if !f.seen[h] {
			f.seen[h] = true
			f.order = append(f.order, h)
		}
	}
}

// ============================================================================
// DATASETS VIEW — dataset-then-row concatenation
// ============================================================================

// DatasetsView logically concatenates datasets without copying rows.
type DatasetsView struct {
	datasets []Dataset
	offsets  []int // offsets[i] = index of first row of datasets[i]
	total    int
	headers  []string
}

// NewDatasetsView creates a RecordView over datasets in order.
func NewDatasetsView(datasets []Dataset) RecordView {
	v := &DatasetsView{datasets: datasets, offsets: make([]int, len(datasets))}
	var hs firstSeen
	for i, ds := range datasets {
		v.offsets[i] = v.total
		v.total += len(ds.Rows)
		for _, r := range ds.Rows {
			hs.add(r)
		}
	}
	v.headers = hs.order
	return v
}

func (v *DatasetsView) locate(i int) (int, int, bool) {
	if i < 0 || i >= v.total {
		return 0, 0, false
	}
	// last dataset whose offset <= i; skips zero-row datasets sharing an offset
	d := sort.Search(len(v.offsets), func(k int) bool { return v.offsets[k] > i }) - 1
	return d, i - v.offsets[d], true
}

func (v *DatasetsView) Len() int { return v.total }

func (v *DatasetsView) Row(i int) Row {
	d, r, ok := v.locate(i)
	if !ok {
		return Row{}
	}
	return v.datasets[d].Rows[r]
}

func (v *DatasetsView) Source(i int) string {
	d, _, ok := v.locate(i)
	if !ok {
		return ""
	}
	return v.datasets[d].SourceID
}

func (v *DatasetsView) Value(i int, header string) Value { return v.Row(i).Get(header) }
func (v *DatasetsView) Cell(i int, header string) string { return v.Value(i, header).String() }
func (v *DatasetsView) Headers() []string                { return v.headers }

// ============================================================================
// SOURCED VIEW — wraps []SourcedRow
// ============================================================================

// SourcedView wraps an already-flattened row sequence.
type SourcedView struct {
	rows    []SourcedRow
	headers []string
}

// NewSourcedView creates a RecordView from flattened rows.
func NewSourcedView(rows []SourcedRow) RecordView {
	var hs firstSeen
	for _, r := range rows {
		hs.add(r.Row)
	}
	return &SourcedView{rows: rows, headers: hs.order}
}

func (v *SourcedView) Len() int { return len(v.rows) }

func (v *SourcedView) Row(i int) Row {
	if i < 0 || i >= len(v.rows) {
		return Row{}
	}
	return v.rows[i].Row
}

func (v *SourcedView) Source(i int) string {
	if i < 0 || i >= len(v.rows) {
		return ""
	}
	return v.rows[i].SourceID
}

func (v *SourcedView) Value(i int, header string) Value { return v.Row(i).Get(header) }
func (v *SourcedView) Cell(i int, header string) string { return v.Value(i, header).String() }
func (v *SourcedView) Headers() []string                { return v.headers }

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Row(i int) Row {
	if i < 0 || i >= len(v.indices) {
		return Row{}
	}
	return v.parent.Row(v.indices[i])
}

func (v *SubView) Source(i int) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Source(v.indices[i])
}

func (v *SubView) Value(i int, header string) Value {
	if i < 0 || i >= len(v.indices) {
		return Empty
	}
	return v.parent.Value(v.indices[i], header)
}

func (v *SubView) Cell(i int, header string) string { return v.Value(i, header).String() }
func (v *SubView) Headers() []string                { return v.parent.Headers() }
