package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================================
// FILTERS — Per-header filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL header constraints per row in one loop.
// Returns a SubView (index list into parent) — zero data copy.
// ============================================================================

// constraint is one active (enabled, non-empty) filter.
type constraint struct {
	header string
	want   string // lower-cased filter value
}

// ApplyFilters returns a view of rows passing every header constraint.
//
// A row passes the constraint on header h when visibility disables h, the
// filter value for h is empty, or the row's lower-cased cell at h matches
// the lower-cased filter value. A row lacking h reads as "". Constraints on
// headers the view does not carry are ignored.
func ApplyFilters(view RecordView, filters FilterState, visibility VisibilityState, opts ...Option) RecordView {
	cfg := applyOptions(opts)
	lower := cases.Lower(language.Und)

	active := activeConstraints(view.Headers(), filters, visibility, lower)
	if len(active) == 0 {
		return view
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if rowPasses(view, i, active, cfg.Match, lower) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

// FilterRows evaluates filters against all datasets and returns the working
// row set in dataset order, then row order, each row tagged with its source.
func FilterRows(datasets []Dataset, filters FilterState, visibility VisibilityState, opts ...Option) []SourcedRow {
	return Materialize(ApplyFilters(NewDatasetsView(datasets), filters, visibility, opts...))
}

func activeConstraints(headers []string, filters FilterState, visibility VisibilityState, lower cases.Caser) []constraint {
	known := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		known[h] = struct{}{}
	}

	var active []constraint
	for h, val := range filters {
		if val == "" || !visibility.Enabled(h) {
			continue
		}
		if _, ok := known[h]; !ok {
			continue
		}
		active = append(active, constraint{header: h, want: lower.String(val)})
	}
	return active
}

func rowPasses(view RecordView, i int, active []constraint, mode MatchMode, lower cases.Caser) bool {
	for _, c := range active {
		got := lower.String(view.Cell(i, c.header))
		if !matches(got, c.want, mode) {
			return false
		}
	}
	return true
}

func matches(got, want string, mode MatchMode) bool {
	if mode == MatchContains {
		return strings.Contains(got, want)
	}
	return got == want
}
