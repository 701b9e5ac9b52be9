package schema

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"github.com/spektr-org/sheetdash/engine"
)

// ============================================================================
// STATE — One immutable revision of an ingestion and its controls
// ============================================================================
// Ingest creates Schema, Filters, Visibility and Hidden together. Every
// transition copies what it changes and returns a new *State under a new
// Revision; the receiver is never mutated, so a *State can be shared freely
// between goroutines. A new ingestion replaces the whole State.
// ============================================================================

// HiddenFilterSet holds the headers whose filter control is collapsed.
// It is presentational only and never reaches the filter engine.
type HiddenFilterSet map[string]struct{}

// Has reports whether header is collapsed.
func (h HiddenFilterSet) Has(header string) bool {
	_, ok := h[header]
	return ok
}

// Headers returns the collapsed headers, sorted.
func (h HiddenFilterSet) Headers() []string {
	out := make([]string, 0, len(h))
	for k := range h {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted list.
func (h HiddenFilterSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Headers())
}

// State is the controlling state of one revision.
type State struct {
	Revision   uuid.UUID              `json:"revision"`
	Datasets   []engine.Dataset       `json:"-"`
	Schema     *Unified               `json:"schema"`
	Filters    engine.FilterState     `json:"filters"`
	Visibility engine.VisibilityState `json:"visibility"`
	Hidden     HiddenFilterSet        `json:"hidden"`
}

// Ingest unifies datasets and derives fresh controls: every filter "",
// every header visible, nothing collapsed.
func Ingest(datasets []engine.Dataset) *State {
	kept := make([]engine.Dataset, 0, len(datasets))
	for _, ds := range datasets {
		if len(ds.Rows) > 0 {
			kept = append(kept, ds)
		}
	}

	u := Unify(kept)
	filters := make(engine.FilterState, len(u.Headers))
	visibility := make(engine.VisibilityState, len(u.Headers))
	for _, h := range u.Headers {
		filters[h] = ""
		visibility[h] = true
	}

	return &State{
		Revision:   uuid.New(),
		Datasets:   kept,
		Schema:     u,
		Filters:    filters,
		Visibility: visibility,
		Hidden:     HiddenFilterSet{},
	}
}

// WithFilter sets the filter value of header; "" clears it.
func (s *State) WithFilter(header, value string) *State {
	if !s.Schema.HasHeader(header) {
		return s
	}
	next := s.derive()
	next.Filters = copyFilters(s.Filters)
	next.Filters[header] = value
	return next
}

// ClearFilters resets every filter value to "".
func (s *State) ClearFilters() *State {
	next := s.derive()
	next.Filters = make(engine.FilterState, len(s.Filters))
	for h := range s.Filters {
		next.Filters[h] = ""
	}
	return next
}

// WithVisibility shows or hides header. A hidden header is neither filtered
// nor projected into tables.
func (s *State) WithVisibility(header string, visible bool) *State {
	if !s.Schema.HasHeader(header) {
		return s
	}
	next := s.derive()
	next.Visibility = make(engine.VisibilityState, len(s.Visibility))
	for h, v := range s.Visibility {
		next.Visibility[h] = v
	}
	next.Visibility[header] = visible
	return next
}

// ToggleHidden collapses or expands the filter control of header.
func (s *State) ToggleHidden(header string) *State {
	if !s.Schema.HasHeader(header) {
		return s
	}
	next := s.derive()
	next.Hidden = make(HiddenFilterSet, len(s.Hidden)+1)
	for h := range s.Hidden {
		next.Hidden[h] = struct{}{}
	}
	if s.Hidden.Has(header) {
		delete(next.Hidden, header)
	} else {
		next.Hidden[header] = struct{}{}
	}
	return next
}

// derive returns a shallow copy under a new revision. Callers replace, never
// mutate, the maps they change.
func (s *State) derive() *State {
	next := *s
	next.Revision = uuid.New()
	return &next
}

func copyFilters(f engine.FilterState) engine.FilterState {
	out := make(engine.FilterState, len(f))
	for h, v := range f {
		out[h] = v
	}
	return out
}

// ============================================================================
// READ HELPERS
// ============================================================================

// Rows returns a view over every row of every dataset.
func (s *State) Rows() engine.RecordView {
	return engine.NewDatasetsView(s.Datasets)
}

// Filtered returns the rows passing the current filters.
func (s *State) Filtered(opts ...engine.Option) engine.RecordView {
	return engine.ApplyFilters(s.Rows(), s.Filters, s.Visibility, opts...)
}

// Query builds an executor query carrying this revision's controls.
func (s *State) Query(mode engine.ViewMode, req engine.ChartRequest) engine.Query {
	return engine.Query{
		Mode:       mode,
		Column:     req.Column,
		Aggregate:  req.Aggregate,
		Secondary:  req.Secondary,
		Filters:    s.Filters,
		Visibility: s.Visibility,
		Headers:    s.Schema.Headers,
	}
}

// Execute runs q against every row of this revision.
func (s *State) Execute(mode engine.ViewMode, req engine.ChartRequest, opts ...engine.Option) (*engine.Result, error) {
	return engine.Execute(s.Rows(), s.Query(mode, req), opts...)
}
