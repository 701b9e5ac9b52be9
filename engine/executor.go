package engine

import (
	"errors"
	"fmt"
)

// ============================================================================
// EXECUTOR — Dispatcher between table projection and chart aggregation
// ============================================================================
// Entry point: Execute(view, query, opts...)
//
// Pipeline:
//   1. Validate the view mode
//   2. Apply filters → SubView
//   3. table        → BuildTable over the visible headers
//      chart modes  → Aggregate, or a placeholder when columns are missing
//
// Pure: no logging, no I/O, no retained state.
// ============================================================================

var (
	// ErrIncompleteConfiguration means a chart was requested without both
	// the category and the value column. Hosts show a placeholder.
	ErrIncompleteConfiguration = errors.New("chart needs a category column and a value column")

	// ErrUnknownViewMode means the mode is not one of ViewModes.
	ErrUnknownViewMode = errors.New("unknown view mode")
)

// PlaceholderReply is shown instead of a chart when configuration is incomplete.
const PlaceholderReply = "Select a category column and a value column to build a chart."

// Query is one presentation request against the loaded rows.
type Query struct {
	Mode       ViewMode        `json:"mode"`
	Column     string          `json:"column,omitempty"`
	Aggregate  string          `json:"aggregate,omitempty"`
	Secondary  string          `json:"secondary,omitempty"`
	Filters    FilterState     `json:"filters,omitempty"`
	Visibility VisibilityState `json:"visibility,omitempty"`
	Headers    []string        `json:"headers,omitempty"` // table column order; defaults to view order
}

// Chart returns the chart part of the query.
func (q Query) Chart() ChartRequest {
	return ChartRequest{Column: q.Column, Aggregate: q.Aggregate, Secondary: q.Secondary, Mode: q.Mode}
}

// Validate reports ErrUnknownViewMode or, for chart modes,
// ErrIncompleteConfiguration.
func (q Query) Validate() error {
	if _, err := ParseViewMode(string(q.Mode)); err != nil {
		return err
	}
	if q.Mode.IsChart() && !q.Chart().Complete() {
		return ErrIncompleteConfiguration
	}
	return nil
}

// Execute filters view and renders it for the query's mode.
// Only an unknown view mode is an error; an incomplete chart configuration
// yields a "placeholder" result.
func Execute(view RecordView, q Query, opts ...Option) (*Result, error) {
	err := q.Validate()
	if errors.Is(err, ErrUnknownViewMode) {
		return nil, fmt.Errorf("execute: %w", err)
	}

	filtered := ApplyFilters(view, q.Filters, q.Visibility, opts...)
	result := &Result{
		Mode:    q.Mode,
		Matched: filtered.Len(),
		Total:   view.Len(),
	}

	if errors.Is(err, ErrIncompleteConfiguration) {
		result.Type = "placeholder"
		result.Reply = PlaceholderReply
		return result, nil
	}

	switch {
	case q.Mode.IsChart():
		result.Type = "chart"
		result.Chart = Aggregate(filtered, q.Chart(), opts...)
	default:
		headers := q.Headers
		if headers == nil {
			headers = view.Headers()
		}
		result.Type = "table"
		result.Table = BuildTable(filtered, headers, q.Visibility, view.Len())
	}

	if filtered.Len() == 0 {
		result.Reply = "No rows match the current filters."
	}
	return result, nil
}
