package engine

import "fmt"

// ============================================================================
// ENGINE OPTIONS — Functional options for filtering and aggregation
// ============================================================================

// Measure is the per-group reduction used by the category aggregator.
type Measure string

const (
	// MeasureCount counts rows in a group; the aggregate column only names
	// what is being counted and is not read.
	MeasureCount Measure = "count"
	// MeasureCountDistinct counts distinct non-empty aggregate values in a group.
	MeasureCountDistinct Measure = "count_distinct"
)

// MatchMode selects how a filter value is compared to a cell.
type MatchMode string

const (
	// MatchExact is case-insensitive equality.
	MatchExact MatchMode = "exact"
	// MatchContains is case-insensitive substring containment.
	MatchContains MatchMode = "contains"
)

// GroupOrder selects the order of category labels and series.
type GroupOrder string

const (
	OrderFirstSeen GroupOrder = "first_seen"
	OrderAlpha     GroupOrder = "alpha"
)

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Measure    Measure
	Match      MatchMode
	Order      GroupOrder
	SeriesName string // single-series name override
}

// WithMeasure selects the aggregation measure.
func WithMeasure(m Measure) Option {
	return func(c *config) {
		c.Measure = m
	}
}

// WithMatchMode selects filter matching semantics.
func WithMatchMode(m MatchMode) Option {
	return func(c *config) {
		c.Match = m
	}
}

// WithGroupOrder selects label/series ordering.
func WithGroupOrder(o GroupOrder) Option {
	return func(c *config) {
		c.Order = o
	}
}

// WithSeriesName names the series produced when there is no secondary column.
func WithSeriesName(name string) Option {
	return func(c *config) {
		c.SeriesName = name
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Measure: MeasureCount,
		Match:   MatchExact,
		Order:   OrderFirstSeen,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ParseMeasure validates a measure name.
func ParseMeasure(s string) (Measure, error) {
	switch Measure(s) {
	case MeasureCount, MeasureCountDistinct:
		return Measure(s), nil
	}
	return "", fmt.Errorf("unknown measure %q (want count or count_distinct)", s)
}

// ParseMatchMode validates a match mode name.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case MatchExact, MatchContains:
		return MatchMode(s), nil
	}
	return "", fmt.Errorf("unknown match mode %q (want exact or contains)", s)
}

// ParseGroupOrder validates a group order name.
func ParseGroupOrder(s string) (GroupOrder, error) {
	switch GroupOrder(s) {
	case OrderFirstSeen, OrderAlpha:
		return GroupOrder(s), nil
	}
	return "", fmt.Errorf("unknown group order %q (want first_seen or alpha)", s)
}
