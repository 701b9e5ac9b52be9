package engine

import (
	"sort"
)

// ============================================================================
// AGGREGATORS — Grouping and per-group measures via RecordView
// ============================================================================
// Grouping produces SubViews (index lists into parent view).
// Group keys are stringified cells; the order of groups is either first
// appearance in the view or lexicographic, and the same order is used for
// labels and series.
// ============================================================================

// Group is an intermediate grouped result.
type Group struct {
	Key       string     `json:"key"`
	Value     float64    `json:"value"`
	Count     int        `json:"count"`
	SubGroups []Group    `json:"subGroups,omitempty"`
	View      RecordView `json:"-"` // rows in this group (zero-copy)
}

// GroupAndAggregate groups the view by column (and secondary, if set) and
// applies the configured measure to every group and sub-group.
func GroupAndAggregate(view RecordView, column, secondary, aggregate string, opts ...Option) []Group {
	cfg := applyOptions(opts)
	return groupAndAggregate(view, column, secondary, aggregate, cfg)
}

func groupAndAggregate(view RecordView, column, secondary, aggregate string, cfg *config) []Group {
	if view.Len() == 0 {
		return nil
	}

	groups := groupBySingle(view, column, cfg.Order)
	if secondary != "" {
		for i := range groups {
			groups[i].SubGroups = groupBySingle(groups[i].View, secondary, cfg.Order)
		}
	}

	for i := range groups {
		measureGroup(&groups[i], aggregate, cfg.Measure)
		for j := range groups[i].SubGroups {
			measureGroup(&groups[i].SubGroups[j], aggregate, cfg.Measure)
		}
	}
	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, header string, order GroupOrder) []Group {
	grouped := make(map[string][]int)
	keys := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Cell(i, header)
		if _, exists := grouped[key]; !exists {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	sortKeys(keys, order)

	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, Group{
			Key:  key,
			View: newSubView(view, grouped[key]),
		})
	}
	return groups
}

// GroupKeys returns the distinct stringified values of header in group order.
func GroupKeys(view RecordView, header string, order GroupOrder) []string {
	seen := make(map[string]bool)
	keys := make([]string, 0)
	for i := 0; i < view.Len(); i++ {
		key := view.Cell(i, header)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sortKeys(keys, order)
	return keys
}

func sortKeys(keys []string, order GroupOrder) {
	if order == OrderAlpha {
		sort.Strings(keys)
	}
	// OrderFirstSeen: keys are already in appearance order
}

// ============================================================================
// MEASURES
// ============================================================================

func measureGroup(group *Group, aggregate string, measure Measure) {
	group.Count = group.View.Len()
	switch measure {
	case MeasureCountDistinct:
		group.Value = float64(CountDistinct(group.View, aggregate))
	default:
		group.Value = float64(group.Count)
	}
}

// CountDistinct counts distinct non-empty stringified values of header.
func CountDistinct(view RecordView, header string) int {
	seen := make(map[string]struct{})
	for i := 0; i < view.Len(); i++ {
		v := view.Value(i, header)
		if v.IsEmpty() {
			continue
		}
		seen[v.String()] = struct{}{}
	}
	return len(seen)
}

// UniqueValues returns distinct non-empty values of header in appearance order.
func UniqueValues(view RecordView, header string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Cell(i, header)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}
