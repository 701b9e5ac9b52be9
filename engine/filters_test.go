package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// FILTER TESTS
// ============================================================================

func cityDeptDatasets() []Dataset {
	return []Dataset{
		{SourceID: "file1", Rows: []Row{
			NewRow(F("City", "X"), F("Dept", "Sales")),
			NewRow(F("City", "Y"), F("Dept", "Eng")),
		}},
		{SourceID: "file2", Rows: []Row{
			NewRow(F("City", "X"), F("Dept", "Eng")),
		}},
	}
}

func regionDatasets() []Dataset {
	return []Dataset{
		{SourceID: "q1.xlsx", Rows: []Row{
			NewRow(F("Region", "North"), F("Units", 3), F("Active", true)),
			NewRow(F("Region", "South"), F("Units", 5)),
			NewRow(F("Region", "north"), F("Units", 2.5)),
		}},
		{SourceID: "q2.xlsx", Rows: []Row{
			NewRow(F("Region", "South"), F("Owner", "Ana")),
			NewRow(F("Owner", "Bo")),
			NewRow(F("Region", "East"), F("Units", 3), F("Owner", "Ana")),
		}},
	}
}

func allRows(datasets []Dataset) []SourcedRow {
	var out []SourcedRow
	for _, ds := range datasets {
		for _, r := range ds.Rows {
			out = append(out, SourcedRow{SourceID: ds.SourceID, Row: r})
		}
	}
	return out
}

func TestFilterRows_EndToEnd(t *testing.T) {
	got := FilterRows(cityDeptDatasets(), FilterState{"City": "", "Dept": "Eng"}, VisibilityState{"City": true, "Dept": true})

	require.Len(t, got, 2)
	assert.Equal(t, "file1", got[0].SourceID)
	assert.Equal(t, "Y", got[0].Row.Get("City").String())
	assert.Equal(t, "Eng", got[0].Row.Get("Dept").String())
	assert.Equal(t, "file2", got[1].SourceID)
	assert.Equal(t, "X", got[1].Row.Get("City").String())
	assert.Equal(t, "Eng", got[1].Row.Get("Dept").String())
}

func TestFilterRows_EmptyFiltersReturnEverything(t *testing.T) {
	datasets := regionDatasets()
	empty := FilterState{"Region": "", "Units": "", "Active": "", "Owner": ""}

	visibilities := []VisibilityState{
		nil,
		{"Region": true, "Units": true, "Active": true, "Owner": true},
		{"Region": false, "Units": true, "Active": false, "Owner": false},
		{"Region": false, "Units": false, "Active": false, "Owner": false},
	}
	for _, vis := range visibilities {
		assert.Equal(t, allRows(datasets), FilterRows(datasets, empty, vis))
	}
}

func TestFilterRows_CaseInsensitiveExact(t *testing.T) {
	tests := []struct {
		name    string
		filters FilterState
		want    []string // Region cells of matched rows
	}{
		{"lower filter matches both cases", FilterState{"Region": "north"}, []string{"North", "north"}},
		{"upper filter matches both cases", FilterState{"Region": "NORTH"}, []string{"North", "north"}},
		{"prefix is not a match", FilterState{"Region": "Nor"}, nil},
		{"numeric cell stringified", FilterState{"Units": "2.5"}, []string{"north"}},
		{"integer cell has no decimals", FilterState{"Units": "3"}, []string{"North", "East"}},
		{"bool cell stringified", FilterState{"Active": "TRUE"}, []string{"North"}},
		{"constraints are AND-combined", FilterState{"Units": "3", "Owner": "ana"}, []string{"East"}},
		{"missing header reads as empty", FilterState{"Owner": "Bo"}, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRows(regionDatasets(), tt.filters, nil)
			var regions []string
			for _, r := range got {
				regions = append(regions, r.Row.Get("Region").String())
			}
			assert.Equal(t, tt.want, regions)
		})
	}
}

func TestFilterRows_ContainsMode(t *testing.T) {
	got := FilterRows(regionDatasets(), FilterState{"Region": "OR"}, nil, WithMatchMode(MatchContains))
	require.Len(t, got, 2)
	assert.Equal(t, "North", got[0].Row.Get("Region").String())
	assert.Equal(t, "north", got[1].Row.Get("Region").String())
}

func TestFilterRows_DisabledVisibilityEqualsClearedFilter(t *testing.T) {
	datasets := regionDatasets()
	filters := FilterState{"Region": "South", "Owner": "Ana"}

	hidden := FilterRows(datasets, filters, VisibilityState{"Region": false, "Owner": true})
	cleared := FilterRows(datasets, FilterState{"Region": "", "Owner": "Ana"}, VisibilityState{"Region": true, "Owner": true})

	assert.Equal(t, cleared, hidden)
	require.Len(t, hidden, 2)
}

func TestApplyFilters_Idempotent(t *testing.T) {
	filters := FilterState{"Region": "south"}
	vis := VisibilityState{"Region": true}

	once := FilterRows(regionDatasets(), filters, vis)
	twice := Materialize(ApplyFilters(NewSourcedView(once), filters, vis))

	assert.Equal(t, once, twice)
}

func TestApplyFilters_NoActiveConstraintsReturnsSameView(t *testing.T) {
	view := NewDatasetsView(regionDatasets())
	assert.Same(t, view, ApplyFilters(view, FilterState{"Region": ""}, nil))
	assert.Same(t, view, ApplyFilters(view, FilterState{"Region": "East"}, VisibilityState{"Region": false}))
}

func TestFilterRows_NoDatasets(t *testing.T) {
	assert.Empty(t, FilterRows(nil, FilterState{"a": "b"}, nil))
}

func TestFilterRows_UnknownHeaderIgnored(t *testing.T) {
	datasets := []Dataset{{SourceID: "f1", Rows: []Row{
		NewRow(F("City", "X")),
		NewRow(F("City", "Y")),
	}}}

	got := FilterRows(datasets, FilterState{"City": "", "Ghost": "zzz"}, VisibilityState{"City": true, "Ghost": true})
	assert.Equal(t, allRows(datasets), got)

	got = FilterRows(datasets, FilterState{"City": "y", "Ghost": "zzz"}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Y", got[0].Row.Get("City").String())
}
