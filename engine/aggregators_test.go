package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// AGGREGATION + CHART TESTS
// ============================================================================

func ordersView() RecordView {
	return NewDatasetsView([]Dataset{
		{SourceID: "orders.xlsx", Rows: []Row{
			NewRow(F("Cat", "A"), F("Order", "o1"), F("Status", "open")),
			NewRow(F("Cat", "B"), F("Order", "o2"), F("Status", "done")),
			NewRow(F("Cat", "A"), F("Order", "o1"), F("Status", "done")),
			NewRow(F("Cat", "A"), F("Status", "open")),
			NewRow(F("Cat", "B"), F("Order", "o3"), F("Status", "done")),
		}},
	})
}

func TestAggregate_CountSingleSeries(t *testing.T) {
	got := Aggregate(ordersView(), ChartRequest{Column: "Cat", Aggregate: "Order", Mode: ModePie})

	require.NotNil(t, got)
	assert.Equal(t, ModePie, got.Mode)
	assert.Equal(t, []string{"A", "B"}, got.Labels)
	assert.Equal(t, []Series{{Name: "count", Values: []float64{3, 2}}}, got.Series)
}

func TestAggregate_CountDistinct(t *testing.T) {
	got := Aggregate(ordersView(),
		ChartRequest{Column: "Cat", Aggregate: "Order", Mode: ModeBar},
		WithMeasure(MeasureCountDistinct))

	require.NotNil(t, got)
	assert.Equal(t, []string{"A", "B"}, got.Labels)
	// A: {o1} (blank Order ignored), B: {o2, o3}
	assert.Equal(t, []Series{{Name: "count_distinct", Values: []float64{1, 2}}}, got.Series)
}

func TestAggregate_SecondaryZeroFills(t *testing.T) {
	view := NewDatasetsView([]Dataset{{SourceID: "s", Rows: []Row{
		NewRow(F("Region", "North"), F("Product", "Tea")),
		NewRow(F("Region", "South"), F("Product", "Coffee")),
		NewRow(F("Region", "North"), F("Product", "Tea")),
		NewRow(F("Region", "East"), F("Product", "Tea")),
		NewRow(F("Region", "East"), F("Product", "Juice")),
	}}})

	got := Aggregate(view, ChartRequest{Column: "Region", Aggregate: "Product", Secondary: "Product", Mode: ModeStackedBar})

	require.NotNil(t, got)
	assert.Equal(t, []string{"North", "South", "East"}, got.Labels)
	assert.Equal(t, []Series{
		{Name: "Tea", Values: []float64{2, 0, 1}},
		{Name: "Coffee", Values: []float64{0, 1, 0}},
		{Name: "Juice", Values: []float64{0, 0, 1}},
	}, got.Series)
	for _, s := range got.Series {
		assert.Len(t, s.Values, len(got.Labels), "series %s must align to labels", s.Name)
	}
}

func TestAggregate_AlphaOrder(t *testing.T) {
	got := Aggregate(ordersView(),
		ChartRequest{Column: "Status", Aggregate: "Order", Secondary: "Cat", Mode: ModeHorizontalBar},
		WithGroupOrder(OrderAlpha))

	require.NotNil(t, got)
	assert.Equal(t, []string{"done", "open"}, got.Labels)
	assert.Equal(t, []Series{
		{Name: "A", Values: []float64{1, 2}},
		{Name: "B", Values: []float64{2, 0}},
	}, got.Series)
}

func TestAggregate_IncompleteConfigurationReturnsNil(t *testing.T) {
	assert.Nil(t, Aggregate(ordersView(), ChartRequest{Column: "Cat", Mode: ModePie}))
	assert.Nil(t, Aggregate(ordersView(), ChartRequest{Aggregate: "Order", Mode: ModePie}))
}

func TestAggregate_EmptyViewYieldsEmptyChart(t *testing.T) {
	got := Aggregate(NewDatasetsView(nil), ChartRequest{Column: "Cat", Aggregate: "Order", Mode: ModeDoughnut})

	require.NotNil(t, got)
	assert.Empty(t, got.Labels)
	require.Len(t, got.Series, 1)
	assert.Empty(t, got.Series[0].Values)

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"doughnut","labels":[],"series":[{"name":"count","values":[]}]}`, string(out))
}

func TestAggregate_MissingColumnGroupsUnderEmptyKey(t *testing.T) {
	view := NewDatasetsView([]Dataset{{SourceID: "s", Rows: []Row{
		NewRow(F("Cat", "A")),
		NewRow(F("Other", 1)),
		NewRow(F("Cat", 7)),
	}}})

	got := Aggregate(view, ChartRequest{Column: "Cat", Aggregate: "Cat", Mode: ModeBar})
	require.NotNil(t, got)
	assert.Equal(t, []string{"A", "", "7"}, got.Labels)
	assert.Equal(t, []float64{1, 1, 1}, got.Series[0].Values)
}

func TestAggregate_Deterministic(t *testing.T) {
	req := ChartRequest{Column: "Status", Aggregate: "Order", Secondary: "Cat", Mode: ModeStackedBar}

	first, err := json.Marshal(Aggregate(ordersView(), req))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Aggregate(ordersView(), req))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestAggregate_SeriesNameOverride(t *testing.T) {
	got := Aggregate(ordersView(), ChartRequest{Column: "Cat", Aggregate: "Order", Mode: ModePie}, WithSeriesName("orders"))
	require.NotNil(t, got)
	assert.Equal(t, "orders", got.Series[0].Name)
}

func TestGroupAndAggregate_SubGroupCounts(t *testing.T) {
	groups := GroupAndAggregate(ordersView(), "Cat", "Status", "Order")

	require.Len(t, groups, 2)
	assert.Equal(t, "A", groups[0].Key)
	assert.Equal(t, 3, groups[0].Count)
	require.Len(t, groups[0].SubGroups, 2)
	assert.Equal(t, "open", groups[0].SubGroups[0].Key)
	assert.Equal(t, 2.0, groups[0].SubGroups[0].Value)
	assert.Equal(t, "done", groups[0].SubGroups[1].Key)
	assert.Equal(t, 1.0, groups[0].SubGroups[1].Value)
}

func TestUniqueValues(t *testing.T) {
	assert.Equal(t, []string{"o1", "o2", "o3"}, UniqueValues(ordersView(), "Order"))
}
