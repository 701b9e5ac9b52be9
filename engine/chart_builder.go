package engine

// ============================================================================
// CHART BUILDER — Produces ChartData from a ChartRequest + Groups
// ============================================================================
// Labels are outer group keys. Without a secondary column there is exactly
// one series; with one, every inner key is a series and every series has a
// value for every label (missing pairs are zero).
// ============================================================================

// Aggregate groups the filtered rows and reduces them into chart data.
// It returns nil when the request lacks the category or the value column;
// callers show a placeholder in that case.
func Aggregate(view RecordView, req ChartRequest, opts ...Option) *ChartData {
	if !req.Complete() {
		return nil
	}
	cfg := applyOptions(opts)
	groups := groupAndAggregate(view, req.Column, req.Secondary, req.Aggregate, cfg)

	var seriesKeys []string
	if req.Secondary != "" {
		seriesKeys = GroupKeys(view, req.Secondary, cfg.Order)
	}
	return BuildChart(req, groups, seriesKeys, seriesName(cfg))
}

// BuildChart lays groups out as labels and series. seriesKeys fixes the
// series order for two-level groups; it is ignored without a secondary column.
func BuildChart(req ChartRequest, groups []Group, seriesKeys []string, name string) *ChartData {
	chart := &ChartData{
		Mode:   req.Mode,
		Labels: make([]string, 0, len(groups)),
	}
	for _, g := range groups {
		chart.Labels = append(chart.Labels, g.Key)
	}

	if req.Secondary != "" {
		chart.Series = buildMultiSeries(groups, seriesKeys)
	} else {
		chart.Series = buildSingleSeries(groups, name)
	}
	return chart
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, name string) []Series {
	values := make([]float64, 0, len(groups))
	for _, g := range groups {
		values = append(values, g.Value)
	}
	return []Series{{Name: name, Values: values}}
}

func buildMultiSeries(groups []Group, seriesKeys []string) []Series {
	series := make([]Series, len(seriesKeys))
	for i, key := range seriesKeys {
		series[i] = Series{Name: key, Values: make([]float64, len(groups))}
	}

	index := make(map[string]int, len(seriesKeys))
	for i, key := range seriesKeys {
		index[key] = i
	}

	for gi, g := range groups {
		for _, sg := range g.SubGroups {
			if si, ok := index[sg.Key]; ok {
				series[si].Values[gi] = sg.Value
			}
		}
	}
	return series
}

func seriesName(cfg *config) string {
	if cfg.SeriesName != "" {
		return cfg.SeriesName
	}
	return string(cfg.Measure)
}
