package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// filesIngestedTotal counts uploaded files by outcome: loaded, error, empty, truncated.
	filesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetdash_files_ingested_total",
			Help: "Total number of uploaded files by ingestion outcome",
		},
		[]string{"outcome"},
	)

	// transitionsTotal counts state transitions by kind.
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetdash_state_transitions_total",
			Help: "Total number of filter, visibility and hidden-control changes",
		},
		[]string{"kind"},
	)

	// queriesTotal counts executed row and chart queries by view mode.
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetdash_queries_total",
			Help: "Total number of executed queries per view mode",
		},
		[]string{"mode"},
	)

	// loadedRows tracks the row count of the current ingestion.
	loadedRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sheetdash_loaded_rows",
			Help: "Rows across all datasets of the current ingestion",
		},
	)
)
