// Package sheetdash turns a batch of independently-shaped spreadsheets into
// filtered rows and chart-ready category data.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/sheetdash/decoder"
//	    "github.com/spektr-org/sheetdash/engine"
//	    "github.com/spektr-org/sheetdash/schema"
//	)
//
//	datasets, report, err := decoder.LoadBatch(ctx, files)
//	state := schema.Ingest(datasets).WithFilter("Region", "north")
//	result, err := state.Execute(engine.ModePie, engine.ChartRequest{
//	    Column:    "Team",
//	    Aggregate: "Ticket",
//	})
//
// Decoding (decoder) is the only step that does I/O. Schema unification
// (schema) and filtering and aggregation (engine) are pure functions over
// in-memory rows; every state change yields a new immutable revision.
package sheetdash
