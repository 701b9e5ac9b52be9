package schema

// ============================================================================
// SCHEMA — Unified shape of every loaded dataset
// ============================================================================
// Built by Unify from all datasets of one ingestion batch.
// Hosts use Headers for column order, DistinctValues to populate filter
// choices, and Columns for hints when picking chart columns.
// ============================================================================

// Unified describes the union of all datasets of one ingestion.
type Unified struct {
	// Headers in first-seen order: dataset by dataset, row by row.
	Headers []string `json:"headers"`

	// DistinctValues maps header → sorted set of stringified non-empty
	// values, unioned across all datasets.
	DistinctValues map[string][]string `json:"distinctValues"`

	// Columns carries discovery metadata, one entry per header, in order.
	Columns []ColumnMeta `json:"columns"`
}

// ColumnKind is the inferred content type of a header.
type ColumnKind string

const (
	KindText   ColumnKind = "text"
	KindNumber ColumnKind = "number"
	KindBool   ColumnKind = "bool"
	KindDate   ColumnKind = "date"
	KindEmpty  ColumnKind = "empty"
)

// ColumnMeta describes one unified header.
type ColumnMeta struct {
	Header          string     `json:"header"`
	Kind            ColumnKind `json:"kind"`
	DistinctCount   int        `json:"distinctCount"`
	FilledCount     int        `json:"filledCount"` // rows with a non-empty cell
	CardinalityHint string     `json:"cardinalityHint"`
	Sources         []string   `json:"sources"` // datasets carrying the header
}

// HasHeader reports whether header is part of the schema.
func (u *Unified) HasHeader(header string) bool {
	if u == nil {
		return false
	}
	_, ok := u.DistinctValues[header]
	return ok
}

// Column returns the metadata for header.
func (u *Unified) Column(header string) (ColumnMeta, bool) {
	if u == nil {
		return ColumnMeta{}, false
	}
	for _, c := range u.Columns {
		if c.Header == header {
			return c, true
		}
	}
	return ColumnMeta{}, false
}
