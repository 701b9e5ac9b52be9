package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ============================================================================
// SHEETDASH ENGINE TYPES — Loosely-typed spreadsheet rows
// ============================================================================
// Rows coming out of spreadsheets are not homogeneous: two files can share a
// header and disagree on its type, and a row may simply not carry a header.
// Cells are therefore tagged scalars and rows are ordered header → cell maps.
// ============================================================================

// ============================================================================
// VALUE — tagged scalar cell
// ============================================================================

// Kind tags the scalar held by a Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

// Value is a single spreadsheet cell: empty, text, number or bool.
// The zero Value is empty.
type Value struct {
	kind Kind
	text string
	num  float64
	flag bool
}

// Empty is the missing / blank cell.
var Empty = Value{}

// Text wraps a string cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps a numeric cell. NaN is stored as empty.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Empty
	}
	return Value{kind: KindNumber, num: f}
}

// Bool wraps a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// ValueOf converts a Go scalar into a Value.
// Unknown types are stringified with fmt.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Empty
	case Value:
		return x
	case string:
		return Text(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case bool:
		return Bool(x)
	default:
		return Text(fmt.Sprint(x))
	}
}

// Kind reports the scalar tag.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the cell is missing or an empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty || (v.kind == KindText && v.text == "")
}

// Float returns the numeric payload and whether the cell is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String stringifies the cell. This is the form used for filtering,
// grouping and the distinct-value catalogue.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// MarshalJSON encodes the cell as a JSON scalar (null when empty).
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		if math.IsInf(v.num, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar into a cell.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil, string, float64, bool:
		*v = ValueOf(x)
		return nil
	default:
		return fmt.Errorf("cell must be a scalar, got %s", data)
	}
}

// ============================================================================
// ROW — ordered header → cell mapping
// ============================================================================

// Field is one header/cell pair, used to build rows.
type Field struct {
	Header string
	Value  Value
}

// F builds a Field from any Go scalar.
func F(header string, v any) Field {
	return Field{Header: header, Value: ValueOf(v)}
}

// Row is an ordered mapping from header name to cell.
// Headers keep insertion order; the zero Row is an empty row.
type Row struct {
	headers []string
	cells   map[string]Value
}

// NewRow builds a row from fields in order. A repeated header keeps its
// first position and takes the last value.
func NewRow(fields ...Field) Row {
	r := Row{}
	for _, f := range fields {
		r.Set(f.Header, f.Value)
	}
	return r
}

// Set assigns a cell, appending the header if it is new.
func (r *Row) Set(header string, v Value) {
	if r.cells == nil {
		r.cells = make(map[string]Value)
	}
	if _, ok := r.cells[header]; !ok {
		r.headers = append(r.headers, header)
	}
	r.cells[header] = v
}

// Get returns the cell for header, Empty when the row lacks it.
func (r Row) Get(header string) Value {
	return r.cells[header]
}

// Has reports whether the row carries header at all.
func (r Row) Has(header string) bool {
	_, ok := r.cells[header]
	return ok
}

// Headers returns the row's headers in insertion order.
func (r Row) Headers() []string { return r.headers }

// Len is the number of headers the row carries.
func (r Row) Len() int { return len(r.headers) }

// Clone returns an independent copy.
func (r Row) Clone() Row {
	out := Row{
		headers: append([]string(nil), r.headers...),
		cells:   make(map[string]Value, len(r.cells)),
	}
	for k, v := range r.cells {
		out.cells[k] = v
	}
	return out
}

// MarshalJSON encodes the row as a JSON object keeping header order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, h := range r.headers {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		val, err := r.cells[h].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into a row, keeping key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row must be a JSON object")
	}
	*r = Row{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row key must be a string")
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("row key %q: %w", key, err)
		}
		r.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

// ============================================================================
// DATASET — rows decoded from one uploaded file
// ============================================================================

// Dataset is the decoded content of one file.
type Dataset struct {
	SourceID string `json:"sourceId"`
	Checksum string `json:"checksum,omitempty"`
	Rows     []Row  `json:"rows"`
}

// SourcedRow is a row tagged with the dataset it came from.
type SourcedRow struct {
	SourceID string `json:"source"`
	Row      Row    `json:"row"`
}

// ============================================================================
// FILTER / VISIBILITY STATE
// ============================================================================

// FilterState maps header → filter value. An empty value is unconstrained.
type FilterState map[string]string

// VisibilityState maps header → flag.
//
// The flag has two meanings at once: a false entry disables filtering on
// that header AND removes the header from the table projection. Headers
// missing from the map count as visible.
type VisibilityState map[string]bool

// Enabled reports whether header is visible (and therefore filtered).
func (v VisibilityState) Enabled(header string) bool {
	on, ok := v[header]
	return !ok || on
}

// ============================================================================
// VIEW MODES
// ============================================================================

// ViewMode selects the presentation of the filtered rows.
type ViewMode string

const (
	ModeTable         ViewMode = "table"
	ModePie           ViewMode = "pie"
	ModeDoughnut      ViewMode = "doughnut"
	ModeBar           ViewMode = "bar"
	ModeStackedBar    ViewMode = "stacked-bar"
	ModeHorizontalBar ViewMode = "horizontal-bar"
)

// ViewModes lists every mode in button order.
var ViewModes = []ViewMode{ModeTable, ModePie, ModeDoughnut, ModeBar, ModeStackedBar, ModeHorizontalBar}

// IsChart reports whether the mode needs the category aggregator.
func (m ViewMode) IsChart() bool {
	switch m {
	case ModePie, ModeDoughnut, ModeBar, ModeStackedBar, ModeHorizontalBar:
		return true
	}
	return false
}

// ParseViewMode validates a mode string.
func ParseViewMode(s string) (ViewMode, error) {
	for _, m := range ViewModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownViewMode, s)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartRequest names the columns a chart is built from.
type ChartRequest struct {
	Column    string   `json:"column"`              // primary grouping header (labels)
	Aggregate string   `json:"aggregate"`           // measured header
	Secondary string   `json:"secondary,omitempty"` // optional inner grouping (series)
	Mode      ViewMode `json:"mode"`
}

// Complete reports whether both required columns are chosen.
func (r ChartRequest) Complete() bool {
	return r.Column != "" && r.Aggregate != ""
}

// ChartData is chart-ready label/series data. Colors are a rendering concern.
type ChartData struct {
	Mode   ViewMode `json:"mode"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Series is one measured sequence aligned to ChartData.Labels.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData is the tabular projection of the filtered rows.
type TableData struct {
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Sources []string   `json:"sources"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Summary provides row totals for a table.
type Summary struct {
	Label string `json:"label"`
	Rows  int    `json:"rows"`
	Total int    `json:"total"`
}

// ============================================================================
// RESULT — render-ready output
// ============================================================================

// Result is what the executor hands back to the host.
type Result struct {
	Type  string   `json:"type"` // "table", "chart", "placeholder"
	Mode  ViewMode `json:"mode"`
	Reply string   `json:"reply,omitempty"`

	// Exactly one of these is populated for "table" / "chart".
	Chart *ChartData `json:"chart,omitempty"`
	Table *TableData `json:"table,omitempty"`

	Matched int `json:"matched"` // rows after filtering
	Total   int `json:"total"`   // rows before filtering
}
