package decoder

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spektr-org/sheetdash/engine"
)

// CSV decodes comma-separated text. Cells are trimmed; numeric text becomes
// a number and TRUE/FALSE a bool.
type CSV struct {
	// Comma overrides the field delimiter; zero means ','.
	Comma rune
}

// Decode implements Decoder.
func (d CSV) Decode(ctx context.Context, name string, r io.Reader) ([]engine.Row, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if d.Comma != 0 {
		reader.Comma = d.Comma
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// skip leading blank lines
	for len(records) > 0 && blankRow(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := headerNames(records[0], maxWidth(records))
	var rows []engine.Row
	for _, rec := range records[1:] {
		if blankRow(rec) {
			continue
		}
		var row engine.Row
		for i, cell := range rec {
			if v := textCell(cell); !v.IsEmpty() {
				row.Set(headers[i], v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// textCell types a CSV cell the way a spreadsheet would on import.
func textCell(s string) engine.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return engine.Empty
	}
	if f, ok := parseNumber(s); ok {
		return engine.Number(f)
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return engine.Bool(true)
	case "FALSE":
		return engine.Bool(false)
	}
	return engine.Text(s)
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	// ParseFloat also accepts hex floats and underscores; spreadsheets don't.
	if strings.ContainsAny(s, "xX_pP") {
		return 0, false
	}
	return f, true
}
