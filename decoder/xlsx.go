package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/sheetdash/engine"
)

// XLSX decodes Office Open XML workbooks (.xlsx, .xlsm). Only one sheet is
// read: Sheet, or the first sheet when empty.
type XLSX struct {
	Sheet string
}

// Decode implements Decoder.
func (d XLSX) Decode(ctx context.Context, name string, r io.Reader) ([]engine.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := d.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	start := 0
	for start < len(raw) && blankRow(raw[start]) {
		start++
	}
	if start == len(raw) {
		return nil, nil
	}

	headers := headerNames(raw[start], maxWidth(raw[start:]))
	var rows []engine.Row
	for ri := start + 1; ri < len(raw); ri++ {
		if ri%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if blankRow(raw[ri]) {
			continue
		}

		var row engine.Row
		for ci, cell := range raw[ri] {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", axis, err)
			}
			row.Set(headers[ci], cellValue(cell, typ))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellValue types a raw cell value by its stored cell type.
func cellValue(raw string, typ excelize.CellType) engine.Value {
	switch typ {
	case excelize.CellTypeBool:
		return engine.Bool(raw == "1" || strings.EqualFold(raw, "TRUE"))
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		if f, ok := parseNumber(raw); ok {
			return engine.Number(f)
		}
	}
	return engine.Text(raw)
}
