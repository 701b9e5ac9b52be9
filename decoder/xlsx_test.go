package decoder

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/sheetdash/engine"
)

// workbook builds an in-memory xlsx from rows of cell values; nil cells are
// left unset.
func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, cells := range rows {
		for c, v := range cells {
			if v == nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", axis, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestXLSX_Decode(t *testing.T) {
	data := workbook(t, [][]any{
		{"Region", "Units", "Active", nil, "Code"},
		{"North", 3, true, "note", "007"},
		{nil, nil, nil, nil, nil},
		{"South", 2.5, false},
		{"East"},
	})

	rows, err := XLSX{}.Decode(context.Background(), "q1.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 3, "blank row skipped")

	first := rows[0]
	assert.Equal(t, []string{"Region", "Units", "Active", "__EMPTY", "Code"}, first.Headers())
	assert.Equal(t, engine.KindNumber, first.Get("Units").Kind())
	assert.Equal(t, "3", first.Get("Units").String())
	assert.Equal(t, engine.KindBool, first.Get("Active").Kind())
	assert.Equal(t, "true", first.Get("Active").String())
	assert.Equal(t, engine.KindText, first.Get("Code").Kind(), "string cells stay text")
	assert.Equal(t, "007", first.Get("Code").String())

	assert.Equal(t, "2.5", rows[1].Get("Units").String())
	assert.Equal(t, "false", rows[1].Get("Active").String())
	assert.Equal(t, []string{"Region"}, rows[2].Headers())
}

func TestXLSX_NamedSheetAndErrors(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Data", "A1", "k"))
	require.NoError(t, f.SetCellValue("Data", "A2", "v"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := XLSX{Sheet: "Data"}.Decode(context.Background(), "x.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "v", rows[0].Get("k").String())

	rows, err = XLSX{}.Decode(context.Background(), "x.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, rows, "first sheet is empty")

	_, err = XLSX{}.Decode(context.Background(), "bad.xlsx", bytes.NewReader([]byte("not a zip")))
	assert.Error(t, err)
}
