package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvFile(name, body string) File {
	return File{Name: name, Data: []byte(body)}
}

func TestLoadBatch_OrderErrorsAndWarnings(t *testing.T) {
	var logs bytes.Buffer
	files := []File{
		csvFile("a.csv", "x,y\n1,2\n"),
		csvFile("broken.txt", "whatever"),
		csvFile("empty.csv", "x,y\n"),
		{Name: "q.xlsx", Data: workbook(t, [][]any{{"y", "z"}, {"b", "c"}})},
		csvFile("a.csv", "x\n3\n"),
	}

	datasets, report, err := LoadBatch(context.Background(), files, WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)

	require.Len(t, datasets, 3)
	assert.Equal(t, "a.csv", datasets[0].SourceID)
	assert.Equal(t, "q.xlsx", datasets[1].SourceID)
	assert.Equal(t, "a.csv#2", datasets[2].SourceID)
	assert.Equal(t, Checksum(files[0].Data), datasets[0].Checksum)
	assert.NotEqual(t, datasets[0].Checksum, datasets[2].Checksum)
	assert.Len(t, datasets[0].Checksum, 16)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "broken.txt", report.Errors[0].File)
	assert.True(t, errors.Is(report.Errors[0], ErrUnsupportedFormat))
	assert.Equal(t, []EmptyDatasetWarning{{File: "empty.csv"}}, report.Warnings)
	assert.Equal(t, 0, report.Truncated)
	assert.Len(t, report.Loaded, 3)

	assert.Contains(t, logs.String(), "decode failed")
	assert.Contains(t, logs.String(), "no usable rows")
}

func TestLoadBatch_CapsFiles(t *testing.T) {
	var files []File
	for i := 0; i < 12; i++ {
		files = append(files, csvFile(fmt.Sprintf("f%02d.csv", i), "n\n1\n"))
	}

	datasets, report, err := LoadBatch(context.Background(), files, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	assert.Len(t, datasets, DefaultMaxFiles)
	assert.Equal(t, 2, report.Truncated)
	assert.Equal(t, "f09.csv", datasets[9].SourceID)

	datasets, report, err = LoadBatch(context.Background(), files, WithMaxFiles(3), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	assert.Len(t, datasets, 3)
	assert.Equal(t, 9, report.Truncated)
}

func TestLoadBatch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := LoadBatch(ctx, []File{csvFile("a.csv", "x\n1\n")}, WithLogger(zerolog.Nop()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoadBatch_CustomRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(".TSV", CSV{Comma: '\t'})
	assert.Equal(t, []string{".tsv"}, reg.Extensions())

	datasets, report, err := LoadBatch(context.Background(),
		[]File{csvFile("a.tsv", "k\tv\n1\t2\n"), csvFile("b.csv", "k\n1\n")},
		WithRegistry(reg), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, "2", datasets[0].Rows[0].Get("v").String())
	assert.Len(t, report.Errors, 1)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0o600))

	files, err := ReadFiles([]string{path})
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", files[0].Name)

	_, err = ReadFiles([]string{filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)
}
