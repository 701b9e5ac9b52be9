package decoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"

	"github.com/spektr-org/sheetdash/engine"
)

// ============================================================================
// BATCH — One ingestion: up to MaxFiles files, decoded in input order
// ============================================================================
// Files are decoded one after another so header discovery stays
// deterministic. A file that fails to decode or yields zero rows is reported
// and skipped; it never aborts the batch. Only context cancellation does.
// ============================================================================

// DefaultMaxFiles caps the files of one batch; the rest are ignored.
const DefaultMaxFiles = 10

// File is one uploaded file.
type File struct {
	Name string
	Data []byte
}

// ReadFiles loads paths from disk, keeping their base names.
func ReadFiles(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// Report summarises a batch.
type Report struct {
	Loaded    []Loaded              `json:"loaded"`
	Errors    []*DecodeError        `json:"errors"`
	Warnings  []EmptyDatasetWarning `json:"warnings"`
	Truncated int                   `json:"truncated"` // files beyond the cap
}

// Loaded describes one dataset that made it into the batch.
type Loaded struct {
	SourceID string `json:"sourceId"`
	Checksum string `json:"checksum"`
	Rows     int    `json:"rows"`
}

// Option configures LoadBatch.
type Option func(*batchConfig)

type batchConfig struct {
	logger   zerolog.Logger
	maxFiles int
	registry *Registry
}

// WithLogger sets the logger; the global zerolog logger is the default.
func WithLogger(l zerolog.Logger) Option {
	return func(c *batchConfig) { c.logger = l }
}

// WithMaxFiles overrides DefaultMaxFiles. Values below 1 are ignored.
func WithMaxFiles(n int) Option {
	return func(c *batchConfig) {
		if n > 0 {
			c.maxFiles = n
		}
	}
}

// WithRegistry replaces DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(c *batchConfig) { c.registry = r }
}

// LoadBatch decodes files into datasets in input order.
func LoadBatch(ctx context.Context, files []File, opts ...Option) ([]engine.Dataset, *Report, error) {
	cfg := batchConfig{
		logger:   log.Logger,
		maxFiles: DefaultMaxFiles,
		registry: DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	report := &Report{
		Loaded:   []Loaded{},
		Errors:   []*DecodeError{},
		Warnings: []EmptyDatasetWarning{},
	}
	if len(files) > cfg.maxFiles {
		report.Truncated = len(files) - cfg.maxFiles
		cfg.logger.Warn().
			Int("max_files", cfg.maxFiles).
			Int("ignored", report.Truncated).
			Msg("batch truncated")
		files = files[:cfg.maxFiles]
	}

	var datasets []engine.Dataset
	names := make(map[string]int, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("load batch: %w", err)
		}

		rows, err := decodeFile(ctx, cfg.registry, file)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, fmt.Errorf("load batch: %w", ctx.Err())
			}
			derr := &DecodeError{File: file.Name, Err: err}
			report.Errors = append(report.Errors, derr)
			cfg.logger.Warn().Err(err).Str("file", file.Name).Msg("decode failed")
			continue
		}
		if len(rows) == 0 {
			report.Warnings = append(report.Warnings, EmptyDatasetWarning{File: file.Name})
			cfg.logger.Warn().Str("file", file.Name).Msg("no usable rows, file dropped")
			continue
		}

		ds := engine.Dataset{
			SourceID: sourceID(names, file.Name),
			Checksum: Checksum(file.Data),
			Rows:     rows,
		}
		datasets = append(datasets, ds)
		report.Loaded = append(report.Loaded, Loaded{SourceID: ds.SourceID, Checksum: ds.Checksum, Rows: len(rows)})
		cfg.logger.Debug().
			Str("source", ds.SourceID).
			Str("checksum", ds.Checksum).
			Int("rows", len(rows)).
			Msg("dataset decoded")
	}

	cfg.logger.Info().
		Int("datasets", len(datasets)).
		Int("errors", len(report.Errors)).
		Int("warnings", len(report.Warnings)).
		Msg("batch loaded")
	return datasets, report, nil
}

func decodeFile(ctx context.Context, reg *Registry, file File) ([]engine.Row, error) {
	dec, err := reg.Lookup(file.Name)
	if err != nil {
		return nil, err
	}
	return dec.Decode(ctx, file.Name, bytes.NewReader(file.Data))
}

// sourceID names a dataset after its file; repeats get "#2", "#3", ...
func sourceID(seen map[string]int, name string) string {
	base := filepath.Base(name)
	seen[base]++
	if n := seen[base]; n > 1 {
		return fmt.Sprintf("%s#%d", base, n)
	}
	return base
}

// Checksum returns the hex xxh3 hash of data.
func Checksum(data []byte) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxh3.Hash(data))
	return hex.EncodeToString(b[:])
}
