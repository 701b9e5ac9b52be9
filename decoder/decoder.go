// Package decoder turns uploaded spreadsheet files into ordered rows.
package decoder

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spektr-org/sheetdash/engine"
)

// ============================================================================
// DECODER — File bytes → []engine.Row
// ============================================================================
// Every decoder follows the same sheet conventions:
//   - the first non-blank row holds the headers
//   - a blank header becomes "__EMPTY", then "__EMPTY_1", "__EMPTY_2", ...
//   - a repeated header becomes "Name_1", "Name_2", ..., skipping names
//     already taken by another column
//   - empty cells are omitted from the row, blank rows are skipped
//   - numeric cells become numbers, boolean cells become bools
// ============================================================================

// Decoder reads one file into rows in sheet order.
type Decoder interface {
	Decode(ctx context.Context, name string, r io.Reader) ([]engine.Row, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, name string, r io.Reader) ([]engine.Row, error)

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, name string, r io.Reader) ([]engine.Row, error) {
	return f(ctx, name, r)
}

// Registry maps lower-case file extensions (with dot) to decoders.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// DefaultRegistry knows .xlsx, .xlsm and .csv.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".xlsx", XLSX{})
	r.Register(".xlsm", XLSX{})
	r.Register(".csv", CSV{})
	return r
}

// Register binds ext to d, replacing any previous decoder.
func (r *Registry) Register(ext string, d Decoder) {
	r.decoders[strings.ToLower(ext)] = d
}

// Lookup returns the decoder for name's extension.
func (r *Registry) Lookup(name string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(name))
	d, ok := r.decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return d, nil
}

// Extensions lists the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// headerNames applies the header naming rules to one header row padded to
// width columns.
func headerNames(raw []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]struct{}, width)
	next := make(map[string]int, width) // next suffix to try per base name
	for i := range names {
		h := ""
		if i < len(raw) {
			h = strings.TrimSpace(raw[i])
		}
		if h == "" {
			h = "__EMPTY"
		}
		name := h
		for {
			if _, taken := used[name]; !taken {
				break
			}
			next[h]++
			name = fmt.Sprintf("%s_%d", h, next[h])
		}
		used[name] = struct{}{}
		names[i] = name
	}
	return names
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func maxWidth(rows [][]string) int {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}
