package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/spektr-org/sheetdash/decoder"
	"github.com/spektr-org/sheetdash/engine"
	"github.com/spektr-org/sheetdash/schema"
)

type errorResponse struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	Revision string          `json:"revision"`
	Schema   *schema.Unified `json:"schema"`
	Report   *decoder.Report `json:"report"`
}

type filterRequest struct {
	Value string `json:"value"`
}

type visibilityRequest struct {
	Visible *bool `json:"visible"`
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload ingests the multipart "files" field as a new batch. The new
// revision replaces the old one entirely.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, `no files in form field "files"`)
		return
	}

	files := make([]decoder.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("read %s: %v", fh.Filename, err))
			return
		}
		files = append(files, decoder.File{Name: fh.Filename, Data: data})
	}

	opts := append([]decoder.Option{decoder.WithLogger(s.logger)}, s.batchOpts...)
	datasets, report, err := decoder.LoadBatch(r.Context(), files, opts...)
	if err != nil {
		s.logger.Error().Err(err).Msg("upload aborted")
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	filesIngestedTotal.WithLabelValues("loaded").Add(float64(len(report.Loaded)))
	filesIngestedTotal.WithLabelValues("error").Add(float64(len(report.Errors)))
	filesIngestedTotal.WithLabelValues("empty").Add(float64(len(report.Warnings)))
	filesIngestedTotal.WithLabelValues("truncated").Add(float64(report.Truncated))

	st := s.Ingest(datasets)
	s.logger.Info().
		Str("revision", st.Revision.String()).
		Int("datasets", len(st.Datasets)).
		Int("headers", len(st.Schema.Headers)).
		Msg("ingested")

	writeJSON(w, http.StatusOK, uploadResponse{
		Revision: st.Revision.String(),
		Schema:   st.Schema,
		Report:   report,
	})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.State())
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	header, ok := s.headerParam(w, r)
	if !ok {
		return
	}
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st := s.update(func(cur *schema.State) *schema.State { return cur.WithFilter(header, req.Value) })
	transitionsTotal.WithLabelValues("filter").Inc()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleClearFilters(w http.ResponseWriter, _ *http.Request) {
	st := s.update(func(cur *schema.State) *schema.State { return cur.ClearFilters() })
	transitionsTotal.WithLabelValues("clear").Inc()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	header, ok := s.headerParam(w, r)
	if !ok {
		return
	}
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Visible == nil {
		writeError(w, http.StatusBadRequest, `body must be {"visible": true|false}`)
		return
	}

	st := s.update(func(cur *schema.State) *schema.State { return cur.WithVisibility(header, *req.Visible) })
	transitionsTotal.WithLabelValues("visibility").Inc()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleToggleHidden(w http.ResponseWriter, r *http.Request) {
	header, ok := s.headerParam(w, r)
	if !ok {
		return
	}
	st := s.update(func(cur *schema.State) *schema.State { return cur.ToggleHidden(header) })
	transitionsTotal.WithLabelValues("hidden").Inc()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRows(w http.ResponseWriter, _ *http.Request) {
	s.execute(w, s.State(), engine.ModeTable, engine.ChartRequest{})
}

// handleChart reads column, aggregate, secondary and mode (default bar)
// from the query string.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := engine.ModeBar
	if m := q.Get("mode"); m != "" {
		parsed, err := engine.ParseViewMode(m)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = parsed
	}
	s.execute(w, s.State(), mode, engine.ChartRequest{
		Column:    q.Get("column"),
		Aggregate: q.Get("aggregate"),
		Secondary: q.Get("secondary"),
	})
}

func (s *Server) execute(w http.ResponseWriter, st *schema.State, mode engine.ViewMode, req engine.ChartRequest) {
	res, err := st.Execute(mode, req, s.engineOpts...)
	if errors.Is(err, engine.ErrUnknownViewMode) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	queriesTotal.WithLabelValues(string(mode)).Inc()
	writeJSON(w, http.StatusOK, res)
}

// headerParam resolves {header} against the current schema; unknown headers
// are answered with 404.
func (s *Server) headerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	header := chi.URLParam(r, "header")
	if r.URL.RawPath != "" {
		// routed on the escaped path
		unescaped, err := url.PathUnescape(header)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid header")
			return "", false
		}
		header = unescaped
	}
	if !s.State().Schema.HasHeader(header) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown header %q", header))
		return "", false
	}
	return header, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
