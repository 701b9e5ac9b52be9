// Package server exposes the current ingestion over HTTP.
package server

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spektr-org/sheetdash/decoder"
	"github.com/spektr-org/sheetdash/engine"
	"github.com/spektr-org/sheetdash/schema"
)

// Server owns the current *schema.State. Requests read one revision;
// transitions swap in a new one with compare-and-swap, uploads replace it.
type Server struct {
	state atomic.Pointer[schema.State]

	logger     zerolog.Logger
	engineOpts []engine.Option
	batchOpts  []decoder.Option
	maxUpload  int64
	timeout    time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and ingestion logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithEngineOptions sets the options every filter and chart runs with.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Server) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithBatchOptions sets the options uploads are decoded with.
func WithBatchOptions(opts ...decoder.Option) Option {
	return func(s *Server) { s.batchOpts = append(s.batchOpts, opts...) }
}

// WithMaxUploadBytes caps the multipart body of an upload.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New returns a server holding an empty ingestion.
func New(opts ...Option) *Server {
	s := &Server{
		logger:    log.Logger,
		maxUpload: 32 << 20,
		timeout:   60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(schema.Ingest(nil))
	return s
}

// State returns the current revision.
func (s *Server) State() *schema.State { return s.state.Load() }

// Ingest replaces the current revision with a fresh one built from datasets.
func (s *Server) Ingest(datasets []engine.Dataset) *schema.State {
	next := schema.Ingest(datasets)
	s.state.Store(next)
	loadedRows.Set(float64(next.Rows().Len()))
	return next
}

// update applies fn to the current revision until it wins the swap.
func (s *Server) update(fn func(*schema.State) *schema.State) *schema.State {
	for {
		cur := s.state.Load()
		next := fn(cur)
		if next == cur || s.state.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.zerologMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/datasets", s.handleUpload)
		r.Get("/state", s.handleState)

		r.Delete("/filters", s.handleClearFilters)
		r.Put("/filters/{header}", s.handleSetFilter)
		r.Put("/visibility/{header}", s.handleSetVisibility)
		r.Post("/hidden/{header}/toggle", s.handleToggleHidden)

		r.Get("/rows", s.handleRows)
		r.Get("/chart", s.handleChart)
	})

	return r
}
