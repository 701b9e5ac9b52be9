package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spektr-org/sheetdash/decoder"
	"github.com/spektr-org/sheetdash/server"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [FILE...]",
		Short: "Serve the HTTP API",
		Long: `Start the HTTP API. Files given as arguments are ingested before the
server starts; more can be uploaded to POST /api/datasets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(
				server.WithLogger(a.logger),
				server.WithEngineOptions(a.engineOpts...),
				server.WithBatchOptions(decoder.WithMaxFiles(a.cfg.MaxFiles)),
				server.WithMaxUploadBytes(int64(a.cfg.MaxUploadMB)<<20),
			)
			if len(args) > 0 {
				st, _, err := a.load(cmd.Context(), args)
				if err != nil {
					return err
				}
				srv.Ingest(st.Datasets)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, srv.Handler())
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().Int("max-upload-mb", 0, "Upload size limit in MiB (default 32)")

	return cmd
}

// serve runs until ctx is done, then shuts down gracefully.
func (a *app) serve(ctx context.Context, handler http.Handler) error {
	httpSrv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", a.cfg.Addr).Msg("sheetdash started")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	a.logger.Info().Msg("stopped")
	return nil
}
