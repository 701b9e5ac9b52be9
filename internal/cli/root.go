// Package cli provides the command-line interface for sheetdash.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/spektr-org/sheetdash/decoder"
	"github.com/spektr-org/sheetdash/engine"
	"github.com/spektr-org/sheetdash/internal/config"
	"github.com/spektr-org/sheetdash/schema"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// app is shared by every command of one invocation.
type app struct {
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	engineOpts []engine.Option
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "sheetdash",
		Short: "sheetdash - spreadsheet filter and chart data",
		Long: `sheetdash loads up to ten spreadsheets (.xlsx, .xlsm, .csv), unifies
their columns, filters rows per column and aggregates them into
category/series data for table, pie, doughnut, bar, stacked-bar and
horizontal-bar views.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.configure(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./sheetdash.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", config.DefaultOutput, "Output format (table|json|yaml|csv)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Int("max-files", config.DefaultMaxFiles, "Maximum files per batch")
	rootCmd.PersistentFlags().String("measure", string(engine.MeasureCount), "Chart measure (count|count_distinct)")
	rootCmd.PersistentFlags().String("match", string(engine.MatchExact), "Filter match (exact|contains)")
	rootCmd.PersistentFlags().String("group-order", string(engine.OrderFirstSeen), "Group order (first_seen|alpha)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCommand(Version))
	rootCmd.AddCommand(newSchemaCommand(a))
	rootCmd.AddCommand(newRowsCommand(a))
	rootCmd.AddCommand(newChartCommand(a))
	rootCmd.AddCommand(newServeCommand(a))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// configure loads configuration and sets up logging on stderr.
func (a *app) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.engineOpts = opts
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	if cfg.FileUsed != "" {
		a.logger.Debug().Str("config", cfg.FileUsed).Msg("using config file")
	}
	return nil
}

// load decodes paths as one batch and ingests it.
func (a *app) load(ctx context.Context, paths []string) (*schema.State, *decoder.Report, error) {
	files, err := decoder.ReadFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	datasets, report, err := decoder.LoadBatch(ctx, files,
		decoder.WithLogger(a.logger),
		decoder.WithMaxFiles(a.cfg.MaxFiles),
	)
	if err != nil {
		return nil, nil, err
	}
	return schema.Ingest(datasets), report, nil
}
