// Package config loads sheetdash settings from defaults, sheetdash.yaml,
// SHEETDASH_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/spektr-org/sheetdash/engine"
)

// Defaults.
const (
	DefaultFile        = "sheetdash.yaml"
	DefaultMaxFiles    = 10
	DefaultOutput      = "table"
	DefaultLogLevel    = "info"
	DefaultAddr        = ":8080"
	DefaultMaxUploadMB = 32
	EnvPrefix          = "SHEETDASH_"
)

// Output formats.
var OutputFormats = []string{"table", "json", "yaml", "csv"}

// Config holds every sheetdash setting.
type Config struct {
	MaxFiles    int    `koanf:"max_files"`
	Measure     string `koanf:"measure"`
	Match       string `koanf:"match"`
	GroupOrder  string `koanf:"group_order"`
	Output      string `koanf:"output"`
	LogLevel    string `koanf:"log_level"`
	Addr        string `koanf:"addr"`
	MaxUploadMB int    `koanf:"max_upload_mb"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

// Load reads configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
//
// cfgFile may be empty, in which case sheetdash.yaml in the working directory
// is used when present. Only flags the user actually set are applied.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"max_files":     DefaultMaxFiles,
		"measure":       string(engine.MeasureCount),
		"match":         string(engine.MatchExact),
		"group_order":   string(engine.OrderFirstSeen),
		"output":        DefaultOutput,
		"log_level":     DefaultLogLevel,
		"addr":          DefaultAddr,
		"max_upload_mb": DefaultMaxUploadMB,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: SHEETDASH_MAX_FILES -> max_files
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used
	return &cfg, nil
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	if c.MaxFiles < 1 {
		return fmt.Errorf("max_files must be at least 1, got %d", c.MaxFiles)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be at least 1, got %d", c.MaxUploadMB)
	}
	if _, err := c.EngineOptions(); err != nil {
		return err
	}
	if !isOutputFormat(c.Output) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.Output, strings.Join(OutputFormats, ", "))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// EngineOptions translates measure, match and group_order.
func (c *Config) EngineOptions() ([]engine.Option, error) {
	measure, err := engine.ParseMeasure(c.Measure)
	if err != nil {
		return nil, err
	}
	match, err := engine.ParseMatchMode(c.Match)
	if err != nil {
		return nil, err
	}
	order, err := engine.ParseGroupOrder(c.GroupOrder)
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithMeasure(measure),
		engine.WithMatchMode(match),
		engine.WithGroupOrder(order),
	}, nil
}

// Level returns the zerolog level, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func isOutputFormat(s string) bool {
	for _, f := range OutputFormats {
		if s == f {
			return true
		}
	}
	return false
}
