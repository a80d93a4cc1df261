// Package config provides configuration types and defaults for assetdb.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vehement/assetdb/internal/log"
	"github.com/vehement/assetdb/internal/tracing"
)

// Config holds all configuration options for assetdb.
type Config struct {
	// ProjectRoot is the directory asset paths resolve against.
	// Default: current directory.
	ProjectRoot string `mapstructure:"project_root"`

	Import  ImportConfig  `mapstructure:"import"`
	Watcher WatcherConfig `mapstructure:"watcher"`
	Search  SearchConfig  `mapstructure:"search"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// ImportConfig holds default behavior for asset imports.
type ImportConfig struct {
	// Validate runs schema validation on every imported document.
	Validate bool `mapstructure:"validate"`

	// Migrate upgrades documents to the latest schema version on import.
	Migrate bool `mapstructure:"migrate"`

	// TrackDependencies extracts references and records graph edges on import.
	TrackDependencies bool `mapstructure:"track_dependencies"`
}

// WatcherConfig holds hot-reload watcher configuration.
type WatcherConfig struct {
	// Enabled controls whether imported assets are watched for changes.
	Enabled bool `mapstructure:"enabled"`

	// PollInterval is how often watched file timestamps are rescanned.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// Debounce is how long a change must sit quiet before reload.
	Debounce time.Duration `mapstructure:"debounce"`
}

// SearchConfig holds query behavior configuration.
type SearchConfig struct {
	// CaseSensitive makes name search match case exactly.
	// Default: false.
	CaseSensitive bool `mapstructure:"case_sensitive"`
}

// CacheConfig holds parsed-document cache configuration.
type CacheConfig struct {
	// Disabled bypasses the cache entirely; every load parses from disk.
	Disabled bool `mapstructure:"disabled"`

	// TTL is how long parsed documents stay cached. Zero uses the
	// cache's default expiration.
	TTL time.Duration `mapstructure:"ttl"`
}

// TracingConfig holds trace export configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active. Default: false.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp". Default: "file".
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	// Default: <project_root>/.assetdb/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0). Default: 1.0.
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ToProviderConfig converts the user-facing tracing section into the
// tracing package's config.
func (t TracingConfig) ToProviderConfig() tracing.Config {
	cfg := tracing.DefaultConfig()
	cfg.Enabled = t.Enabled
	if t.Exporter != "" {
		cfg.Exporter = t.Exporter
	}
	if t.FilePath != "" {
		cfg.FilePath = t.FilePath
	}
	if t.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = t.OTLPEndpoint
	}
	cfg.SampleRate = t.SampleRate
	return cfg
}

// DataDir returns the project-local state directory.
func (c Config) DataDir() string {
	root := c.ProjectRoot
	if root == "" {
		root = "."
	}
	return filepath.Join(root, ".assetdb")
}

// IndexPath returns the path of the persisted asset index database.
func (c Config) IndexPath() string {
	return filepath.Join(c.DataDir(), "index.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		ProjectRoot: ".",
		Import: ImportConfig{
			Validate:          true,
			Migrate:           true,
			TrackDependencies: true,
		},
		Watcher: WatcherConfig{
			Enabled:      true,
			PollInterval: 2 * time.Second,
			Debounce:     500 * time.Millisecond,
		},
		Search: SearchConfig{
			CaseSensitive: false,
		},
		Cache: CacheConfig{
			Disabled: false,
			TTL:      0,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from the data dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func Validate(cfg Config) error {
	if err := ValidateWatcher(cfg.Watcher); err != nil {
		return err
	}
	if err := ValidateCache(cfg.Cache); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	return nil
}

// ValidateWatcher checks watcher configuration for errors.
func ValidateWatcher(w WatcherConfig) error {
	if w.PollInterval < 0 {
		return fmt.Errorf("watcher.poll_interval must not be negative, got %v", w.PollInterval)
	}
	if w.Debounce < 0 {
		return fmt.Errorf("watcher.debounce must not be negative, got %v", w.Debounce)
	}
	return nil
}

// ValidateCache checks cache configuration for errors.
func ValidateCache(c CacheConfig) error {
	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %v", c.TTL)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" {
		switch t.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}

	if t.Enabled {
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# assetdb Configuration

# Directory asset paths resolve against (default: current directory)
# project_root: /path/to/project

# Default behavior for asset imports
import:
  validate: true            # Validate documents against their schema
  migrate: true             # Upgrade documents to the latest schema version
  track_dependencies: true  # Extract references and record graph edges

# Hot-reload watcher
watcher:
  enabled: true
  poll_interval: 2s   # How often watched file timestamps are rescanned
  debounce: 500ms     # How long a change must sit quiet before reload

# Query behavior
search:
  case_sensitive: false  # Match name search case exactly

# Parsed-document cache
cache:
  disabled: false
  # ttl: 10m  # How long parsed documents stay cached

# Trace export configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: .assetdb/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
#
# Example: send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
