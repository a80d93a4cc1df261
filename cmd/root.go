// Package cmd implements the assetdb command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vehement/assetdb/internal/catalog"
	"github.com/vehement/assetdb/internal/codec"
	"github.com/vehement/assetdb/internal/config"
	"github.com/vehement/assetdb/internal/infrastructure/sqlite"
	"github.com/vehement/assetdb/internal/log"
	"github.com/vehement/assetdb/internal/registry"
	"github.com/vehement/assetdb/internal/tracing"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "assetdb",
	Short:   "Asset registry and dependency tracker for game content",
	Long:    `assetdb imports JSON asset documents, validates them against versioned schemas, tracks cross-asset dependencies, and keeps a persisted index for fast lookups.`,
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .assetdb/config.yaml)")
	rootCmd.PersistentFlags().StringP("project", "p", "",
		"project root directory asset paths resolve against")

	_ = viper.BindPFlag("project_root", rootCmd.PersistentFlags().Lookup("project"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("project_root", defaults.ProjectRoot)
	viper.SetDefault("import.validate", defaults.Import.Validate)
	viper.SetDefault("import.migrate", defaults.Import.Migrate)
	viper.SetDefault("import.track_dependencies", defaults.Import.TrackDependencies)
	viper.SetDefault("watcher.enabled", defaults.Watcher.Enabled)
	viper.SetDefault("watcher.poll_interval", defaults.Watcher.PollInterval)
	viper.SetDefault("watcher.debounce", defaults.Watcher.Debounce)
	viper.SetDefault("search.case_sensitive", defaults.Search.CaseSensitive)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .assetdb/config.yaml (current directory)
		// 2. ~/.config/assetdb/config.yaml (user config)
		if _, err := os.Stat(".assetdb/config.yaml"); err == nil {
			viper.SetConfigFile(".assetdb/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "assetdb"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere; continue with defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// env bundles the wired-up services a command operates on.
type env struct {
	cfg      config.Config
	catalog  *catalog.Catalog
	codec    *codec.Codec
	db       *sqlite.DB
	registry *registry.Registry
	tracing  *tracing.Provider
	logClose func()
}

// openEnv builds the full service stack from configuration: catalog with
// builtin schemas, codec, persisted index, tracing, and the registry.
// Call close when done.
func openEnv(ctx context.Context) (*env, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logClose, err := log.Init(filepath.Join(cfg.DataDir(), "assetdb.log"))
	if err != nil {
		// Logging is best-effort; commands still work without the file.
		logClose = func() {}
	}

	cat, err := catalog.NewWithBuiltins()
	if err != nil {
		logClose()
		return nil, fmt.Errorf("loading schema catalog: %w", err)
	}

	cdc := codec.New(cat, codec.Options{
		ValidationEnabled: cfg.Import.Validate,
		CacheTTL:          cfg.Cache.TTL,
		SkipCache:         cfg.Cache.Disabled,
	})

	db, err := sqlite.NewDB(cfg.IndexPath())
	if err != nil {
		logClose()
		return nil, fmt.Errorf("opening asset index: %w", err)
	}

	tracingCfg := cfg.Tracing.ToProviderConfig()
	if tracingCfg.Exporter == "file" && tracingCfg.FilePath == "" {
		tracingCfg.FilePath = filepath.Join(cfg.DataDir(), "traces.jsonl")
	}
	provider, err := tracing.NewProvider(tracingCfg)
	if err != nil {
		_ = db.Close()
		logClose()
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	opts := []registry.Option{
		registry.WithIndexStore(db.References()),
		registry.WithDefaultImportSettings(registry.ImportSettings{
			ValidateOnImport:  cfg.Import.Validate,
			AutoMigrate:       cfg.Import.Migrate,
			TrackDependencies: cfg.Import.TrackDependencies,
		}),
	}
	if cfg.Search.CaseSensitive {
		opts = append(opts, registry.WithCaseSensitiveSearch())
	}
	if provider.Enabled() {
		opts = append(opts, registry.WithTracer(provider.Tracer()))
	}
	reg := registry.New(cat, cdc, opts...)

	if err := reg.LoadIndex(ctx); err != nil {
		log.Warn(log.CatIndex, "loading persisted index failed", "error", err)
	}

	return &env{
		cfg:      cfg,
		catalog:  cat,
		codec:    cdc,
		db:       db,
		registry: reg,
		tracing:  provider,
		logClose: logClose,
	}, nil
}

func (e *env) close(ctx context.Context) {
	if err := e.tracing.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatConfig, "tracing shutdown failed", err)
	}
	if err := e.db.Close(); err != nil {
		log.ErrorErr(log.CatIndex, "closing index failed", err)
	}
	e.logClose()
}

// resolvePath interprets a user-supplied path relative to the project root.
func (e *env) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.cfg.ProjectRoot, path)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
