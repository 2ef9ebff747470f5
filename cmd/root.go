package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/catalog/store"
	"github.com/kamusis/skillcat/internal/config"
	"github.com/kamusis/skillcat/internal/kv"
	"github.com/kamusis/skillcat/internal/logger"
)

var (
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:          "skillcat",
	Short:        "skillcat — browse and maintain a catalog of AI agent skills",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `skillcat serves a searchable, categorized catalog of AI agent skills in the
browser or the terminal, and maintains the catalog file behind it: parse a
README into a catalog, add local SKILL.md manifests, translate descriptions
and verify the result.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.SetLevel(flagLogLevel); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
		}
		logger.SetFormat(flagLogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads ~/.skillcat/skillcat.yaml, falling back to defaults when
// skillcat init has not been run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'skillcat init' to write a fresh one.", err)
	}
	return cfg, nil
}

// openStore builds the catalog store for source, backed by the configured
// persistent cache. The returned close func releases the cache.
func openStore(ctx context.Context, cfg *config.Config, source string) (*store.Store, func(), error) {
	if source == "" {
		source = cfg.Catalog.Source
	}
	path, err := config.ExpandPath(cfg.Cache.Path)
	if err != nil {
		return nil, nil, err
	}
	cache, err := kv.Open(ctx, kv.Options{
		Backend:  cfg.Cache.Backend,
		Path:     path,
		MaxBytes: cfg.Cache.MaxBytes,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open cache: %w", err)
	}
	st := store.New(store.NewFetcher(source), cache, store.Options{Version: catalog.SchemaVersion})
	return st, func() { _ = cache.Close() }, nil
}

// invalidateCache drops the cached copy of the catalog file at path so the
// next browse session reads the rewritten file. Failures only warn.
func invalidateCache(ctx context.Context, cfg *config.Config, path string) {
	st, closeCache, err := openStore(ctx, cfg, path)
	if err != nil {
		printWarn("cache", err.Error())
		return
	}
	defer closeCache()
	if err := st.ClearCache(ctx); err != nil {
		printWarn("cache", err.Error())
	}
}

// catalogPath resolves the catalog file a pipeline command works on.
func catalogPath(cfg *config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Catalog.File
}
