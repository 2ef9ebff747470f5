package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the persistent catalog cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cache backend and whether it holds a catalog",
	Args:  cobra.NoArgs,
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached catalog so the next load fetches it again",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	printSection("skillcat cache")
	printInfo("", fmt.Sprintf("backend: %s", cfg.Cache.Backend))
	if cfg.Cache.Path != "" {
		printInfo("", fmt.Sprintf("path:    %s", cfg.Cache.Path))
	}

	st, closeCache, err := openStore(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer closeCache()

	c, ok := st.Cached(ctx)
	if !ok {
		printMiss("", "no cached catalog")
		return nil
	}
	printOK("", fmt.Sprintf("cached catalog v%s, %d skills, updated %s", c.Version, c.TotalSkills, c.LastUpdated))
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	st, closeCache, err := openStore(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer closeCache()

	if err := st.ClearCache(ctx); err != nil {
		return err
	}
	printOK("", "catalog cache cleared")
	return nil
}
