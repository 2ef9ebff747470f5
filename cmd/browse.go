package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/config"
	"github.com/kamusis/skillcat/internal/logger"
	"github.com/kamusis/skillcat/internal/tui"
)

var (
	flagBrowseSource string
	flagBrowseFresh  bool
)

var browseCmd = &cobra.Command{
	Use:   "browse [query-string]",
	Short: "Browse the catalog in the terminal",
	Long: `Open the interactive terminal browser.

The optional argument seeds the filters the way the web page's URL does, e.g.
'q=git&category=Gaming&page=2'. Without it the last session's filters are
restored from ~/.skillcat/state unless --fresh is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&flagBrowseSource, "source", "", "Catalog URL or file (defaults to catalog.source)")
	browseCmd.Flags().BoolVar(&flagBrowseFresh, "fresh", false, "Start from the default filters")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	st, closeCache, err := openStore(ctx, cfg, flagBrowseSource)
	if err != nil {
		return err
	}
	defer closeCache()

	statePath, err := config.StatePath()
	if err != nil {
		logger.G(ctx).WithError(err).Warn("browse state will not be saved")
		statePath = ""
	}

	initial := ""
	if len(args) == 1 {
		initial = strings.TrimPrefix(args[0], "?")
	} else if flagBrowseFresh {
		initial = "page=1"
	}

	return tui.Run(ctx, tui.Options{
		Loader:       st,
		PerPage:      cfg.Browse.PerPage,
		Debounce:     cfg.Browse.Debounce(),
		InitialQuery: initial,
		StatePath:    statePath,
	})
}
