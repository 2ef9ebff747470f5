package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/catalog/store"
	"github.com/kamusis/skillcat/internal/logger"
	"github.com/kamusis/skillcat/internal/web"
)

var (
	flagServeAddr   string
	flagServeSource string
	flagServeWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog in the browser",
	Long: `Start the web front end: search, category sidebar, pagination and the skill
detail modal, plus a JSON API under /api.

With --watch and a file source, rewriting the catalog file (for example by
'skillcat add' or 'skillcat translate') clears the in-memory snapshot so the
next request serves the new version.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (defaults to server.addr)")
	serveCmd.Flags().StringVar(&flagServeSource, "source", "", "Catalog URL or file (defaults to catalog.source)")
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", false, "Reload the catalog when its file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := flagServeAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeCache, err := openStore(ctx, cfg, flagServeSource)
	if err != nil {
		return err
	}
	defer closeCache()

	if flagServeWatch || cfg.Server.Watch {
		startWatch(ctx, st)
	}

	srv, err := web.NewServer(st, web.Options{
		Addr:     addr,
		PerPage:  cfg.Browse.PerPage,
		Debounce: cfg.Browse.Debounce(),
		Timeout:  cfg.Server.Timeout(),
	})
	if err != nil {
		return err
	}

	printInfo("", fmt.Sprintf("serving %s on http://%s", st.Source(), addr))
	return srv.Start(ctx)
}

// startWatch runs the file watcher in the background. Remote sources have
// nothing to watch.
func startWatch(ctx context.Context, st *store.Store) {
	if _, ok := store.NewFetcher(st.Source()).(store.FileFetcher); !ok {
		printSkip("", "--watch ignored: catalog source is not a file")
		return
	}
	go func() {
		if err := st.Watch(ctx, st.Source()); err != nil {
			logger.G(ctx).WithError(err).Warn("catalog watcher stopped")
		}
	}()
}
