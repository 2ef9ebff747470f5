package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/translate"
)

var (
	flagTranslateCatalog   string
	flagTranslateNewOnly   bool
	flagTranslateBatchSize int
	flagTranslateProgress  string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate skill descriptions into Chinese with an LLM",
	Long: `Translate every skill whose localized description is missing or still
English, in batches, through an OpenAI-compatible chat API (Moonshot by
default).

The API key is read from SKILLCAT_TRANSLATE_API_KEY, Kimi_API_Key, or the
same keys in ~/.skillcat/.env. Progress is saved after every batch, so an
interrupted run resumes where it stopped; the progress file is removed once
the catalog is written.

Example:
  skillcat translate --catalog skills.json
  skillcat translate --new-only`,
	Args: cobra.NoArgs,
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&flagTranslateCatalog, "catalog", "", "Catalog file to update (defaults to catalog.file)")
	translateCmd.Flags().BoolVar(&flagTranslateNewOnly, "new-only", false, "Only translate new skills still carrying their English description")
	translateCmd.Flags().IntVar(&flagTranslateBatchSize, "batch-size", 0, "Descriptions per request (defaults to translate.batch_size)")
	translateCmd.Flags().StringVar(&flagTranslateProgress, "progress", "", "Progress file (defaults to translate.progress_file)")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := catalogPath(cfg, flagTranslateCatalog)

	c, err := catalog.ReadFile(path)
	if err != nil {
		return err
	}

	trCfg, err := translate.LoadConfig(cfg.Translate)
	if err != nil {
		return err
	}
	tr, err := translate.NewFromConfig(trCfg)
	if err != nil {
		return err
	}

	tc := cfg.Translate
	batchSize := tc.BatchSize
	if flagTranslateBatchSize > 0 {
		batchSize = flagTranslateBatchSize
	}
	progressPath := tc.ProgressFile
	if flagTranslateProgress != "" {
		progressPath = flagTranslateProgress
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printSection("skillcat translate")
	printInfo("", fmt.Sprintf("model %s, catalog %s", tr.ModelID(), path))

	report, err := translate.Run(ctx, c, tr, translate.Options{
		BatchSize:    batchSize,
		SubBatchSize: tc.SubBatchSize,
		Pause:        time.Duration(tc.PauseMS) * time.Millisecond,
		ProgressPath: progressPath,
		NewOnly:      flagTranslateNewOnly,
	})
	if err != nil {
		if report != nil && report.Translated > 0 {
			printWarn("", fmt.Sprintf("interrupted after %d translation(s); progress kept in %s, rerun to resume", report.Translated, progressPath))
		}
		return err
	}

	if report.Selected == 0 && report.Applied == 0 {
		printOK("", "nothing to translate")
		return nil
	}

	if err := catalog.WriteFile(path, c); err != nil {
		return err
	}
	invalidateCache(ctx, cfg, path)
	if err := translate.RemoveProgress(progressPath); err != nil {
		printWarn("", err.Error())
	}

	printOK("", fmt.Sprintf("%d of %d selected skill(s) translated, %d applied", report.Translated, report.Selected, report.Applied))
	if report.Failed > 0 {
		printErr("", fmt.Sprintf("%d skill(s) failed; rerun to retry them", report.Failed))
	}
	printOK("", fmt.Sprintf("catalog written: %s", path))
	return nil
}
