package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/config"
	"github.com/kamusis/skillcat/internal/translate"
)

var flagVerifyCatalog string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the catalog file and the skillcat environment",
	Long: `Check the catalog file's invariants: totalSkills, per-category counts, the
Latest category's placement and count, unknown categories and duplicate ids.
Every problem is reported, not just the first one.

Run this after 'skillcat parse', 'skillcat add' or 'skillcat translate', or
before publishing a catalog.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&flagVerifyCatalog, "catalog", "", "Catalog file to check (defaults to catalog.file)")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("skillcat verify")
	fmt.Println()

	// ── Check 1: skillcat.yaml ────────────────────────────────────────────────
	fmt.Println("[ skillcat.yaml ]")
	cfgPath, _ := config.ConfigPath()
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printSkip("", "no config file, using defaults (run 'skillcat init' to write one)")
	}
	cfg, err := loadConfig()
	if err != nil {
		failD("%v", err)
		return fmt.Errorf("verify found issues")
	}
	printOK("", fmt.Sprintf("source: %s", cfg.Catalog.Source))
	fmt.Println()

	// ── Check 2: catalog file parses ──────────────────────────────────────────
	path := catalogPath(cfg, flagVerifyCatalog)
	fmt.Printf("[ %s ]\n", path)
	c, err := catalog.ReadFile(path)
	if err != nil {
		failD("%v", err)
	} else {
		printOK("", fmt.Sprintf("version %s, %d skills, %d categories, updated %s",
			c.Version, len(c.Skills), len(c.Categories), c.LastUpdated))
		if c.Version != catalog.SchemaVersion {
			printWarn("", fmt.Sprintf("version %q will not be trusted by the cache (want %s)", c.Version, catalog.SchemaVersion))
		}
	}
	fmt.Println()

	// ── Check 3: catalog invariants ───────────────────────────────────────────
	fmt.Println("[ Invariants ]")
	if c != nil {
		if err := catalog.Validate(c); err != nil {
			var merr *multierror.Error
			if errors.As(err, &merr) {
				for _, e := range merr.Errors {
					failD("%v", e)
				}
			} else {
				failD("%v", err)
			}
		} else {
			printOK("", "counts, categories and ids are consistent")
		}
	} else {
		printWarn("", "skipped (catalog not loaded)")
	}
	fmt.Println()

	// ── Check 4: translation coverage (informational) ─────────────────────────
	fmt.Println("[ Translations ]")
	if c != nil {
		pending := 0
		for _, s := range c.Skills {
			if translate.NeedsTranslation(s) {
				pending++
			}
		}
		if pending == 0 {
			printOK("", "every description is localized")
		} else {
			printInfo("", fmt.Sprintf("%d skill(s) still need translation (run 'skillcat translate')", pending))
		}
	} else {
		printWarn("", "skipped (catalog not loaded)")
	}
	fmt.Println()

	// ── Summary ───────────────────────────────────────────────────────────────
	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed. The catalog is ready to publish.")
		return nil
	}
	fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
	return fmt.Errorf("verify found issues")
}
