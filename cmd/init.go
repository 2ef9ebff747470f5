package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default skillcat config and dotenv template",
	Long: `Initialize ~/.skillcat/.

Writes skillcat.yaml with defaults if it does not exist yet, and a .env
template holding the translation API settings. Existing files are left alone
unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	flagInitForce  bool
	flagInitSource string
)

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing skillcat.yaml with defaults")
	initCmd.Flags().StringVar(&flagInitSource, "source", "", "Catalog source (URL or file) to record in the new config")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.skillcat directory ──────────────────────────────────────
	dir, err := config.SkillcatDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	// ── 2. Create ~/.skillcat/ if it doesn't exist ────────────────────────────
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("skillcat directory ready: %s", dir))

	// ── 3. Write skillcat.yaml if missing ─────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) || flagInitForce {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if flagInitSource != "" {
			cfg.Catalog.Source = flagInitSource
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 4. Validate what is on disk now ───────────────────────────────────────
	if _, err := config.Load(); err != nil {
		return err
	}

	// ── 5. Dotenv template for the translation key ────────────────────────────
	envPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Dotenv ready: %s", envPath))

	fmt.Println("\n✓  skillcat init complete. Run 'skillcat serve' or 'skillcat browse' to start.")
	return nil
}
