package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/config"
	"github.com/kamusis/skillcat/internal/importer"
	"github.com/kamusis/skillcat/internal/manifest"
)

var (
	flagAddSkillsDir   string
	flagAddCatalog     string
	flagAddAuthor      string
	flagAddURLTemplate string
	flagAddExcludes    []string
	flagAddDryRun      bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add local SKILL.md skills to the catalog",
	Long: `Scan a directory recursively for SKILL.md files and append every skill whose
name is not already in the catalog.

New skills are flagged as new (they show up under Latest), auto-categorized
from their name and description, and keep the English description as the
localized one until 'skillcat translate' runs.

Example:
  skillcat add --skills-dir ~/skills --catalog skills.json
  skillcat add --skills-dir . --url-template 'https://github.com/me/skills/tree/main/{path}'`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddSkillsDir, "skills-dir", ".", "Directory to scan for SKILL.md files")
	addCmd.Flags().StringVar(&flagAddCatalog, "catalog", "", "Catalog file to update (defaults to catalog.file)")
	addCmd.Flags().StringVar(&flagAddAuthor, "author", importer.DefaultAuthor, "Author credited for the new skills")
	addCmd.Flags().StringVar(&flagAddURLTemplate, "url-template", "", "GitHub URL template; {name}, {dir} and {path} are replaced")
	addCmd.Flags().StringSliceVar(&flagAddExcludes, "exclude", nil, "Glob of manifest paths or directory names to skip (repeatable)")
	addCmd.Flags().BoolVar(&flagAddDryRun, "dry-run", false, "Show what would be added without writing the catalog")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := catalogPath(cfg, flagAddCatalog)

	root, err := config.ExpandPath(flagAddSkillsDir)
	if err != nil {
		return err
	}

	c, err := catalog.ReadFile(path)
	if err != nil {
		return err
	}

	found, skipped, err := manifest.Discover(root)
	if err != nil {
		return err
	}

	urlTemplate := flagAddURLTemplate
	if urlTemplate == "" {
		urlTemplate = cfg.Import.URLTemplate
	}
	res := importer.Import(c, found, importer.Options{
		Author:      flagAddAuthor,
		URLTemplate: urlTemplate,
		Excludes:    append(append([]string{}, cfg.Import.Excludes...), flagAddExcludes...),
	})

	printSection("skillcat add")
	fmt.Printf("  Scanned %s: %d manifest(s)\n", root, len(found)+len(skipped))

	if len(res.Added) > 0 {
		printBullet(fmt.Sprintf("Added (%d):", len(res.Added)))
		for _, s := range res.Added {
			printOK(s.ID, s.Category)
		}
	}
	if len(res.Existing) > 0 {
		printBullet(fmt.Sprintf("Already in catalog (%d):", len(res.Existing)))
		for _, name := range res.Existing {
			printSkip(name, "exists")
		}
	}
	if len(res.Excluded) > 0 {
		printBullet(fmt.Sprintf("Excluded (%d):", len(res.Excluded)))
		for _, p := range res.Excluded {
			printMiss("", p)
		}
	}
	if len(skipped) > 0 {
		printBullet(fmt.Sprintf("Skipped (%d):", len(skipped)))
		for _, s := range skipped {
			printWarn(s.Path, s.Reason)
		}
	}
	fmt.Println()

	if len(res.Added) == 0 {
		printInfo("", "nothing to add")
		return nil
	}
	if flagAddDryRun {
		printInfo("", fmt.Sprintf("dry run: %s not written", path))
		return nil
	}
	if err := catalog.WriteFile(path, c); err != nil {
		return err
	}
	invalidateCache(context.Background(), cfg, path)
	printOK("", fmt.Sprintf("%d skill(s) added, catalog now has %d: %s", len(res.Added), c.TotalSkills, path))
	return nil
}
