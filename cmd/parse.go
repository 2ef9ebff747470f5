package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/readme"
)

var (
	flagParseReadme string
	flagParseOut    string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Build a catalog from a curated skills README",
	Long: `Scrape a curated-list README into a fresh catalog file.

Each <summary><h3>Category</h3></summary> block starts a category and every
"[name](url) - description" bullet below it becomes a skill. Categories get
their Chinese label and icon from the built-in tables and are ordered by
skill count.

Example:
  skillcat parse --readme README.md --out skills.json`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&flagParseReadme, "readme", "README.md", "README to scrape")
	parseCmd.Flags().StringVar(&flagParseOut, "out", "", "Catalog file to write (defaults to catalog.file)")
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := catalogPath(cfg, flagParseOut)

	src, err := os.ReadFile(flagParseReadme)
	if err != nil {
		return fmt.Errorf("cannot read README: %w", err)
	}
	res, err := readme.Parse(src)
	if err != nil {
		return err
	}
	c := readme.BuildCatalog(res, time.Now())
	if len(c.Skills) == 0 {
		printWarn("", fmt.Sprintf("no skills found in %s", flagParseReadme))
	}

	if err := catalog.WriteFile(out, c); err != nil {
		return err
	}
	invalidateCache(context.Background(), cfg, out)

	printSection("skillcat parse")
	printOK("", fmt.Sprintf("%d skills in %d categories written to %s", c.TotalSkills, len(c.Categories), out))
	for _, cat := range c.Categories {
		printInfo(cat.Name, fmt.Sprintf("%s, %d", cat.NameCn, cat.Count))
	}
	return nil
}
