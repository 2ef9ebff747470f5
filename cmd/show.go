package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/categorize"
	"github.com/kamusis/skillcat/internal/query"
)

var flagShowSource string

var showCmd = &cobra.Command{
	Use:   "show <skill-id>",
	Short: "Show one skill's details and install command",
	Long: `Display a skill the way the detail modal does: author, category, both
descriptions, the install command and the GitHub link.

The argument is matched against skill ids first; if nothing matches exactly
and the query is unambiguous, the single search hit is shown.

Example:
  skillcat show github-pr-review`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&flagShowSource, "source", "", "Catalog URL or file (defaults to catalog.source)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	st, closeCache, err := openStore(ctx, cfg, flagShowSource)
	if err != nil {
		return err
	}
	defer closeCache()

	c, err := st.Load(ctx)
	if err != nil {
		return err
	}

	s, err := resolveSkill(c, args[0])
	if err != nil {
		return err
	}
	printSkill(c, s)
	return nil
}

// resolveSkill finds id exactly, then falls back to a unique search hit.
func resolveSkill(c *catalog.Catalog, id string) (catalog.Skill, error) {
	if s, ok := c.SkillByID(id); ok {
		return s, nil
	}
	hits := query.Search(c.Skills, id)
	switch len(hits) {
	case 0:
		return catalog.Skill{}, fmt.Errorf("skill %q not found", id)
	case 1:
		return hits[0], nil
	}
	names := make([]string, 0, 5)
	for i, h := range hits {
		if i == 5 {
			names = append(names, "...")
			break
		}
		names = append(names, h.ID)
	}
	return catalog.Skill{}, fmt.Errorf("skill %q is ambiguous, %d matches: %s", id, len(hits), strings.Join(names, ", "))
}

func printSkill(c *catalog.Catalog, s catalog.Skill) {
	meta := categorize.Meta(s.Category)
	if cat, ok := c.Category(s.Category); ok && cat.NameCn != "" {
		meta.NameCn = cat.NameCn
	}

	title := fmt.Sprintf("📦 Skill: %s", s.Name)
	if s.IsNew {
		title += "  ★ new"
	}
	fmt.Println(bold(title))
	fmt.Printf("Author:   @%s\n", s.Author)
	fmt.Printf("Category: %s (%s)\n", meta.NameCn, s.Category)

	fmt.Println("\n描述:")
	fmt.Printf("  %s\n", s.DisplayDescription())
	if s.DescriptionCn != "" && s.DescriptionCn != s.Description {
		fmt.Println("\nOriginal:")
		fmt.Printf("  %s\n", s.Description)
	}

	fmt.Println("\n安装命令:")
	fmt.Printf("  %s\n", s.InstallCommand)
	if s.GithubURL != "" {
		fmt.Printf("\nGitHub:   %s\n", s.GithubURL)
	}
}
