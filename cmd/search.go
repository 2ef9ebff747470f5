package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/query"
	"github.com/kamusis/skillcat/internal/richtext"
)

var (
	flagSearchCategory string
	flagSearchK        int
	flagSearchSort     string
	flagSearchOrder    string
	flagSearchJSON     bool
	flagSearchSource   string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog by name, author or description",
	Long: `Filter the catalog the same way the browser does: the category first, then a
case-insensitive substring match on name, author and both descriptions.

Example:
  skillcat search git
  skillcat search --category Gaming
  skillcat search pdf --sort author --order desc --json`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&flagSearchCategory, "category", catalog.AllCategories, "Restrict results to one category (or Latest)")
	searchCmd.Flags().IntVar(&flagSearchK, "k", 20, "Number of results to show (0 for all)")
	searchCmd.Flags().StringVar(&flagSearchSort, "sort", "", "Sort by name, author or category (default catalog order)")
	searchCmd.Flags().StringVar(&flagSearchOrder, "order", string(query.Asc), "Sort order: asc or desc")
	searchCmd.Flags().BoolVar(&flagSearchJSON, "json", false, "Print matching skills as JSON")
	searchCmd.Flags().StringVar(&flagSearchSource, "source", "", "Catalog URL or file (defaults to catalog.source)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q := strings.Join(args, " ")
	if q == "" && flagSearchCategory == catalog.AllCategories && !flagSearchJSON {
		return cmd.Help()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	st, closeCache, err := openStore(ctx, cfg, flagSearchSource)
	if err != nil {
		return err
	}
	defer closeCache()

	c, err := st.Load(ctx)
	if err != nil {
		return err
	}

	results := query.FilterSkills(c.Skills, query.Filter{Category: flagSearchCategory, Query: q})
	if flagSearchSort != "" {
		results = query.Sort(results, query.SortField(flagSearchSort), query.SortOrder(flagSearchOrder))
	}
	total := len(results)
	if flagSearchK > 0 && len(results) > flagSearchK {
		results = results[:flagSearchK]
	}

	if flagSearchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	printSearchResults(c, q, results, total)
	return nil
}

// printSearchResults groups results by category, keeping first-seen order.
func printSearchResults(c *catalog.Catalog, q string, results []catalog.Skill, total int) {
	fmt.Printf("\nskillcat search %q\n\n", q)
	fmt.Printf("Results (%d found", total)
	if len(results) < total {
		fmt.Printf(", showing %d", len(results))
	}
	fmt.Println("):")
	if len(results) == 0 {
		printMiss("", "未找到相关 Skill")
		return
	}

	grouped := make(map[string][]catalog.Skill)
	groupOrder := make([]string, 0, 8)
	for _, s := range results {
		if _, ok := grouped[s.Category]; !ok {
			groupOrder = append(groupOrder, s.Category)
		}
		grouped[s.Category] = append(grouped[s.Category], s)
	}

	for _, g := range groupOrder {
		items := grouped[g]
		label := g
		if cat, ok := c.Category(g); ok && cat.NameCn != "" {
			label = fmt.Sprintf("%s / %s", g, cat.NameCn)
		}
		fmt.Printf("\n%s (%d):\n", label, len(items))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for i, s := range items {
			badge := ""
			if s.IsNew {
				badge = "★"
			}
			fmt.Fprintf(w, "  %d.\t%s\t@%s\t%s\n", i+1, s.ID, s.Author, badge)
			fmt.Fprintf(w, "  - %s\n", richtext.Truncate(strings.TrimSpace(s.DisplayDescription()), 100))
		}
		_ = w.Flush()
	}
}
