package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var flagCategoriesSource string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog categories with their skill counts",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().StringVar(&flagCategoriesSource, "source", "", "Catalog URL or file (defaults to catalog.source)")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	st, closeCache, err := openStore(ctx, cfg, flagCategoriesSource)
	if err != nil {
		return err
	}
	defer closeCache()

	c, err := st.Load(ctx)
	if err != nil {
		return err
	}

	printSection(fmt.Sprintf("Categories (%d)", len(c.Categories)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  所有 Skills\t\t%d\n", c.TotalSkills)
	for _, cat := range c.Categories {
		fmt.Fprintf(w, "  %s\t%s\t%d\n", cat.NameCn, cat.Name, cat.Count)
	}
	return w.Flush()
}
