// Package readme scrapes the awesome-list README into catalog skills.
//
// Categories are introduced by collapsible sections of the form
//
//	<summary><h3>Category</h3></summary>
//
// and each following bullet "[name](url) - description" is one skill.
package readme

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/categorize"
)

// UnknownAuthor is used when the skill URL carries no author segment.
const UnknownAuthor = "unknown"

var (
	entryRe  = regexp.MustCompile(`^\[(.*?)\]\((.*?)\)\s+-\s+(.*)$`)
	authorRe = regexp.MustCompile(`/skills/(.*?)/(.*?)/`)
)

// Result is the outcome of scraping one README.
type Result struct {
	Skills []catalog.Skill
	// Categories lists category names in order of first appearance.
	Categories []string
}

// Parse walks the markdown and collects skills under their section heading.
// Bullets before the first heading are ignored.
func Parse(src []byte) (*Result, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	res := &Result{}
	seen := make(map[string]bool)
	current := ""

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.HTMLBlock:
			// An HTML block runs to the next blank line, so bullets written
			// directly under </summary> end up inside it.
			for _, line := range blockLines(node, src) {
				if rest, ok := strings.CutPrefix(line, "- "); ok {
					if s, ok := parseEntry(strings.TrimSpace(rest)); ok && current != "" {
						s.Category = current
						res.Skills = append(res.Skills, s)
					}
					continue
				}
				name, err := headingIn(line)
				if err != nil {
					return ast.WalkStop, err
				}
				if name != "" {
					current = name
					if !seen[name] {
						seen[name] = true
						res.Categories = append(res.Categories, name)
					}
				}
			}
		case *ast.ListItem:
			if current == "" {
				return ast.WalkContinue, nil
			}
			if list, ok := node.Parent().(*ast.List); !ok || list.Marker != '-' {
				return ast.WalkContinue, nil
			}
			if s, ok := parseEntry(firstLine(node, src)); ok {
				s.Category = current
				res.Skills = append(res.Skills, s)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func blockLines(n *ast.HTMLBlock, src []byte) []string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len()+1)
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimSpace(string(seg.Value(src))))
	}
	if n.HasClosure() {
		out = append(out, strings.TrimSpace(string(n.ClosureLine.Value(src))))
	}
	return out
}

// headingIn returns the text of the last <summary><h3> in an HTML fragment.
func headingIn(fragment string) (string, error) {
	if !strings.Contains(fragment, "<summary") {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("cannot parse README HTML block: %w", err)
	}
	name := ""
	doc.Find("summary h3").Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			name = t
		}
	})
	return name, nil
}

func firstLine(item *ast.ListItem, src []byte) string {
	child := item.FirstChild()
	if child == nil || child.Lines().Len() == 0 {
		return ""
	}
	seg := child.Lines().At(0)
	return strings.TrimSpace(string(seg.Value(src)))
}

func parseEntry(line string) (catalog.Skill, bool) {
	m := entryRe.FindStringSubmatch(line)
	if m == nil {
		return catalog.Skill{}, false
	}
	name := strings.TrimSpace(m[1])
	url := strings.TrimSpace(m[2])
	return catalog.Skill{
		ID:             name,
		Name:           name,
		Author:         AuthorFromURL(url),
		Description:    strings.TrimSpace(m[3]),
		GithubURL:      url,
		InstallCommand: InstallCommand(name),
	}, true
}

// AuthorFromURL extracts {author} from .../skills/{author}/{name}/...
func AuthorFromURL(u string) string {
	if m := authorRe.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return UnknownAuthor
}

// InstallCommand is the CLI invocation that installs a skill.
func InstallCommand(name string) string {
	return "npx clawhub@latest install " + name
}

// BuildCatalog assembles a catalog from a scrape. Categories carry their
// label and icon and are ordered by count, largest first; ties keep their
// README order.
func BuildCatalog(res *Result, now time.Time) *catalog.Catalog {
	c := &catalog.Catalog{
		Version:     catalog.SchemaVersion,
		LastUpdated: now.Format("2006-01-02"),
		Skills:      res.Skills,
	}
	if c.Skills == nil {
		c.Skills = []catalog.Skill{}
	}
	for _, name := range res.Categories {
		c.Categories = append(c.Categories, categorize.Meta(name))
	}
	catalog.Recount(c)
	sort.SliceStable(c.Categories, func(i, j int) bool {
		return c.Categories[i].Count > c.Categories[j].Count
	})
	if c.Categories == nil {
		c.Categories = []catalog.Category{}
	}
	return c
}
