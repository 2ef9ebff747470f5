// Package importer merges locally discovered SKILL.md manifests into an
// existing catalog as new skills.
package importer

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/categorize"
	"github.com/kamusis/skillcat/internal/manifest"
	"github.com/kamusis/skillcat/internal/readme"
)

// DefaultAuthor is credited for skills imported from disk.
const DefaultAuthor = "local"

// Options controls how manifests become skills.
type Options struct {
	// Author defaults to DefaultAuthor.
	Author string
	// URLTemplate builds githubUrl. {name}, {dir} and {path} are replaced by
	// the skill name, its directory name and the manifest's relative path.
	// Empty leaves githubUrl blank.
	URLTemplate string
	// Excludes are glob patterns matched against the manifest path and its
	// directory name.
	Excludes []string
	// Now stamps lastUpdated. Defaults to time.Now.
	Now func() time.Time
}

// Result summarizes one import.
type Result struct {
	Added    []catalog.Skill
	Existing []string // names already present in the catalog
	Excluded []string // manifest paths matched by Excludes
}

// Import appends a new skill for every manifest whose name is not already a
// skill id. New skills are flagged isNew, keep their English description as
// the localized one until translated, and are auto-categorized. The Latest
// category is placed first and every count is recomputed. c is modified in
// place.
func Import(c *catalog.Catalog, manifests []manifest.Manifest, opts Options) *Result {
	if opts.Author == "" {
		opts.Author = DefaultAuthor
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	res := &Result{}
	ids := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		ids[s.ID] = true
	}

	for _, m := range manifests {
		if matchesExclude(m.Path, opts.Excludes) {
			res.Excluded = append(res.Excluded, m.Path)
			continue
		}
		if ids[m.Name] {
			res.Existing = append(res.Existing, m.Name)
			continue
		}
		ids[m.Name] = true

		s := catalog.Skill{
			ID:             m.Name,
			Name:           m.Name,
			Author:         opts.Author,
			Description:    m.Description,
			DescriptionCn:  m.Description,
			GithubURL:      expandURL(opts.URLTemplate, m),
			Category:       categorize.Classify(m.Name, m.Description),
			InstallCommand: readme.InstallCommand(m.Name),
			IsNew:          true,
		}
		c.Skills = append(c.Skills, s)
		res.Added = append(res.Added, s)
		ensureCategory(c, s.Category)
	}

	EnsureLatestFirst(c)
	catalog.Recount(c)
	c.LastUpdated = opts.Now().Format("2006-01-02")
	return res
}

// EnsureLatestFirst moves the Latest category to the front, creating it if
// missing.
func EnsureLatestFirst(c *catalog.Catalog) {
	latest := categorize.Meta(catalog.Latest)
	rest := make([]catalog.Category, 0, len(c.Categories)+1)
	for _, cat := range c.Categories {
		if cat.Name == catalog.Latest {
			latest = cat
			continue
		}
		rest = append(rest, cat)
	}
	c.Categories = append([]catalog.Category{latest}, rest...)
}

func ensureCategory(c *catalog.Catalog, name string) {
	if _, ok := c.Category(name); ok {
		return
	}
	c.Categories = append(c.Categories, categorize.Meta(name))
}

func expandURL(tmpl string, m manifest.Manifest) string {
	if tmpl == "" {
		return ""
	}
	return strings.NewReplacer(
		"{name}", m.Name,
		"{dir}", m.Dir(),
		"{path}", m.Path,
	).Replace(tmpl)
}

// matchesExclude reports whether relPath matches any of the given glob patterns.
func matchesExclude(relPath string, patterns []string) bool {
	dir := filepath.Base(filepath.Dir(filepath.FromSlash(relPath)))
	for _, pattern := range patterns {
		// Match against the full relative path AND the skill directory.
		if matched, _ := filepath.Match(pattern, dir); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}
