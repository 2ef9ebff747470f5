// Package manifest discovers SKILL.md files and reads their frontmatter.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the manifest file every skill directory carries.
const FileName = "SKILL.md"

// Manifest is the metadata read from one SKILL.md.
type Manifest struct {
	// Path is the manifest file, relative to the scanned root, slash separated.
	Path        string
	Name        string
	Description string
	License     string
	Keywords    string
}

// Dir returns the skill directory name, the manifest's parent.
func (m Manifest) Dir() string {
	return filepath.Base(filepath.Dir(filepath.FromSlash(m.Path)))
}

// Skipped records a manifest that could not be used.
type Skipped struct {
	Path   string
	Reason string
}

// Discover walks root recursively and parses every SKILL.md. Files without
// frontmatter or without a name are reported in skipped rather than failing
// the scan.
func Discover(root string) (found []Manifest, skipped []Skipped, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot stat skills directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("skills path is not a directory: %s", root)
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != FileName {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		m, reason := parse(string(b))
		if reason != "" {
			skipped = append(skipped, Skipped{Path: rel, Reason: reason})
			return nil
		}
		m.Path = rel
		found = append(found, m)
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, nil, fmt.Errorf("cannot scan skills: %w", err)
	}
	return found, skipped, nil
}

// Parse reads one SKILL.md document.
func Parse(content string) (Manifest, error) {
	m, reason := parse(content)
	if reason != "" {
		return Manifest{}, fmt.Errorf("invalid %s: %s", FileName, reason)
	}
	return m, nil
}

func parse(content string) (Manifest, string) {
	h, body, ok := splitFrontmatter(content)
	if !ok {
		return Manifest{}, "missing frontmatter"
	}
	name := strings.TrimSpace(h["name"])
	if name == "" {
		return Manifest{}, "frontmatter has no name"
	}
	desc := strings.TrimSpace(h["description"])
	if desc == "" {
		desc = inferDescriptionFromBody(body)
	}
	keywords := strings.TrimSpace(h["keywords"])
	if keywords == "" {
		keywords = strings.TrimSpace(h["tags"])
	}
	return Manifest{
		Name:        name,
		Description: desc,
		License:     strings.TrimSpace(h["license"]),
		Keywords:    keywords,
	}, ""
}
