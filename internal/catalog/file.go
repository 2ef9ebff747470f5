package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Decode parses a catalog document.
func Decode(b []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("invalid catalog JSON: %w", err)
	}
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	if c.Categories == nil {
		c.Categories = []Category{}
	}
	return &c, nil
}

// Encode serializes c with two-space indentation and no HTML escaping, so
// descriptions and install commands stay readable in the file.
func Encode(c *Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("cannot marshal catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadFile loads a catalog from path.
func ReadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog %s: %w", path, err)
	}
	c, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteFile writes c to path through a temp file and rename, so readers
// never observe a half-written catalog.
func WriteFile(path string, c *Catalog) error {
	b, err := Encode(c)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create catalog dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("cannot create temp catalog: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write temp catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot install catalog %s: %w", path, err)
	}
	return nil
}
