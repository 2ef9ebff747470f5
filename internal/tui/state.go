package tui

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LoadState returns the query string of the URL saved at path, or "" when
// there is none.
func LoadState(path string) string {
	if path == "" {
		return ""
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(string(b)))
	if err != nil {
		return ""
	}
	return u.RawQuery
}

// SaveState writes u to path.
func SaveState(path string, u *url.URL) error {
	if path == "" || u == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(u.String()+"\n"), 0o644)
}
