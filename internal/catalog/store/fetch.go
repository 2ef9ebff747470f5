package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxCatalogBytes bounds the fetched payload.
const maxCatalogBytes = 32 << 20

// Fetcher reads the raw catalog document from its durable source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
	Source() string
}

// NewFetcher picks an HTTP fetcher for http(s) URLs and a file fetcher for
// anything else.
func NewFetcher(source string) Fetcher {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPFetcher(source, nil)
	}
	return FileFetcher{Path: source}
}

// HTTPFetcher GETs the catalog from a URL.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher returns an HTTPFetcher. A nil client gets a 30 s timeout.
func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{url: url, client: client}
}

func (f *HTTPFetcher) Source() string { return f.url }

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("cannot read response body: %w", err)
	}
	return b, nil
}

// FileFetcher reads the catalog from a local path.
type FileFetcher struct {
	Path string
}

func (f FileFetcher) Source() string { return f.Path }

func (f FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Path)
}
