// Package kv provides the small persistent key-value stores the catalog
// store mirrors its payload into.
package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when the key has no value.
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by Set when the value would exceed the
	// store's size limit.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store is a string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options configures Open.
type Options struct {
	Backend  string
	Path     string // directory for file, database file for sqlite
	MaxBytes int    // 0 means unlimited
}

// Open returns the store selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Path, opts.MaxBytes)
	case BackendSQLite:
		return OpenSQLite(ctx, opts.Path, opts.MaxBytes)
	case BackendMemory:
		return NewMemory(opts.MaxBytes), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", opts.Backend)
	}
}

func checkQuota(max int, value string) error {
	if max > 0 && len(value) > max {
		return fmt.Errorf("%w: value is %d bytes, limit %d", ErrQuotaExceeded, len(value), max)
	}
	return nil
}
