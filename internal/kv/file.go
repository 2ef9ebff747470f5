package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockTimeout = 5 * time.Second

// FileStore keeps one file per key in a directory. A lock file serializes
// access between processes sharing the directory; mu does the same between
// goroutines of this process.
type FileStore struct {
	mu       sync.Mutex
	dir      string
	maxBytes int
	lock     *flock.Flock
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string, maxBytes int) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache dir %s: %w", dir, err)
	}
	return &FileStore{
		dir:      dir,
		maxBytes: maxBytes,
		lock:     flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".val")
}

func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return "", err
	}
	defer unlock()

	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("cannot read cache entry %s: %w", key, err)
	}
	return string(b), nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := checkQuota(s.maxBytes, value); err != nil {
		return err
	}
	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(s.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("cannot create cache entry %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot install cache entry %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot delete cache entry %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// acquire takes the shared (read) or exclusive (write) lock, polling until
// lockTimeout or ctx expires.
func (s *FileStore) acquire(ctx context.Context, exclusive bool) (func(), error) {
	s.mu.Lock()
	deadline := time.Now().Add(lockTimeout)
	for {
		var (
			locked bool
			err    error
		)
		if exclusive {
			locked, err = s.lock.TryLock()
		} else {
			locked, err = s.lock.TryRLock()
		}
		if err != nil {
			s.mu.Unlock()
			return func() {}, fmt.Errorf("cannot acquire cache lock: %w", err)
		}
		if locked {
			return func() {
				_ = s.lock.Unlock()
				s.mu.Unlock()
			}, nil
		}
		if time.Now().After(deadline) {
			s.mu.Unlock()
			return func() {}, fmt.Errorf("cache is locked by another process (lock: %s)", s.lock.Path())
		}
		select {
		case <-ctx.Done():
			s.mu.Unlock()
			return func() {}, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
