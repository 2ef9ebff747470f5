// Package store loads the skills catalog once, memoizes it and mirrors it into
// a persistent key-value cache tagged with the schema version.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/kv"
	"github.com/kamusis/skillcat/internal/logger"
	"github.com/kamusis/skillcat/internal/query"
)

// Persistent cache key prefixes. Each source gets its own pair of entries,
// see CacheKeys.
const (
	CacheKeyData    = "skills_data"
	CacheKeyVersion = "skills_data_version"
)

// CacheKeys returns the data and version keys for source. File paths are
// made absolute so every spelling of the same file shares one entry.
func CacheKeys(source string) (data, version string) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		if abs, err := filepath.Abs(source); err == nil {
			source = abs
		}
	}
	sum := sha256.Sum256([]byte(source))
	scope := hex.EncodeToString(sum[:6])
	return CacheKeyData + "." + scope, CacheKeyVersion + "." + scope
}

// ErrLoadFailed is returned by Load when the catalog could not be fetched
// or decoded.
var ErrLoadFailed = errors.New("failed to load skills catalog")

// Options configures a Store.
type Options struct {
	// Version tags cache entries. Defaults to catalog.SchemaVersion.
	Version string
}

// Store owns the loaded catalog and its persistent cache.
type Store struct {
	fetcher    Fetcher
	cache      kv.Store
	version    string
	dataKey    string
	versionKey string

	loadMu  sync.Mutex // serializes Load so concurrent callers share one fetch
	cacheMu sync.Mutex // orders Load's cache write against ClearCache

	mu  sync.RWMutex
	cat *catalog.Catalog
	gen uint64 // bumped by Reset; a Load that straddles a bump is discarded
}

// New returns a Store. cache may be nil, in which case nothing is persisted.
func New(fetcher Fetcher, cache kv.Store, opts Options) *Store {
	if opts.Version == "" {
		opts.Version = catalog.SchemaVersion
	}
	dataKey, versionKey := CacheKeys(fetcher.Source())
	return &Store{
		fetcher:    fetcher,
		cache:      cache,
		version:    opts.Version,
		dataKey:    dataKey,
		versionKey: versionKey,
	}
}

// Load returns the catalog, fetching it on first use. A version-matched
// cache entry is used instead of the network when it decodes cleanly.
func (s *Store) Load(ctx context.Context) (*catalog.Catalog, error) {
	if c := s.current(); c != nil {
		return c, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if c := s.current(); c != nil {
		return c, nil
	}

	log := logger.G(ctx).WithField("source", s.fetcher.Source())
	gen := s.generation()

	if c, ok := s.readCache(ctx); ok {
		log.WithField("skills", len(c.Skills)).Debug("catalog loaded from cache")
		s.setIfCurrent(c, gen)
		return c, nil
	}

	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		log.WithError(err).Error("catalog fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	c, err := catalog.Decode(raw)
	if err != nil {
		log.WithError(err).Error("catalog decode failed")
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation() != gen {
		log.Debug("cache cleared during load, not keeping this snapshot")
		return c, nil
	}
	if err := s.writeCache(ctx, string(raw)); err != nil {
		log.WithError(err).Warn("cannot persist catalog cache")
	}

	log.WithField("skills", len(c.Skills)).Info("catalog loaded")
	s.setIfCurrent(c, gen)
	return c, nil
}

func (s *Store) readCache(ctx context.Context) (*catalog.Catalog, bool) {
	if s.cache == nil {
		return nil, false
	}
	log := logger.G(ctx)

	tag, err := s.cache.Get(ctx, s.versionKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.WithError(err).Warn("cannot read catalog cache version")
		}
		return nil, false
	}
	if tag != s.version {
		log.WithField("cached", tag).WithField("want", s.version).Debug("catalog cache version mismatch")
		return nil, false
	}
	payload, err := s.cache.Get(ctx, s.dataKey)
	if err != nil {
		return nil, false
	}
	c, err := catalog.Decode([]byte(payload))
	if err != nil {
		log.WithError(err).Warn("ignoring corrupt catalog cache")
		return nil, false
	}
	return c, true
}

// Cached returns the version-matched catalog in the persistent cache without
// fetching or memoizing it.
func (s *Store) Cached(ctx context.Context) (*catalog.Catalog, bool) {
	return s.readCache(ctx)
}

func (s *Store) writeCache(ctx context.Context, payload string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Set(ctx, s.dataKey, payload); err != nil {
		return err
	}
	return s.cache.Set(ctx, s.versionKey, s.version)
}

// ClearCache removes both cache entries and forgets the loaded catalog.
func (s *Store) ClearCache(ctx context.Context) error {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.Reset()
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, s.dataKey); err != nil {
		return fmt.Errorf("cannot clear catalog cache: %w", err)
	}
	if err := s.cache.Delete(ctx, s.versionKey); err != nil {
		return fmt.Errorf("cannot clear catalog cache: %w", err)
	}
	return nil
}

// Reset forgets the loaded catalog but keeps the persistent cache. A Load
// already in flight will not memoize or persist what it fetched.
func (s *Store) Reset() {
	s.mu.Lock()
	s.cat = nil
	s.gen++
	s.mu.Unlock()
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// setIfCurrent memoizes c unless Reset ran since gen was read.
func (s *Store) setIfCurrent(c *catalog.Catalog, gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.cat = c
	}
	s.mu.Unlock()
}

func (s *Store) current() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Source describes where the catalog is fetched from.
func (s *Store) Source() string { return s.fetcher.Source() }

// IsLoaded reports whether a catalog is memoized.
func (s *Store) IsLoaded() bool { return s.current() != nil }

// AllSkills returns every skill, or nil before a successful Load.
func (s *Store) AllSkills() []catalog.Skill {
	c := s.current()
	if c == nil {
		return nil
	}
	return c.Skills
}

// Categories returns the catalog's categories in file order.
func (s *Store) Categories() []catalog.Category {
	c := s.current()
	if c == nil {
		return nil
	}
	return c.Categories
}

// SkillsByCategory filters by category; "all" returns every skill.
func (s *Store) SkillsByCategory(category string) []catalog.Skill {
	return query.FilterSkills(s.AllSkills(), query.Filter{Category: category})
}

// Search applies the text predicate to every skill.
func (s *Store) Search(q string) []catalog.Skill {
	return query.Search(s.AllSkills(), q)
}

// SkillByID looks a skill up by id.
func (s *Store) SkillByID(id string) (catalog.Skill, bool) {
	return s.current().SkillByID(id)
}
