package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	file, err := Open(ctx, Options{Backend: BackendFile, Path: filepath.Join(dir, "files"), MaxBytes: 16})
	require.NoError(t, err)
	sqlite, err := Open(ctx, Options{Backend: BackendSQLite, Path: filepath.Join(dir, "cache.db"), MaxBytes: 16})
	require.NoError(t, err)
	mem, err := Open(ctx, Options{Backend: BackendMemory, MaxBytes: 16})
	require.NoError(t, err)

	stores := map[string]Store{"file": file, "sqlite": sqlite, "memory": mem}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStores_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "skills_data")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "skills_data", "one"))
			require.NoError(t, s.Set(ctx, "skills_data", "two"))
			v, err := s.Get(ctx, "skills_data")
			require.NoError(t, err)
			assert.Equal(t, "two", v)

			require.NoError(t, s.Delete(ctx, "skills_data"))
			require.NoError(t, s.Delete(ctx, "skills_data"))
			_, err = s.Get(ctx, "skills_data")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStores_Quota(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Set(ctx, "big", "this value is longer than sixteen bytes")
			assert.ErrorIs(t, err, ErrQuotaExceeded)

			_, err = s.Get(ctx, "big")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := NewFileStore(dir, 0)
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, "skills_data_version", "3.0"))

	b, err := NewFileStore(dir, 0)
	require.NoError(t, err)
	v, err := b.Get(ctx, "skills_data_version")
	require.NoError(t, err)
	assert.Equal(t, "3.0", v)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "redis"})
	assert.Error(t, err)
}
