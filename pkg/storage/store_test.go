package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, KeyBookmarks)
			require.NoError(t, err)
			assert.False(t, ok, "absent key should report ok=false")

			require.NoError(t, s.Set(ctx, KeyBookmarks, []byte(`[{"url":"https://a.com"}]`)))
			blob, ok, err := s.Get(ctx, KeyBookmarks)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `[{"url":"https://a.com"}]`, string(blob))

			require.NoError(t, s.Set(ctx, KeyBookmarks, []byte(`[]`)))
			blob, _, err = s.Get(ctx, KeyBookmarks)
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(blob))

			require.NoError(t, s.Set(ctx, KeyHistory, []byte(`[1]`)))
			require.NoError(t, s.Remove(ctx, KeyBookmarks))
			_, ok, err = s.Get(ctx, KeyBookmarks)
			require.NoError(t, err)
			assert.False(t, ok)

			_, ok, err = s.Get(ctx, KeyHistory)
			require.NoError(t, err)
			assert.True(t, ok, "removing one key must not touch another")

			assert.NoError(t, s.Remove(ctx, "never-set"))
		})
	}
}

func TestFileStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeySettings, []byte(`{"saveHistory":false}`)))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	blob, ok, err := reopened.Get(ctx, KeySettings)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"saveHistory":false}`, string(blob))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStore(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailure)
}

func TestFileStore_RejectsInvalidJSON(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	err = s.Set(context.Background(), KeyHistory, []byte("nope"))
	assert.ErrorIs(t, err, ErrFailure)
}

func TestFileStore_DefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := NewFileStore("")
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(homeDir, ".thazh", "store.json"), s.Path())
}

func TestLoadSaveJSON(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got []string
	ok, err := LoadJSON(ctx, s, KeyHistory, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SaveJSON(ctx, s, KeyHistory, []string{"a", "b"}))
	ok, err = LoadJSON(ctx, s, KeyHistory, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	t.Run("decode failure wraps ErrFailure", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyBookmarks, []byte(`{"not":"an array"}`)))
		var list []string
		_, err := LoadJSON(ctx, s, KeyBookmarks, &list)
		assert.ErrorIs(t, err, ErrFailure)
	})

	t.Run("encode failure wraps ErrFailure", func(t *testing.T) {
		err := SaveJSON(ctx, s, KeyBookmarks, map[string]any{"bad": make(chan int)})
		assert.ErrorIs(t, err, ErrFailure)
	})

	t.Run("backend failure wraps ErrFailure", func(t *testing.T) {
		disk := errors.New("disk full")
		s.FailNext(disk)
		err := SaveJSON(ctx, s, KeyBookmarks, []string{})
		assert.ErrorIs(t, err, ErrFailure)
		assert.ErrorIs(t, err, disk)

		s.FailNext(disk)
		assert.ErrorIs(t, Delete(ctx, s, KeyBookmarks), ErrFailure)
	})
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		path    string
		wantErr bool
	}{
		{backend: BackendFile, path: filepath.Join(dir, "store.json")},
		{backend: BackendSQLite, path: filepath.Join(dir, "store.db")},
		{backend: BackendMemory},
		{backend: "", path: filepath.Join(dir, "default.json")},
		{backend: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, closer, err := Open(tt.backend, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
			require.NotNil(t, closer)
			assert.NoError(t, closer.Close())
		})
	}
}
