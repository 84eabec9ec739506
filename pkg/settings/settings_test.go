package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/entrhq/thazh/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.True(t, d.SaveHistory)
	assert.True(t, d.BlockPopups)
	assert.True(t, d.EnableJavaScript)
	assert.False(t, d.ClearCookiesOnExit)
	assert.False(t, d.DesktopModeDefault)
}

func TestSettings_Data(t *testing.T) {
	data := Defaults().Data()
	assert.Len(t, data, len(Names()))
	assert.Equal(t, true, data[NameSaveHistory])
	assert.Equal(t, false, data[NameDesktopModeDefault])
}

func TestStore_LoadDefaultsWhenAbsent(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(), nil)
	assert.Equal(t, Defaults(), s.Load(context.Background()))
}

func TestStore_LoadMergesOverDefaults(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, storage.KeySettings, []byte(`{"saveHistory":false}`)))

	s := NewStore(kv, nil)
	got := s.Load(ctx)
	assert.False(t, got.SaveHistory)
	assert.True(t, got.EnableJavaScript, "missing field keeps its default")
	assert.Equal(t, got, s.Current())
}

func TestStore_LoadSoftFails(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, storage.KeySettings, []byte(`[not an object]`)))

	s := NewStore(kv, nil)
	assert.Equal(t, Defaults(), s.Load(ctx))
}

func TestStore_ToggleSetReset(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	s := NewStore(kv, nil)

	got, err := s.Toggle(ctx, NameDesktopModeDefault)
	require.NoError(t, err)
	assert.True(t, got.DesktopModeDefault)

	got, err = s.Set(ctx, NameSaveHistory, false)
	require.NoError(t, err)
	assert.False(t, got.SaveHistory)

	// Persisted as a whole object
	reloaded := NewStore(kv, nil).Load(ctx)
	assert.Equal(t, got, reloaded)

	_, err = s.Toggle(ctx, "nope")
	assert.Error(t, err)

	got, err = s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
	assert.Equal(t, Defaults(), NewStore(kv, nil).Load(ctx))
}

func TestStore_SaveFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	s := NewStore(kv, nil)

	kv.FailNext(errors.New("disk full"))
	_, err := s.Toggle(ctx, NameBlockPopups)
	assert.ErrorIs(t, err, storage.ErrFailure)
	assert.True(t, s.Current().BlockPopups)
}
