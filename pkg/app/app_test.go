package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/thazh/pkg/config"
	"github.com/entrhq/thazh/pkg/session"
	"github.com/entrhq/thazh/pkg/settings"
	"github.com/entrhq/thazh/pkg/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSurface accepts every command and never emits.
type stubSurface struct {
	events chan session.Event
	ua     string
}

func (s *stubSurface) Load(string) error            { return nil }
func (s *stubSurface) GoBack() error                { return nil }
func (s *stubSurface) GoForward() error             { return nil }
func (s *stubSurface) Reload() error                { return nil }
func (s *stubSurface) SetUserAgent(ua string) error { s.ua = ua; return nil }
func (s *stubSurface) Events() <-chan session.Event { return s.events }
func (s *stubSurface) Close() error                 { close(s.events); return nil }

func stubFactory(created *[]*stubSurface) session.Factory {
	return session.FactoryFunc(func(_ context.Context, _ string, ua string) (session.Surface, error) {
		s := &stubSurface{events: make(chan session.Event), ua: ua}
		*created = append(*created, s)
		return s, nil
	})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Logging.Verbosity = "quiet"
	cfg.Session.DesktopReloadDelay = time.Millisecond
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestOpen_FileBackend(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	_, err = a.Bookmarks.Add(ctx, "https://go.dev", "Go")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, reopened.Bookmarks.IsBookmarked(ctx, "https://go.dev"))
}

func TestOpen_SQLiteBackend(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Storage.Backend = "sqlite"

	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	a.History.Record(ctx, "https://example.com", "Example")
	assert.Len(t, a.History.List(ctx), 1)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "tape"

	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestHistoryGateFollowsSetting(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Storage.Backend = "memory"

	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Settings.Set(ctx, settings.NameSaveHistory, false)
	require.NoError(t, err)
	a.History.Record(ctx, "https://private.example", "Private")
	assert.Empty(t, a.History.List(ctx))

	_, err = a.Settings.Set(ctx, settings.NameSaveHistory, true)
	require.NoError(t, err)
	a.History.Record(ctx, "https://public.example", "Public")
	assert.Len(t, a.History.List(ctx), 1)
}

func TestStartSession(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Storage.Backend = "memory"
	cfg.Homepage = "https://home.example"

	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	_, err = a.Settings.Set(ctx, settings.NameDesktopModeDefault, true)
	require.NoError(t, err)

	var created []*stubSurface
	require.NoError(t, a.StartSession(ctx, stubFactory(&created)))
	assert.Error(t, a.StartSession(ctx, stubFactory(&created)), "session starts once")

	assert.True(t, a.Session.DesktopMode())
	assert.Equal(t, "https://home.example", a.Session.Active().URL)
	require.Len(t, created, 1)
	assert.Equal(t, session.DesktopUserAgent, created[0].ua)

	a.Session.HandleEvent(a.Session.Active().ID, session.NavigationStateChanged{URL: "https://visited.example/", Title: "Visited"})
	items := a.History.List(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "https://visited.example/", items[0].URL)

	require.NoError(t, a.Close())
}

func TestPolicyFollowsSettings(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Storage.Backend = "memory"

	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	p := a.Policy()
	assert.True(t, p.JavaScriptEnabled)
	assert.True(t, p.BlockPopups)
	assert.False(t, p.ClearCookiesOnExit)

	_, err = a.Settings.Toggle(ctx, settings.NameEnableJavaScript)
	require.NoError(t, err)
	assert.False(t, a.EngineOptions().Policy.JavaScriptEnabled)
	assert.Equal(t, cfg.Browser.Viewport.Width, a.EngineOptions().Viewport.Width)
}

func TestBackgroundTabsRecordConcurrently(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	var created []*stubSurface
	require.NoError(t, a.StartSession(ctx, stubFactory(&created)))
	const tabs, visits = 8, 25
	for len(created) < tabs {
		_, err := a.Session.Create()
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i, s := range created {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := 0; v < visits; v++ {
				s.events <- session.NavigationStateChanged{URL: fmt.Sprintf("https://tab%d.example/%d", i, v), Title: "Page"}
			}
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		return len(a.History.List(ctx)) == tabs*visits
	}, 5*time.Second, 20*time.Millisecond)
}

func TestEngineOptions_BrowserState(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig(t)
	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.DataDir, "browser-state.json"), a.EngineOptions().StatePath)
	require.NoError(t, a.Close())

	mem := testConfig(t)
	mem.Storage.Backend = "memory"
	b, err := Open(ctx, mem)
	require.NoError(t, err)
	defer b.Close()
	assert.Empty(t, b.EngineOptions().StatePath)
}

func TestApplyPolicy(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Storage.Backend = "memory"

	a, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	engine := a.NewEngine()
	_, err = a.Settings.Toggle(ctx, settings.NameBlockPopups)
	require.NoError(t, err)
	assert.True(t, engine.Policy().BlockPopups, "engine keeps its policy until told")

	a.ApplyPolicy(engine)
	assert.Equal(t, surface.Policy{JavaScriptEnabled: true}, engine.Policy())
}
