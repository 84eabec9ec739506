package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeFactory, *recorder) {
	t.Helper()
	factory := newFakeFactory()
	rec := &recorder{}
	opts = append([]Option{WithIDGenerator(sequentialIDs()), WithRecorder(rec)}, opts...)
	m, err := NewManager(context.Background(), factory, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown() })
	return m, factory, rec
}

func ids(tabs []Tab) []string {
	out := make([]string, len(tabs))
	for i, t := range tabs {
		out[i] = t.ID
	}
	return out
}

func TestNewManager_InitialTab(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, factory, _ := newTestManager(t)

	snap := m.Snapshot()
	require.Len(t, snap.Tabs, 1)
	assert.Equal(t, "1", snap.ActiveID)
	assert.Equal(t, Tab{ID: "1", URL: DefaultHomepage, Title: InitialTitle}, snap.Tabs[0])
	assert.False(t, snap.DesktopMode)
	assert.False(t, snap.SwitcherVisible)

	loads, _, ua, _ := factory.get("1").state()
	assert.Equal(t, []string{DefaultHomepage}, loads)
	assert.Empty(t, ua)

	require.NoError(t, m.Shutdown())
}

func TestNewManager_FactoryFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	factory := newFakeFactory()
	factory.fail = errors.New("no engine")

	_, err := NewManager(context.Background(), factory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no engine")
}

func TestNewManager_DesktopModeDefault(t *testing.T) {
	m, factory, _ := newTestManager(t, WithDesktopMode(true))

	assert.True(t, m.DesktopMode())
	_, _, ua, _ := factory.get("1").state()
	assert.Equal(t, DesktopUserAgent, ua)
}

func TestCreate(t *testing.T) {
	m, factory, _ := newTestManager(t)
	m.ShowSwitcher()

	tab, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, Tab{ID: "2", URL: DefaultHomepage, Title: NewTabTitle}, tab)

	snap := m.Snapshot()
	assert.Equal(t, []string{"1", "2"}, ids(snap.Tabs))
	assert.Equal(t, "2", snap.ActiveID)
	assert.False(t, snap.SwitcherVisible, "creating a tab hides the switcher")
	assert.NotNil(t, factory.get("2"))
}

func TestCreate_CustomHomepage(t *testing.T) {
	m, _, _ := newTestManager(t, WithHomepage("https://start.example"))

	tab, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, "https://start.example", tab.URL)
}

func TestSwitch(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Create()
	require.NoError(t, err)
	m.ShowSwitcher()

	require.NoError(t, m.Switch("1"))
	snap := m.Snapshot()
	assert.Equal(t, "1", snap.ActiveID)
	assert.False(t, snap.SwitcherVisible)
	assert.Equal(t, []string{"1", "2"}, ids(snap.Tabs), "switching never reorders")

	err = m.Switch("nope")
	assert.ErrorIs(t, err, ErrTabNotFound)
	assert.Equal(t, "1", m.Active().ID)
}

func TestClose_ActiveMiddleSelectsRightNeighbour(t *testing.T) {
	m, _, _ := newTestManager(t)
	for range 2 {
		_, err := m.Create()
		require.NoError(t, err)
	}
	require.NoError(t, m.Switch("2"))

	require.NoError(t, m.Close("2"))
	assert.Equal(t, []string{"1", "3"}, ids(m.Tabs()))
	assert.Equal(t, "3", m.Active().ID)
}

func TestClose_ActiveLastSelectsLeftNeighbour(t *testing.T) {
	m, _, _ := newTestManager(t)
	for range 2 {
		_, err := m.Create()
		require.NoError(t, err)
	}

	require.NoError(t, m.Close("3"))
	assert.Equal(t, []string{"1", "2"}, ids(m.Tabs()))
	assert.Equal(t, "2", m.Active().ID)
}

func TestClose_InactiveKeepsActive(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, m.Close("1"))
	assert.Equal(t, []string{"2"}, ids(m.Tabs()))
	assert.Equal(t, "2", m.Active().ID)
}

func TestClose_LastTabIsReplaced(t *testing.T) {
	m, factory, _ := newTestManager(t)

	require.NoError(t, m.Close("1"))

	tabs := m.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, Tab{ID: "2", URL: DefaultHomepage, Title: NewTabTitle}, tabs[0])
	assert.Equal(t, "2", m.Active().ID)

	_, _, _, closed := factory.get("1").state()
	assert.True(t, closed, "closed tab releases its surface")
}

func TestClose_LastTabReplacementFails(t *testing.T) {
	m, factory, _ := newTestManager(t)
	factory.mu.Lock()
	factory.fail = errors.New("out of memory")
	factory.mu.Unlock()

	err := m.Close("1")
	require.Error(t, err)
	assert.Equal(t, []string{"1"}, ids(m.Tabs()), "tab list is never left empty")
}

func TestClose_UnknownTab(t *testing.T) {
	m, _, _ := newTestManager(t)

	err := m.Close("42")
	assert.ErrorIs(t, err, ErrTabNotFound)
	assert.Len(t, m.Tabs(), 1)
}

func TestNeverEmpty(t *testing.T) {
	m, _, _ := newTestManager(t)

	for range 5 {
		_, err := m.Create()
		require.NoError(t, err)
	}
	for i := 0; i < 20; i++ {
		active := m.Active()
		require.NoError(t, m.Close(active.ID))

		snap := m.Snapshot()
		require.NotEmpty(t, snap.Tabs)
		require.NotEqual(t, -1, snap.ActiveIndex(), "active id must name a tab")
	}
}

func TestNavigate(t *testing.T) {
	m, factory, _ := newTestManager(t)

	dest, err := m.Navigate("example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", dest)
	assert.Equal(t, "https://example.com", m.Active().URL)

	dest, err = m.Navigate("weather today")
	require.NoError(t, err)
	assert.Equal(t, DefaultSearchEngine+"?q=weather%20today", dest)

	dest, err = m.Navigate("")
	require.NoError(t, err)
	assert.Equal(t, DefaultHomepage, dest)

	loads, _, _, _ := factory.get("1").state()
	assert.Equal(t, []string{
		DefaultHomepage,
		"https://example.com",
		DefaultSearchEngine + "?q=weather%20today",
		DefaultHomepage,
	}, loads)
}

func TestNavigate_CustomSearchEngine(t *testing.T) {
	m, _, _ := newTestManager(t, WithSearchEngine("https://search.example/find"))

	dest, err := m.Navigate("golang")
	require.NoError(t, err)
	assert.Equal(t, "https://search.example/find?q=golang", dest)
}

func TestHandleEvent_ActiveTab(t *testing.T) {
	m, _, rec := newTestManager(t)

	m.HandleEvent("1", LoadStart{})
	snap := m.Snapshot()
	assert.True(t, snap.Loading)
	assert.Zero(t, snap.Progress)

	m.HandleEvent("1", Progress{Value: 0.4})
	assert.InDelta(t, 0.4, m.Snapshot().Progress, 1e-9)

	m.HandleEvent("1", Progress{Value: 7})
	assert.InDelta(t, 1, m.Snapshot().Progress, 1e-9, "progress is clamped")

	m.HandleEvent("1", NavigationStateChanged{
		URL:       "https://www.example.com/",
		Title:     "Example",
		CanGoBack: true,
	})
	m.HandleEvent("1", LoadEnd{})

	snap = m.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, Tab{
		ID:        "1",
		URL:       "https://www.example.com/",
		Title:     "Example",
		CanGoBack: true,
	}, snap.Tabs[0])
	assert.Equal(t, []string{"https://www.example.com/|Example"}, rec.all())
}

func TestHandleEvent_BackgroundTab(t *testing.T) {
	m, _, rec := newTestManager(t)
	_, err := m.Create()
	require.NoError(t, err)

	m.HandleEvent("1", LoadStart{})
	assert.False(t, m.Snapshot().Loading, "background load does not drive the chrome")

	m.HandleEvent("1", NavigationStateChanged{URL: "https://bg.example/", Title: "Background"})

	tabs := m.Tabs()
	assert.Equal(t, "https://bg.example/", tabs[0].URL)
	assert.Equal(t, "Background", tabs[0].Title)
	assert.Equal(t, DefaultHomepage, tabs[1].URL)
	assert.Equal(t, []string{"https://bg.example/|Background"}, rec.all())
}

func TestHandleEvent_EmptyTitleKeepsPrevious(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.HandleEvent("1", NavigationStateChanged{URL: "https://a.example/"})
	tab := m.Active()
	assert.Equal(t, "https://a.example/", tab.URL)
	assert.Equal(t, InitialTitle, tab.Title)
}

func TestHandleEvent_UnknownTabDropped(t *testing.T) {
	m, _, rec := newTestManager(t)

	m.HandleEvent("99", NavigationStateChanged{URL: "https://ghost.example/"})
	assert.Empty(t, rec.all())
	assert.Equal(t, DefaultHomepage, m.Active().URL)
}

func TestHandleEvent_LoadErrorStopsLoading(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.HandleEvent("1", LoadStart{})
	m.HandleEvent("1", LoadError{URL: "https://down.example", Err: errors.New("net::ERR_NAME_NOT_RESOLVED")})
	assert.False(t, m.Snapshot().Loading)
}

func TestEventsArriveThroughSurface(t *testing.T) {
	defer goleak.VerifyNone(t)

	factory := newFakeFactory()
	rec := &recorder{}
	m, err := NewManager(context.Background(), factory, WithIDGenerator(sequentialIDs()), WithRecorder(rec))
	require.NoError(t, err)

	factory.get("1").events <- NavigationStateChanged{URL: "https://pumped.example/", Title: "Pumped"}

	select {
	case <-m.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
	assert.Eventually(t, func() bool {
		return m.Active().URL == "https://pumped.example/"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return len(rec.all()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Shutdown())
}

func TestBackForward(t *testing.T) {
	m, factory, _ := newTestManager(t)
	s := factory.get("1")

	require.NoError(t, m.Back())
	require.NoError(t, m.Forward())
	s.mu.Lock()
	assert.Zero(t, s.backs, "no back history means no command")
	assert.Zero(t, s.forwards)
	s.mu.Unlock()

	m.HandleEvent("1", NavigationStateChanged{URL: "https://b.example/", CanGoBack: true, CanGoForward: true})
	require.NoError(t, m.Back())
	require.NoError(t, m.Forward())
	s.mu.Lock()
	assert.Equal(t, 1, s.backs)
	assert.Equal(t, 1, s.forwards)
	s.mu.Unlock()
}

func TestToggleDesktopMode(t *testing.T) {
	m, factory, _ := newTestManager(t, WithReloadDelay(20*time.Millisecond))
	_, err := m.Create()
	require.NoError(t, err)

	on, err := m.ToggleDesktopMode()
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, m.DesktopMode())

	for _, id := range []string{"1", "2"} {
		_, _, ua, _ := factory.get(id).state()
		assert.Equal(t, DesktopUserAgent, ua, "tab %s", id)
	}

	_, reloads, _, _ := factory.get("2").state()
	assert.Zero(t, reloads, "reload waits for the delay")
	assert.Eventually(t, func() bool {
		_, reloads, _, _ := factory.get("2").state()
		return reloads == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, reloads, _, _ = factory.get("1").state()
	assert.Zero(t, reloads, "only the active tab reloads")

	on, err = m.ToggleDesktopMode()
	require.NoError(t, err)
	assert.False(t, on)
	_, _, ua, _ := factory.get("1").state()
	assert.Empty(t, ua)
}

func TestToggleDesktopMode_NewTabsInherit(t *testing.T) {
	m, factory, _ := newTestManager(t, WithReloadDelay(time.Hour))

	_, err := m.ToggleDesktopMode()
	require.NoError(t, err)

	tab, err := m.Create()
	require.NoError(t, err)
	_, _, ua, _ := factory.get(tab.ID).state()
	assert.Equal(t, DesktopUserAgent, ua)
}

func TestShutdown_CancelsPendingReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	factory := newFakeFactory()
	m, err := NewManager(context.Background(), factory,
		WithIDGenerator(sequentialIDs()),
		WithReloadDelay(time.Hour),
	)
	require.NoError(t, err)

	_, err = m.ToggleDesktopMode()
	require.NoError(t, err)

	require.NoError(t, m.Shutdown())
	require.NoError(t, m.Shutdown(), "second shutdown is a no-op")

	_, reloads, _, closed := factory.get("1").state()
	assert.Zero(t, reloads)
	assert.True(t, closed)

	_, err = m.Create()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.Navigate("example.com")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Close("1"), ErrClosed)
	assert.ErrorIs(t, m.Reload(), ErrClosed)
}

func TestShutdown_RejectsSwitch(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, m.Shutdown())

	before := m.Snapshot()
	assert.ErrorIs(t, m.Switch("1"), ErrClosed)
	_, err = m.ToggleDesktopMode()
	assert.ErrorIs(t, err, ErrClosed)
	m.ShowSwitcher()
	assert.Equal(t, before, m.Snapshot(), "state is frozen after shutdown")
}

func TestSwitcherVisibility(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.ShowSwitcher()
	assert.True(t, m.Snapshot().SwitcherVisible)
	m.HideSwitcher()
	assert.False(t, m.Snapshot().SwitcherVisible)
}

func TestSnapshotIsCopy(t *testing.T) {
	m, _, _ := newTestManager(t)

	snap := m.Snapshot()
	snap.Tabs[0].URL = "mutated"
	assert.Equal(t, DefaultHomepage, m.Active().URL)
}
