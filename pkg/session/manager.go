package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/thazh/pkg/logging"
	"github.com/google/uuid"
)

// Titles given to tabs before their page reports one.
const (
	InitialTitle = "Thazh Search"
	NewTabTitle  = "New Tab"
)

// DefaultReloadDelay separates a user-agent change from the reload that
// makes it visible.
const DefaultReloadDelay = 100 * time.Millisecond

var (
	// ErrTabNotFound is returned when an operation names an unknown tab id.
	ErrTabNotFound = errors.New("session: tab not found")

	// ErrClosed is returned by operations on a closed Manager.
	ErrClosed = errors.New("session: manager closed")
)

// Manager owns the tab list and drives the surface behind each tab.
type Manager struct {
	mu sync.Mutex

	factory      Factory
	recorder     Recorder
	log          *logging.Logger
	homepage     string
	searchEngine string
	reloadDelay  time.Duration
	desktopUA    string
	newID        func() string

	tabs            []*Tab
	surfaces        map[string]Surface
	activeID        string
	desktopMode     bool
	loading         bool
	progress        float64
	switcherVisible bool

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	timers  map[*time.Timer]struct{}
	changes chan struct{}
	closed  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder sets the sink for committed navigations.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithHomepage sets the URL new tabs open and blank input resolves to.
func WithHomepage(url string) Option {
	return func(m *Manager) {
		m.homepage = url
	}
}

// WithSearchEngine sets the engine queries are sent to.
func WithSearchEngine(url string) Option {
	return func(m *Manager) {
		m.searchEngine = url
	}
}

// WithReloadDelay sets the pause between a desktop-mode change and the reload.
func WithReloadDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.reloadDelay = d
	}
}

// WithDesktopMode sets the initial desktop-mode flag.
func WithDesktopMode(on bool) Option {
	return func(m *Manager) {
		m.desktopMode = on
	}
}

// WithIDGenerator overrides the tab id generator.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		m.newID = gen
	}
}

// NewManager creates a manager with a single tab open on the homepage.
// ctx bounds the lifetime of every surface the manager creates.
func NewManager(ctx context.Context, factory Factory, opts ...Option) (*Manager, error) {
	m := &Manager{
		factory:      factory,
		log:          logging.Discard("session"),
		homepage:     DefaultHomepage,
		searchEngine: DefaultSearchEngine,
		reloadDelay:  DefaultReloadDelay,
		desktopUA:    DesktopUserAgent,
		newID:        uuid.NewString,
		surfaces:     make(map[string]Surface),
		timers:       make(map[*time.Timer]struct{}),
		changes:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.mu.Lock()
	_, err := m.openTab(InitialTitle)
	m.mu.Unlock()
	if err != nil {
		m.cancel()
		return nil, fmt.Errorf("open initial tab: %w", err)
	}
	return m, nil
}

// Changes delivers a signal after any state change. Signals coalesce, so
// a receiver should read a fresh Snapshot on each one.
func (m *Manager) Changes() <-chan struct{} {
	return m.changes
}

func (m *Manager) notify() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// userAgent returns the string surfaces should send. Must hold mu.
func (m *Manager) userAgent() string {
	if m.desktopMode {
		return m.desktopUA
	}
	return ""
}

// openTab creates a tab and its surface, appends it and activates it.
// Must hold mu.
func (m *Manager) openTab(title string) (Tab, error) {
	id := m.newID()
	surface, err := m.factory.NewSurface(m.ctx, id, m.userAgent())
	if err != nil {
		return Tab{}, fmt.Errorf("create surface: %w", err)
	}

	tab := &Tab{ID: id, URL: m.homepage, Title: title}
	m.tabs = append(m.tabs, tab)
	m.surfaces[id] = surface
	m.activeID = id
	m.switcherVisible = false
	m.loading = false
	m.progress = 0

	m.wg.Add(1)
	go m.pump(id, surface)

	if err := surface.Load(tab.URL); err != nil {
		m.log.Warnf("Initial load of tab %s failed: %v", id, err)
	}
	m.log.Debugf("Opened tab %s (%d open)", id, len(m.tabs))
	return *tab, nil
}

// pump forwards one surface's events until the surface closes its channel
// or the manager shuts down.
func (m *Manager) pump(id string, s Surface) {
	defer m.wg.Done()
	events := s.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.HandleEvent(id, ev)
		case <-m.ctx.Done():
			return
		}
	}
}

// HandleEvent applies ev to the tab with tabID. Events for tabs that no
// longer exist are dropped.
func (m *Manager) HandleEvent(tabID string, ev Event) {
	m.mu.Lock()
	tab := m.find(tabID)
	if tab == nil || m.closed {
		m.mu.Unlock()
		return
	}
	active := tabID == m.activeID

	var visit *NavigationStateChanged
	switch e := ev.(type) {
	case LoadStart:
		if active {
			m.loading = true
			m.progress = 0
		}
	case Progress:
		if active {
			m.progress = min(max(e.Value, 0), 1)
		}
	case LoadEnd:
		if active {
			m.loading = false
			m.progress = 1
		}
	case NavigationStateChanged:
		tab.URL = e.URL
		if e.Title != "" {
			tab.Title = e.Title
		}
		tab.CanGoBack = e.CanGoBack
		tab.CanGoForward = e.CanGoForward
		visit = &NavigationStateChanged{URL: tab.URL, Title: tab.Title}
	case LoadError:
		m.log.Warnf("Tab %s failed to load %s: %v", tabID, e.URL, e.Err)
		if active {
			m.loading = false
		}
	}
	m.mu.Unlock()
	m.notify()

	if visit != nil && m.recorder != nil {
		m.recorder.Record(m.ctx, visit.URL, visit.Title)
	}
}

// find returns the tab with id or nil. Must hold mu.
func (m *Manager) find(id string) *Tab {
	for _, t := range m.tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// active returns the active tab and its surface. Must hold mu.
func (m *Manager) active() (*Tab, Surface) {
	return m.find(m.activeID), m.surfaces[m.activeID]
}

// Create opens a new tab on the homepage and activates it.
func (m *Manager) Create() (Tab, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Tab{}, ErrClosed
	}
	tab, err := m.openTab(NewTabTitle)
	m.mu.Unlock()
	if err != nil {
		return Tab{}, fmt.Errorf("create tab: %w", err)
	}
	m.notify()
	return tab, nil
}

// Navigate resolves input and loads it in the active tab. The tab's URL is
// updated immediately; the surface reports the committed location later.
func (m *Manager) Navigate(input string) (string, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrClosed
	}
	dest := m.homepage
	if strings.TrimSpace(input) != "" {
		dest = Resolve(input, m.searchEngine)
	}
	tab, surface := m.active()
	tab.URL = dest
	m.mu.Unlock()
	m.notify()

	if err := surface.Load(dest); err != nil {
		return dest, fmt.Errorf("navigate to %s: %w", dest, err)
	}
	return dest, nil
}

// Switch activates the tab with id and hides the switcher.
func (m *Manager) Switch(id string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.find(id) == nil {
		m.mu.Unlock()
		return fmt.Errorf("switch to %q: %w", id, ErrTabNotFound)
	}
	if id != m.activeID {
		m.loading = false
		m.progress = 0
	}
	m.activeID = id
	m.switcherVisible = false
	m.mu.Unlock()
	m.notify()
	return nil
}

// Close removes the tab with id and releases its surface. Closing the
// active tab activates its right neighbour, or its left one when it was
// last. Closing the only tab opens a fresh one first.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.find(id) == nil {
		m.mu.Unlock()
		return fmt.Errorf("close %q: %w", id, ErrTabNotFound)
	}

	if len(m.tabs) == 1 {
		if _, err := m.openTab(NewTabTitle); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("close %q: replace last tab: %w", id, err)
		}
	}

	idx := slices.IndexFunc(m.tabs, func(t *Tab) bool { return t.ID == id })
	m.tabs = slices.Delete(m.tabs, idx, idx+1)
	if m.activeID == id {
		next := idx
		if next >= len(m.tabs) {
			next = len(m.tabs) - 1
		}
		m.activeID = m.tabs[next].ID
		m.loading = false
		m.progress = 0
	}
	surface := m.surfaces[id]
	delete(m.surfaces, id)
	remaining := len(m.tabs)
	m.mu.Unlock()
	m.notify()

	m.log.Debugf("Closed tab %s (%d open)", id, remaining)
	if err := surface.Close(); err != nil {
		return fmt.Errorf("close %q: release surface: %w", id, err)
	}
	return nil
}

// ToggleDesktopMode flips desktop mode, applies the matching user agent to
// every tab, and reloads the active tab after the reload delay. It returns
// the new mode.
func (m *Manager) ToggleDesktopMode() (bool, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false, ErrClosed
	}
	m.desktopMode = !m.desktopMode
	on := m.desktopMode
	ua := m.userAgent()
	surfaces := make([]Surface, 0, len(m.tabs))
	for _, t := range m.tabs {
		surfaces = append(surfaces, m.surfaces[t.ID])
	}

	var timer *time.Timer
	m.wg.Add(1)
	timer = time.AfterFunc(m.reloadDelay, func() {
		defer m.wg.Done()
		m.mu.Lock()
		delete(m.timers, timer)
		closed := m.closed
		m.mu.Unlock()
		if closed {
			return
		}
		if err := m.Reload(); err != nil {
			m.log.Warnf("Reload after desktop mode change failed: %v", err)
		}
	})
	m.timers[timer] = struct{}{}
	m.mu.Unlock()
	m.notify()

	var errs []error
	for _, s := range surfaces {
		if err := s.SetUserAgent(ua); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return on, fmt.Errorf("apply user agent: %w", err)
	}
	return on, nil
}

// Back steps the active tab back. It does nothing when the tab has no
// back history.
func (m *Manager) Back() error {
	m.mu.Lock()
	tab, surface := m.active()
	can := tab != nil && tab.CanGoBack && !m.closed
	m.mu.Unlock()
	if !can {
		return nil
	}
	return surface.GoBack()
}

// Forward steps the active tab forward. It does nothing when the tab has
// no forward history.
func (m *Manager) Forward() error {
	m.mu.Lock()
	tab, surface := m.active()
	can := tab != nil && tab.CanGoForward && !m.closed
	m.mu.Unlock()
	if !can {
		return nil
	}
	return surface.GoForward()
}

// Reload reloads the active tab.
func (m *Manager) Reload() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	_, surface := m.active()
	m.mu.Unlock()
	return surface.Reload()
}

// ShowSwitcher makes the tab switcher visible.
func (m *Manager) ShowSwitcher() {
	m.setSwitcher(true)
}

// HideSwitcher hides the tab switcher.
func (m *Manager) HideSwitcher() {
	m.setSwitcher(false)
}

func (m *Manager) setSwitcher(visible bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.switcherVisible = visible
	m.mu.Unlock()
	m.notify()
}

// Tabs returns a copy of the tab list in display order.
func (m *Manager) Tabs() []Tab {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyTabs()
}

func (m *Manager) copyTabs() []Tab {
	out := make([]Tab, len(m.tabs))
	for i, t := range m.tabs {
		out[i] = *t
	}
	return out
}

// Active returns a copy of the active tab.
func (m *Manager) Active() Tab {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.find(m.activeID); t != nil {
		return *t
	}
	return Tab{}
}

// DesktopMode reports whether desktop mode is on.
func (m *Manager) DesktopMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.desktopMode
}

// Snapshot returns a consistent copy of the session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Tabs:            m.copyTabs(),
		ActiveID:        m.activeID,
		DesktopMode:     m.desktopMode,
		Loading:         m.loading,
		Progress:        m.progress,
		SwitcherVisible: m.switcherVisible,
	}
}

// Shutdown releases every surface and waits for the event pumps and any
// pending reload to finish. Safe to call multiple times.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for t := range m.timers {
		if t.Stop() {
			m.wg.Done()
		}
	}
	clear(m.timers)
	surfaces := make([]Surface, 0, len(m.surfaces))
	for _, t := range m.tabs {
		surfaces = append(surfaces, m.surfaces[t.ID])
	}
	clear(m.surfaces)
	m.mu.Unlock()

	m.cancel()
	var errs []error
	for _, s := range surfaces {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.wg.Wait()
	return errors.Join(errs...)
}
