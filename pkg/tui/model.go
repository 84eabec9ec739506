// Package tui is the terminal chrome of the thazh browser: tab strip,
// address bar, load progress, tab switcher and the bookmarks and history
// panels.
package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/thazh/pkg/bookmarks"
	"github.com/entrhq/thazh/pkg/history"
	"github.com/entrhq/thazh/pkg/logging"
	"github.com/entrhq/thazh/pkg/session"
	"github.com/entrhq/thazh/pkg/settings"
)

// Deps are the components the chrome drives.
type Deps struct {
	Session   *session.Manager
	Bookmarks *bookmarks.Store
	History   *history.Store
	Settings  *settings.Store
	Log       *logging.Logger

	// OnSettingsChange runs after a setting is changed from the settings
	// panel, e.g. to push the new rendering policy to the engine.
	OnSettingsChange func()

	// Clipboard receives shared URLs. Defaults to the system clipboard.
	Clipboard func(string) error
}

type panelKind int

const (
	panelNone panelKind = iota
	panelSwitcher
	panelBookmarks
	panelHistory
	panelSettings
)

// model represents the state of the TUI application.
type model struct {
	ctx  context.Context
	deps Deps
	keys keyMap

	// Bubble Tea components
	address  textinput.Model
	filter   textinput.Model
	progress progress.Model
	list     list.Model

	// Session state as of the last change notification
	snap       session.Snapshot
	bookmarked bool

	// UI state
	panel       panelKind
	switcherIdx int
	settingsIdx int
	confirm     *confirmation
	toast       *toastNotification

	// Bookmarks panel: the active filter and the ids marked for deletion
	bookmarkQuery string
	selected      map[string]bool

	// Window dimensions
	width  int
	height int
	ready  bool
}

// confirmation is a pending yes/no question guarding a destructive action.
type confirmation struct {
	question string
	onYes    tea.Cmd
}

// toastNotification represents a temporary notification message
type toastNotification struct {
	message   string
	isError   bool
	showUntil time.Time
}

func newModel(ctx context.Context, deps Deps) *model {
	if deps.Log == nil {
		deps.Log = logging.Discard("tui")
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Placeholder = "Search or enter address"
	ti.Prompt = "› "
	ti.PromptStyle = headerStyle
	ti.CharLimit = 2048

	fi := textinput.New()
	fi.Placeholder = "Filter by title or URL"
	fi.Prompt = "/ "
	fi.PromptStyle = tipsStyle
	fi.CharLimit = 256

	bar := progress.New(
		progress.WithGradient(string(coralPink), string(salmonPink)),
		progress.WithoutPercentage(),
	)

	l := list.New(nil, newItemDelegate(), 0, 0)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = overlayTitleStyle.Padding(0, 1)

	m := &model{
		ctx:      ctx,
		deps:     deps,
		keys:     defaultKeyMap(),
		address:  ti,
		filter:   fi,
		progress: bar,
		list:     l,
		selected: make(map[string]bool),
	}
	m.refresh()
	return m
}

// Run starts the chrome and blocks until the user quits or ctx is done.
func Run(ctx context.Context, deps Deps) error {
	m := newModel(ctx, deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init starts listening for session changes.
func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForChange(m.deps.Session.Changes()),
		m.checkBookmarked(),
	)
}

// refresh copies the session state into the model.
func (m *model) refresh() {
	m.snap = m.deps.Session.Snapshot()

	if !m.address.Focused() {
		m.address.SetValue(m.snap.Active().URL)
	}

	switch {
	case m.snap.SwitcherVisible:
		if m.panel != panelSwitcher {
			m.switcherIdx = m.snap.ActiveIndex()
		}
		m.panel = panelSwitcher
	case m.panel == panelSwitcher:
		m.panel = panelNone
	}
	m.switcherIdx = min(max(m.switcherIdx, 0), len(m.snap.Tabs)-1)
}

// showToast displays a transient message under the page.
func (m *model) showToast(message string, isError bool) {
	m.toast = &toastNotification{
		message:   message,
		isError:   isError,
		showUntil: time.Now().Add(4 * time.Second),
	}
}
