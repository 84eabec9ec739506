package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all state updates for the TUI model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.address.Width = max(msg.Width-10, 10)
		m.progress.Width = max(msg.Width-4, 10)
		m.list.SetSize(msg.Width-4, max(msg.Height-8, 5))
		return m, nil

	case sessionChangedMsg:
		m.refresh()
		return m, tea.Batch(waitForChange(m.deps.Session.Changes()), m.checkBookmarked())

	case bookmarkStatusMsg:
		if msg.url == m.snap.Active().URL {
			m.bookmarked = msg.bookmarked
		}
		return m, nil

	case bookmarksLoadedMsg:
		if msg.query != m.bookmarkQuery {
			// Superseded by a newer filter
			return m, nil
		}
		m.pruneSelection(msg.items)
		m.openList(panelBookmarks, m.bookmarksTitle(len(msg.items)), bookmarkItems(msg.items, m.selected))
		return m, nil

	case historyLoadedMsg:
		m.openList(panelHistory, fmt.Sprintf("⟲ History (%d)", len(msg.items)), historyItems(msg.items))
		return m, nil

	case resultMsg:
		if msg.err != nil {
			m.showToast(msg.err.Error(), true)
		} else if msg.message != "" {
			m.showToast(msg.message, false)
		}
		return m, msg.then

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}

	switch m.panel {
	case panelSwitcher:
		return m.handleSwitcherKey(msg)
	case panelSettings:
		return m.handleSettingsKey(msg)
	case panelBookmarks:
		if m.filter.Focused() {
			return m.handleFilterKey(msg)
		}
		return m.handleListKey(msg)
	case panelHistory:
		return m.handleListKey(msg)
	}

	if m.address.Focused() {
		return m.handleAddressKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m *model) handleAddressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Navigate):
		input := m.address.Value()
		m.address.Blur()
		return m, m.sessionOp("navigate", func() error {
			_, err := m.deps.Session.Navigate(input)
			return err
		})
	case key.Matches(msg, m.keys.Cancel):
		m.address.Blur()
		m.address.SetValue(m.snap.Active().URL)
		return m, nil
	}

	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

//nolint:gocyclo
func (m *model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.deps.Session
	switch {
	case key.Matches(msg, m.keys.Address):
		m.address.SetValue(m.snap.Active().URL)
		m.address.CursorEnd()
		return m, m.address.Focus()

	case key.Matches(msg, m.keys.NewTab):
		return m, m.sessionOp("new tab", func() error {
			_, err := s.Create()
			return err
		})

	case key.Matches(msg, m.keys.CloseTab):
		id := m.snap.ActiveID
		return m, m.sessionOp("close tab", func() error { return s.Close(id) })

	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
		n := len(m.snap.Tabs)
		if n < 2 {
			return m, nil
		}
		step := 1
		if key.Matches(msg, m.keys.PrevTab) {
			step = n - 1
		}
		id := m.snap.Tabs[(m.snap.ActiveIndex()+step)%n].ID
		return m, m.sessionOp("switch tab", func() error { return s.Switch(id) })

	case key.Matches(msg, m.keys.Switcher):
		s.ShowSwitcher()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Back):
		return m, m.sessionOp("back", s.Back)

	case key.Matches(msg, m.keys.Forward):
		return m, m.sessionOp("forward", s.Forward)

	case key.Matches(msg, m.keys.Reload):
		return m, m.sessionOp("reload", s.Reload)

	case key.Matches(msg, m.keys.Bookmark):
		return m, m.addBookmark()

	case key.Matches(msg, m.keys.Desktop):
		on, err := s.ToggleDesktopMode()
		if err != nil {
			m.showToast(err.Error(), true)
			return m, nil
		}
		if on {
			m.showToast("Desktop mode on", false)
		} else {
			m.showToast("Desktop mode off", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Share):
		return m, m.share()

	case key.Matches(msg, m.keys.Bookmarks):
		m.bookmarkQuery = ""
		m.filter.SetValue("")
		clear(m.selected)
		return m, m.loadBookmarks()

	case key.Matches(msg, m.keys.Settings):
		m.openSettings()
		return m, nil

	case key.Matches(msg, m.keys.History):
		return m, m.loadHistory()

	case key.Matches(msg, m.keys.ClearHistory):
		m.confirm = &confirmation{
			question: "Clear all browsing history?",
			onYes:    m.clearHistory(),
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleSwitcherKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.deps.Session
	n := len(m.snap.Tabs)
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Switcher):
		s.HideSwitcher()
		m.refresh()
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		step := 1
		if key.Matches(msg, m.keys.Up) {
			step = switcherColumns
		}
		m.switcherIdx = max(m.switcherIdx-step, 0)
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		step := 1
		if key.Matches(msg, m.keys.Down) {
			step = switcherColumns
		}
		m.switcherIdx = min(m.switcherIdx+step, n-1)
	case key.Matches(msg, m.keys.Open):
		id := m.snap.Tabs[m.switcherIdx].ID
		if err := s.Switch(id); err != nil {
			m.showToast(err.Error(), true)
		}
		m.refresh()
	case key.Matches(msg, m.keys.Delete), key.Matches(msg, m.keys.CloseTab):
		id := m.snap.Tabs[m.switcherIdx].ID
		return m, m.sessionOp("close tab", func() error { return s.Close(id) })
	case key.Matches(msg, m.keys.NewTab):
		return m, m.sessionOp("new tab", func() error {
			_, err := s.Create()
			return err
		})
	}
	return m, nil
}

func (m *model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bookmarksPanel := m.panel == panelBookmarks
	switch {
	case key.Matches(msg, m.keys.Cancel):
		// Unwind the selection, then the filter, then the panel
		switch {
		case bookmarksPanel && len(m.selected) > 0:
			clear(m.selected)
			return m, m.loadBookmarks()
		case bookmarksPanel && m.bookmarkQuery != "":
			m.bookmarkQuery = ""
			m.filter.SetValue("")
			return m, m.loadBookmarks()
		}
		m.panel = panelNone
		return m, nil

	case key.Matches(msg, m.keys.Open):
		e, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		m.panel = panelNone
		url := e.url()
		return m, m.sessionOp("open", func() error {
			_, err := m.deps.Session.Navigate(url)
			return err
		})

	case key.Matches(msg, m.keys.Filter) && bookmarksPanel:
		return m, m.filter.Focus()

	case key.Matches(msg, m.keys.Select) && bookmarksPanel:
		m.toggleSelected()
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if bookmarksPanel {
			return m, m.confirmBookmarkDelete()
		}
		e, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		return m, m.deleteHistoryItem(e.id())

	case key.Matches(msg, m.keys.ClearHistory):
		if bookmarksPanel {
			m.confirm = &confirmation{question: "Delete all bookmarks?", onYes: m.clearBookmarks()}
		} else {
			m.confirm = &confirmation{question: "Clear all browsing history?", onYes: m.clearHistory()}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// confirmBookmarkDelete asks before deleting the marked bookmarks, or the
// highlighted one when none are marked.
func (m *model) confirmBookmarkDelete() tea.Cmd {
	ids := m.selectedIDs()
	question := fmt.Sprintf("Delete %d selected bookmarks?", len(ids))
	if len(ids) == 0 {
		e, ok := m.selectedEntry()
		if !ok {
			return nil
		}
		ids = []string{e.id()}
		question = fmt.Sprintf("Delete bookmark %q?", truncate(e.Title(), 40))
	}
	m.confirm = &confirmation{question: question, onYes: m.deleteBookmarks(ids)}
	return nil
}

// handleFilterKey edits the bookmarks filter, searching on every change.
func (m *model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Navigate):
		m.filter.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.filter.Blur()
		m.filter.SetValue("")
		m.bookmarkQuery = ""
		return m, m.loadBookmarks()
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if q := strings.TrimSpace(m.filter.Value()); q != m.bookmarkQuery {
		m.bookmarkQuery = q
		return m, tea.Batch(cmd, m.loadBookmarks())
	}
	return m, cmd
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		cmd := m.confirm.onYes
		m.confirm = nil
		return m, cmd
	case key.Matches(msg, m.keys.No):
		m.confirm = nil
	}
	return m, nil
}
