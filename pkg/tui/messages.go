package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/thazh/pkg/bookmarks"
	"github.com/entrhq/thazh/pkg/history"
)

// sessionChangedMsg signals that the session state changed
type sessionChangedMsg struct{}

// bookmarkStatusMsg reports whether url is bookmarked
type bookmarkStatusMsg struct {
	url        string
	bookmarked bool
}

// bookmarksLoadedMsg carries the bookmarks matching query for the panel
type bookmarksLoadedMsg struct {
	query string
	items []bookmarks.Bookmark
}

// historyLoadedMsg carries the history list for the panel
type historyLoadedMsg struct {
	items []history.Item
}

// resultMsg reports the outcome of an action
type resultMsg struct {
	message string
	err     error
	// then runs after the toast is shown, e.g. to reload a panel
	then tea.Cmd
}

// waitForChange turns the next session change notification into a message.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return sessionChangedMsg{}
	}
}

func (m *model) checkBookmarked() tea.Cmd {
	url := m.snap.Active().URL
	return func() tea.Msg {
		return bookmarkStatusMsg{url: url, bookmarked: m.deps.Bookmarks.IsBookmarked(m.ctx, url)}
	}
}

// loadBookmarks fetches the bookmarks matching the panel's current filter.
func (m *model) loadBookmarks() tea.Cmd {
	query := m.bookmarkQuery
	return func() tea.Msg {
		return bookmarksLoadedMsg{query: query, items: m.deps.Bookmarks.Search(m.ctx, query)}
	}
}

func (m *model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{items: m.deps.History.List(m.ctx)}
	}
}

// sessionOp runs fn off the UI goroutine. The session's own change
// notification refreshes the view; only failures are reported.
func (m *model) sessionOp(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			m.deps.Log.Errorf("%s failed: %v", action, err)
			return resultMsg{err: fmt.Errorf("%s: %w", action, err)}
		}
		return nil
	}
}

func (m *model) addBookmark() tea.Cmd {
	tab := m.snap.Active()
	return func() tea.Msg {
		_, err := m.deps.Bookmarks.Add(m.ctx, tab.URL, tab.Title)
		switch {
		case errors.Is(err, bookmarks.ErrDuplicate):
			return resultMsg{message: "Already bookmarked", then: m.checkBookmarked()}
		case err != nil:
			return resultMsg{err: fmt.Errorf("could not save bookmark: %w", err)}
		}
		return resultMsg{message: "Bookmark added", then: m.checkBookmarked()}
	}
}

// deleteBookmarks removes ids, stopping at the first failure.
func (m *model) deleteBookmarks(ids []string) tea.Cmd {
	return func() tea.Msg {
		for i, id := range ids {
			if err := m.deps.Bookmarks.Delete(m.ctx, id); err != nil {
				return resultMsg{
					err:  fmt.Errorf("could not delete bookmark (%d of %d removed): %w", i, len(ids), err),
					then: m.loadBookmarks(),
				}
			}
		}
		message := "Bookmark removed"
		if len(ids) > 1 {
			message = fmt.Sprintf("%d bookmarks removed", len(ids))
		}
		return resultMsg{message: message, then: tea.Batch(m.loadBookmarks(), m.checkBookmarked())}
	}
}

func (m *model) clearBookmarks() tea.Cmd {
	var reload tea.Cmd
	if m.panel == panelBookmarks {
		reload = m.loadBookmarks()
	}
	return func() tea.Msg {
		if err := m.deps.Bookmarks.ClearAll(m.ctx); err != nil {
			return resultMsg{err: fmt.Errorf("could not clear bookmarks: %w", err)}
		}
		return resultMsg{message: "All bookmarks deleted", then: tea.Batch(reload, m.checkBookmarked())}
	}
}

func (m *model) deleteHistoryItem(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.History.DeleteItem(m.ctx, id); err != nil {
			return resultMsg{err: fmt.Errorf("could not delete history entry: %w", err)}
		}
		return resultMsg{message: "History entry removed", then: m.loadHistory()}
	}
}

func (m *model) clearHistory() tea.Cmd {
	var reload tea.Cmd
	if m.panel == panelHistory {
		reload = m.loadHistory()
	}
	return func() tea.Msg {
		if err := m.deps.History.Clear(m.ctx); err != nil {
			return resultMsg{err: fmt.Errorf("could not clear history: %w", err)}
		}
		return resultMsg{message: "History cleared", then: reload}
	}
}

func (m *model) share() tea.Cmd {
	tab := m.snap.Active()
	return func() tea.Msg {
		text := tab.URL
		if tab.Title != "" && !strings.EqualFold(tab.Title, tab.URL) {
			text = tab.Title + "\n" + tab.URL
		}
		if err := m.deps.Clipboard(text); err != nil {
			return resultMsg{err: fmt.Errorf("could not copy link: %w", err)}
		}
		return resultMsg{message: "Link copied to clipboard"}
	}
}

func (m *model) toggleSetting(name, label string) tea.Cmd {
	return func() tea.Msg {
		s, err := m.deps.Settings.Toggle(m.ctx, name)
		if err != nil {
			return resultMsg{err: fmt.Errorf("could not change %s: %w", strings.ToLower(label), err)}
		}
		m.settingsChanged()
		state := "off"
		if on, _ := s.Get(name); on {
			state = "on"
		}
		return resultMsg{message: label + " " + state}
	}
}

func (m *model) resetSettings() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.deps.Settings.Reset(m.ctx); err != nil {
			return resultMsg{err: fmt.Errorf("could not reset settings: %w", err)}
		}
		m.settingsChanged()
		return resultMsg{message: "Settings restored to defaults"}
	}
}

func (m *model) settingsChanged() {
	if m.deps.OnSettingsChange != nil {
		m.deps.OnSettingsChange()
	}
}
