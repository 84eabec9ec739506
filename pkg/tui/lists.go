package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/entrhq/thazh/pkg/bookmarks"
	"github.com/entrhq/thazh/pkg/history"
)

// entry is what both panels list: something with an id that opens a URL.
type entry interface {
	list.DefaultItem
	id() string
	url() string
}

type bookmarkItem struct {
	b        bookmarks.Bookmark
	selected bool
}

func (i bookmarkItem) Title() string {
	if i.selected {
		return "✓ " + i.b.Title
	}
	return i.b.Title
}

func (i bookmarkItem) Description() string {
	return i.b.URL + " · " + relativeTime(i.b.Added())
}

func (i bookmarkItem) FilterValue() string { return i.b.Title + " " + i.b.URL }
func (i bookmarkItem) id() string          { return i.b.ID }
func (i bookmarkItem) url() string         { return i.b.URL }

type historyItem struct {
	h history.Item
}

func (i historyItem) Title() string { return i.h.Title }

func (i historyItem) Description() string {
	visits := "1 visit"
	if i.h.VisitCount != 1 {
		visits = fmt.Sprintf("%d visits", i.h.VisitCount)
	}
	return fmt.Sprintf("%s · %s · %s", i.h.URL, visits, relativeTime(i.h.Visited()))
}

func (i historyItem) FilterValue() string { return i.h.Title + " " + i.h.URL }
func (i historyItem) id() string          { return i.h.ID }
func (i historyItem) url() string         { return i.h.URL }

func newItemDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(salmonPink).
		BorderForeground(salmonPink)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(mutedGray).
		BorderForeground(salmonPink)

	return d
}

// openList fills the list panel and shows it.
func (m *model) openList(kind panelKind, title string, items []list.Item) {
	m.panel = kind
	m.list.Title = title
	m.list.SetItems(items)
	m.list.SetSize(m.width-4, max(m.height-8, 5))
	if m.list.Index() >= len(items) {
		m.list.Select(max(len(items)-1, 0))
	}
}

func bookmarkItems(bs []bookmarks.Bookmark, selected map[string]bool) []list.Item {
	items := make([]list.Item, len(bs))
	for i, b := range bs {
		items[i] = bookmarkItem{b: b, selected: selected[b.ID]}
	}
	return items
}

// toggleSelected marks or unmarks the highlighted bookmark for deletion.
func (m *model) toggleSelected() {
	item, ok := m.list.SelectedItem().(bookmarkItem)
	if !ok {
		return
	}
	if m.selected[item.b.ID] {
		delete(m.selected, item.b.ID)
	} else {
		m.selected[item.b.ID] = true
	}
	item.selected = m.selected[item.b.ID]
	m.list.SetItem(m.list.Index(), item)
	m.list.Title = m.bookmarksTitle(len(m.list.Items()))
}

// selectedIDs returns the marked bookmarks in list order.
func (m *model) selectedIDs() []string {
	var ids []string
	for _, it := range m.list.Items() {
		if b, ok := it.(bookmarkItem); ok && b.selected {
			ids = append(ids, b.b.ID)
		}
	}
	return ids
}

// pruneSelection drops marks on bookmarks that are no longer listed.
func (m *model) pruneSelection(bs []bookmarks.Bookmark) {
	listed := make(map[string]bool, len(bs))
	for _, b := range bs {
		listed[b.ID] = true
	}
	for id := range m.selected {
		if !listed[id] {
			delete(m.selected, id)
		}
	}
}

func (m *model) bookmarksTitle(n int) string {
	title := fmt.Sprintf("★ Bookmarks (%d)", n)
	if m.bookmarkQuery != "" {
		title = fmt.Sprintf("★ Bookmarks matching %q (%d)", m.bookmarkQuery, n)
	}
	if len(m.selected) > 0 {
		title += fmt.Sprintf(" · %d selected", len(m.selected))
	}
	return title
}

func historyItems(hs []history.Item) []list.Item {
	items := make([]list.Item, len(hs))
	for i, h := range hs {
		items[i] = historyItem{h: h}
	}
	return items
}

// selectedEntry returns the highlighted list entry, if any.
func (m *model) selectedEntry() (entry, bool) {
	e, ok := m.list.SelectedItem().(entry)
	return e, ok
}

// relativeTime renders t the way the history panel shows visit times.
func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("Jan 2, 2006")
}
