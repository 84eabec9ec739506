package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/thazh/pkg/session"
)

const switcherColumns = 2

// View renders the entire TUI interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	sections := []string{
		m.buildHeader(),
		m.buildTabStrip(),
		m.buildAddressBar(),
		m.buildProgress(),
		m.buildBody(),
		m.buildToast(),
		m.buildBottomBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// buildHeader renders the title line with mode badges
func (m *model) buildHeader() string {
	header := headerStyle.Render("◆ thazh")
	if m.snap.DesktopMode {
		header += "  " + badgeStyle.Render("DESKTOP")
	}
	return header
}

// buildTabStrip renders one label per tab, the active one highlighted
func (m *model) buildTabStrip() string {
	const maxLabel = 18
	labels := make([]string, 0, len(m.snap.Tabs))
	for _, t := range m.snap.Tabs {
		label := truncate(tabLabel(t), maxLabel)
		if t.ID == m.snap.ActiveID {
			labels = append(labels, activeTabStyle.Render(label))
		} else {
			labels = append(labels, inactiveTabStyle.Render(label))
		}
	}
	strip := lipgloss.JoinHorizontal(lipgloss.Top, labels...)
	if lipgloss.Width(strip) > m.width {
		strip = tipsStyle.Render(truncate(tabLabel(m.snap.Active()), maxLabel)) +
			tipsStyle.Render("  ("+strconv.Itoa(len(m.snap.Tabs))+" tabs, ctrl+o to browse)")
	}
	return strip
}

// buildAddressBar renders the address input with navigation affordances
func (m *model) buildAddressBar() string {
	tab := m.snap.Active()
	nav := tipsStyle.Render("◀ ")
	if tab.CanGoBack {
		nav = titleStyle.Render("◀ ")
	}
	if tab.CanGoForward {
		nav += titleStyle.Render("▶")
	} else {
		nav += tipsStyle.Render("▶")
	}

	star := tipsStyle.Render("☆")
	if m.bookmarked {
		star = headerStyle.Render("★")
	}

	return inputBoxStyle.Width(m.width - 4).Render(nav + " " + m.address.View() + " " + star)
}

// buildProgress renders the load progress bar while the active tab loads
func (m *model) buildProgress() string {
	if !m.snap.Loading {
		return ""
	}
	return "  " + m.progress.ViewAs(m.snap.Progress)
}

// buildBody renders the open panel, or the page summary
func (m *model) buildBody() string {
	if m.confirm != nil {
		return m.buildConfirm()
	}
	switch m.panel {
	case panelSwitcher:
		return m.buildSwitcher()
	case panelSettings:
		return m.buildSettings()
	case panelBookmarks:
		parts := []string{m.list.View()}
		if m.filter.Focused() || m.bookmarkQuery != "" {
			parts = append([]string{m.filter.View()}, parts...)
		}
		parts = append(parts, overlayHelpStyle.Render("/ filter • space select • x remove • ctrl+x delete all • enter open • esc close"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	case panelHistory:
		help := overlayHelpStyle.Render("enter open • x remove • ctrl+x clear all • esc close")
		return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), help)
	}
	return m.buildPage()
}

func (m *model) buildPage() string {
	tab := m.snap.Active()
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(tabLabel(tab)),
		urlStyle.Render(tab.URL),
	)
	return pageBoxStyle.Width(m.width - 4).Render(content)
}

// buildSwitcher renders the tab switcher as a grid of cards
func (m *model) buildSwitcher() string {
	cardWidth := max((m.width-6)/switcherColumns-2, 16)

	var rows []string
	var row []string
	for i, t := range m.snap.Tabs {
		style := cardStyle
		if i == m.switcherIdx {
			style = selectedCardStyle
		}
		title := truncate(tabLabel(t), cardWidth-2)
		if t.ID == m.snap.ActiveID {
			title = headerStyle.Render("● ") + title
		}
		card := style.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			urlStyle.Render(truncate(t.URL, cardWidth-2)),
		))
		row = append(row, card)
		if len(row) == switcherColumns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	title := overlayTitleStyle.Render("Tabs (" + strconv.Itoa(len(m.snap.Tabs)) + ")")
	help := overlayHelpStyle.Render("arrows move • enter switch • x close • ctrl+t new • esc back")
	return lipgloss.JoinVertical(lipgloss.Left, append(append([]string{title}, rows...), help)...)
}

func (m *model) buildConfirm() string {
	return confirmBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(m.confirm.question),
		"",
		tipsStyle.Render("y confirm • n cancel"),
	))
}

// buildToast renders the current notification until it expires
func (m *model) buildToast() string {
	if m.toast == nil || time.Now().After(m.toast.showUntil) {
		return ""
	}
	if m.toast.isError {
		return errorStyle.Render("  ✗ " + m.toast.message)
	}
	return successStyle.Render("  ✓ " + m.toast.message)
}

// buildBottomBar renders the key hints
func (m *model) buildBottomBar() string {
	hints := make([]string, 0, len(m.keys.browseHelp()))
	for _, b := range m.keys.browseHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return statusBarStyle.Width(m.width).Render(truncate(strings.Join(hints, " • "), max(m.width-2, 1)))
}

// tabLabel is the text shown for a tab: its title, or its URL before the
// page has reported one.
func tabLabel(t session.Tab) string {
	if t.Title != "" {
		return t.Title
	}
	return t.URL
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
