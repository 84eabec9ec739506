package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/thazh/pkg/settings"
)

// settingToggles are the settings panel rows backed by a user setting.
var settingToggles = []struct {
	name  string
	label string
}{
	{settings.NameSaveHistory, "Save browsing history"},
	{settings.NameBlockPopups, "Block pop-ups"},
	{settings.NameEnableJavaScript, "Enable JavaScript"},
	{settings.NameClearCookiesOnExit, "Clear cookies on exit"},
	{settings.NameDesktopModeDefault, "Start in desktop mode"},
}

// settingActions are the destructive rows below the toggles. Each runs
// only after confirmation.
var settingActions = []struct {
	label    string
	question string
	run      func(*model) tea.Cmd
}{
	{"Clear browsing history", "Clear all browsing history?", (*model).clearHistory},
	{"Clear all bookmarks", "Delete all bookmarks?", (*model).clearBookmarks},
	{"Reset settings", "Restore all settings to their defaults?", (*model).resetSettings},
}

func (m *model) openSettings() {
	if m.deps.Settings == nil {
		m.showToast("Settings are unavailable", true)
		return
	}
	m.panel = panelSettings
	m.settingsIdx = 0
}

func (m *model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := len(settingToggles) + len(settingActions)
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Settings):
		m.panel = panelNone
	case key.Matches(msg, m.keys.Up):
		m.settingsIdx = max(m.settingsIdx-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.settingsIdx = min(m.settingsIdx+1, rows-1)
	case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Select):
		if m.settingsIdx < len(settingToggles) {
			t := settingToggles[m.settingsIdx]
			return m, m.toggleSetting(t.name, t.label)
		}
		a := settingActions[m.settingsIdx-len(settingToggles)]
		m.confirm = &confirmation{question: a.question, onYes: a.run(m)}
	}
	return m, nil
}

// buildSettings renders the toggles with their current values, then the
// data actions.
func (m *model) buildSettings() string {
	current := m.deps.Settings.Current()

	lines := []string{overlayTitleStyle.Render("Settings")}
	for i, t := range settingToggles {
		mark := tipsStyle.Render("[ ]")
		if on, _ := current.Get(t.name); on {
			mark = successStyle.Render("[✓]")
		}
		lines = append(lines, m.settingsLine(i, mark+" "+t.label))
	}
	lines = append(lines, "")
	for i, a := range settingActions {
		lines = append(lines, m.settingsLine(len(settingToggles)+i, errorStyle.Render(a.label)))
	}
	lines = append(lines, "", overlayHelpStyle.Render("↑/↓ move • enter toggle • esc close"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *model) settingsLine(idx int, text string) string {
	if idx == m.settingsIdx {
		return headerStyle.Render("› ") + text
	}
	return "  " + text
}
