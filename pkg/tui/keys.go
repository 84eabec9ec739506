package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Address      key.Binding
	Navigate     key.Binding
	Cancel       key.Binding
	NewTab       key.Binding
	CloseTab     key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	Switcher     key.Binding
	Back         key.Binding
	Forward      key.Binding
	Reload       key.Binding
	Bookmark     key.Binding
	Desktop      key.Binding
	Share        key.Binding
	Bookmarks    key.Binding
	History      key.Binding
	ClearHistory key.Binding
	Settings     key.Binding
	Quit         key.Binding

	// Inside panels
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Open   key.Binding
	Delete key.Binding
	Select key.Binding
	Filter key.Binding
	Yes    key.Binding
	No     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Address:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "address")),
		Navigate:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go")),
		Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NewTab:       key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "new tab")),
		CloseTab:     key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "close tab")),
		NextTab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tab")),
		Switcher:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "tabs")),
		Back:         key.NewBinding(key.WithKeys("alt+left"), key.WithHelp("alt+←", "back")),
		Forward:      key.NewBinding(key.WithKeys("alt+right"), key.WithHelp("alt+→", "forward")),
		Reload:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Bookmark:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "bookmark")),
		Desktop:      key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "desktop mode")),
		Share:        key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "share")),
		Bookmarks:    key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bookmarks")),
		History:      key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "history")),
		ClearHistory: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear history")),
		Settings:     key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "settings")),
		Quit:         key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Left:   key.NewBinding(key.WithKeys("left", "h")),
		Right:  key.NewBinding(key.WithKeys("right", "l")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Delete: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Select: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Yes:    key.NewBinding(key.WithKeys("y", "Y")),
		No:     key.NewBinding(key.WithKeys("n", "N", "esc")),
	}
}

// browseHelp lists the bindings shown in the bottom bar.
func (k keyMap) browseHelp() []key.Binding {
	return []key.Binding{k.Address, k.NewTab, k.CloseTab, k.Switcher, k.Back, k.Forward,
		k.Bookmark, k.Bookmarks, k.History, k.Desktop, k.Share, k.Settings, k.Quit}
}
