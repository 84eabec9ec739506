package session

// Tab is one browsing context as seen by the chrome. CanGoBack and
// CanGoForward mirror the surface and are advisory.
type Tab struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	CanGoBack    bool   `json:"canGoBack"`
	CanGoForward bool   `json:"canGoForward"`
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Tabs            []Tab
	ActiveID        string
	DesktopMode     bool
	Loading         bool
	Progress        float64
	SwitcherVisible bool
}

// Active returns the active tab of the snapshot.
func (s Snapshot) Active() Tab {
	for _, t := range s.Tabs {
		if t.ID == s.ActiveID {
			return t
		}
	}
	return Tab{}
}

// ActiveIndex returns the position of the active tab, or -1.
func (s Snapshot) ActiveIndex() int {
	for i, t := range s.Tabs {
		if t.ID == s.ActiveID {
			return i
		}
	}
	return -1
}
