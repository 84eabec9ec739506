// Package session holds the in-memory model of the open tabs.
//
// A Manager owns an ordered list of tabs, the active-tab pointer and the
// global desktop-mode flag. Each tab is backed by a rendering Surface that
// runs outside the manager and reports what it is doing through a channel
// of Events. The manager drains every surface's channel on its own
// goroutine and applies events to the tab they came from.
//
// # Invariants
//
//   - There is always at least one tab. Closing the last tab opens a
//     replacement before the closed tab is removed.
//   - The active tab id always names a tab in the list.
//   - Tabs keep creation order; activation never reorders them.
//
// # Event policy
//
// Navigation-state events update the originating tab and are forwarded to
// the Recorder whether or not that tab is active. Loading and progress are
// a property of the visible chrome and only follow the active tab.
//
// # Example Usage
//
//	m, err := session.NewManager(ctx, engine,
//	    session.WithRecorder(historyStore),
//	)
//	if err != nil {
//	    return err
//	}
//	defer m.Shutdown()
//
//	m.Navigate("weather today") // searches
//	m.Navigate("go.dev")        // https://go.dev
//	tab, err := m.Create()
//	err = m.Close(tab.ID)
package session
