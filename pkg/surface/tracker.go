package surface

import (
	"sync"

	"github.com/entrhq/thazh/pkg/session"
)

// tracker maps page signals for one tab onto session events and keeps the
// traversal log that back/forward availability is derived from.
type tracker struct {
	mu  sync.Mutex
	nav navLog

	emit  func(session.Event) bool
	title func() (string, error)
	async func(func())
}

// requestStarted reports a network request. Only main-frame navigations
// start a load.
func (t *tracker) requestStarted(navigation, mainFrame bool) {
	if navigation && mainFrame {
		t.emit(session.LoadStart{})
	}
}

func (t *tracker) contentLoaded() {
	t.emit(session.Progress{Value: 0.5})
}

// loaded ends the load and republishes the state, since the title is
// usually final only once the page has loaded.
func (t *tracker) loaded(url string) {
	t.emit(session.LoadEnd{})
	t.publish(url, false)
}

// navigated reports a committed frame navigation.
func (t *tracker) navigated(url string, mainFrame bool) {
	if mainFrame {
		t.publish(url, true)
	}
}

func (t *tracker) failed(url string, err error) {
	t.emit(session.LoadError{URL: url, Err: err})
}

// traverse reserves a back (-1) or forward (+1) step. It reports false
// when there is nowhere to go.
func (t *tracker) traverse(delta int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nav.traverse(delta)
}

func (t *tracker) cancelTraverse() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nav.cancel()
}

// publish emits a NavigationStateChanged for url, committing it to the
// traversal log first when commit is set. The title lookup is a driver
// round trip, so it runs through async.
func (t *tracker) publish(url string, commit bool) {
	t.mu.Lock()
	if commit {
		t.nav.commit(url)
	}
	back, forward := t.nav.canGoBack(), t.nav.canGoForward()
	t.mu.Unlock()

	t.async(func() {
		title, err := t.title()
		if err != nil {
			title = ""
		}
		t.emit(session.NavigationStateChanged{
			URL:          url,
			Title:        title,
			CanGoBack:    back,
			CanGoForward: forward,
		})
	})
}
