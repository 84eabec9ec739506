package surface

import (
	"fmt"
	"sync"

	"github.com/entrhq/thazh/pkg/logging"
	"github.com/entrhq/thazh/pkg/session"
	"github.com/playwright-community/playwright-go"
)

// Page is the session.Surface for one tab.
type Page struct {
	tabID   string
	context playwright.BrowserContext
	page    playwright.Page
	policy  func() Policy
	log     *logging.Logger
	onClose func()

	// persist stores or discards the context's cookies when the tab closes
	persist func(bctx playwright.BrowserContext, wipe bool)

	track *tracker

	mu      sync.Mutex
	jobs    sync.WaitGroup
	closing bool

	events    *emitter
	closeOnce sync.Once
	closeErr  error
}

var _ session.Surface = (*Page)(nil)

func newPage(tabID string, bctx playwright.BrowserContext, pg playwright.Page, policy func() Policy, log *logging.Logger) *Page {
	p := &Page{
		tabID:   tabID,
		context: bctx,
		page:    pg,
		policy:  policy,
		log:     log,
		events:  newEmitter(64),
	}
	p.track = &tracker{
		emit:  p.events.emit,
		title: pg.Title,
		async: p.run,
	}
	return p
}

// watch subscribes to the page events the chrome cares about.
func (p *Page) watch() {
	p.page.OnRequest(func(r playwright.Request) {
		p.track.requestStarted(r.IsNavigationRequest(), isMainFrame(r.Frame()))
	})
	p.page.OnDOMContentLoaded(func(playwright.Page) {
		p.track.contentLoaded()
	})
	p.page.OnLoad(func(pg playwright.Page) {
		p.track.loaded(pg.URL())
	})
	p.page.OnFrameNavigated(func(f playwright.Frame) {
		p.track.navigated(f.URL(), isMainFrame(f))
	})
	// Checked per popup so a policy change reaches open tabs
	p.context.OnPage(func(popup playwright.Page) {
		if popup == p.page || !p.policy().BlockPopups {
			return
		}
		p.log.Debugf("Blocked popup from tab %s", p.tabID)
		p.run(func() {
			_ = popup.Close()
		})
	})
}

func isMainFrame(f playwright.Frame) bool {
	return f != nil && f.ParentFrame() == nil
}

// run executes fn in the background, tracked so Close can wait for it.
func (p *Page) run(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closing {
		return
	}
	p.jobs.Add(1)
	go func() {
		defer p.jobs.Done()
		fn()
	}()
}

// navigate runs a blocking navigation in the background and reports failure.
func (p *Page) navigate(url string, fn func() error) {
	p.run(func() {
		if err := fn(); err != nil {
			p.track.failed(url, err)
		}
	})
}

// Load navigates to url.
func (p *Page) Load(url string) error {
	p.navigate(url, func() error {
		_, err := p.page.Goto(url)
		return err
	})
	return nil
}

// GoBack steps back in the tab's history.
func (p *Page) GoBack() error {
	return p.traverse(-1)
}

// GoForward steps forward in the tab's history.
func (p *Page) GoForward() error {
	return p.traverse(1)
}

func (p *Page) traverse(delta int) error {
	if !p.track.traverse(delta) {
		return nil
	}

	p.navigate(p.page.URL(), func() error {
		var err error
		if delta < 0 {
			_, err = p.page.GoBack()
		} else {
			_, err = p.page.GoForward()
		}
		if err != nil {
			p.track.cancelTraverse()
		}
		return err
	})
	return nil
}

// Reload reloads the current page.
func (p *Page) Reload() error {
	p.navigate(p.page.URL(), func() error {
		_, err := p.page.Reload()
		return err
	})
	return nil
}

// SetUserAgent sends ua with every request from this tab. An empty string
// restores the browser default.
func (p *Page) SetUserAgent(ua string) error {
	headers := map[string]string{}
	if ua != "" {
		headers["User-Agent"] = ua
	}
	if err := p.page.SetExtraHTTPHeaders(headers); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}
	return nil
}

// Events returns the tab's event stream.
func (p *Page) Events() <-chan session.Event {
	return p.events.ch
}

// Close releases the page and its context. Safe to call multiple times.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closing = true
		p.mu.Unlock()
		p.events.close()

		wipe := p.policy().ClearCookiesOnExit
		if wipe {
			if err := p.context.ClearCookies(); err != nil {
				p.log.Warnf("Failed to clear cookies for tab %s: %v", p.tabID, err)
			}
		}
		if p.persist != nil {
			p.persist(p.context, wipe)
		}
		_ = p.page.Close() // Ignore errors, continue cleanup
		if err := p.context.Close(); err != nil {
			p.closeErr = fmt.Errorf("close context: %w", err)
		}
		p.jobs.Wait()

		if p.onClose != nil {
			p.onClose()
		}
	})
	return p.closeErr
}
