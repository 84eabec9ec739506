package surface

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/entrhq/thazh/pkg/logging"
	"github.com/entrhq/thazh/pkg/session"
	"github.com/playwright-community/playwright-go"
)

// ErrNotInitialized is returned by NewSurface before Initialize.
var ErrNotInitialized = errors.New("surface: engine not initialized")

// Engine owns the Playwright driver and the browser all tabs share.
// It implements session.Factory.
type Engine struct {
	mu          sync.RWMutex
	opts        Options
	log         *logging.Logger
	playwright  *playwright.Playwright
	browser     playwright.Browser
	surfaces    map[string]*Page
	initialized bool

	// policy is read by open pages without taking mu
	policy  atomic.Pointer[Policy]
	stateMu sync.Mutex
}

var _ session.Factory = (*Engine)(nil)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *logging.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine creates an engine. Call Initialize before creating surfaces.
func NewEngine(opts Options, options ...EngineOption) *Engine {
	opts.setDefaults()
	e := &Engine{
		opts:     opts,
		log:      logging.Discard("surface"),
		surfaces: make(map[string]*Page),
	}
	e.policy.Store(&opts.Policy)
	for _, o := range options {
		o(e)
	}
	return e
}

// Initialize installs the Playwright driver if needed, starts it, and
// launches Chromium.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return nil
	}

	// Discard driver output so it does not draw over the TUI
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(e.opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	e.playwright = pw
	e.browser = browser
	e.initialized = true
	e.log.Infof("Chromium %s started (headless=%t)", browser.Version(), e.opts.Headless)
	return nil
}

// SetPolicy replaces the rendering policy. Popup blocking and cookie
// clearing take effect on open tabs too; JavaScript is fixed when a tab's
// context is created, so it applies to tabs opened afterwards.
func (e *Engine) SetPolicy(p Policy) {
	e.policy.Store(&p)
	e.log.Infof("Policy updated (javascript=%t popups_blocked=%t clear_cookies=%t)",
		p.JavaScriptEnabled, p.BlockPopups, p.ClearCookiesOnExit)
}

// Policy returns the current rendering policy.
func (e *Engine) Policy() Policy {
	return *e.policy.Load()
}

// storageState returns the saved state file to seed a new context with,
// or "" when there is none yet.
func (e *Engine) storageState() string {
	if e.opts.StatePath == "" {
		return ""
	}
	if _, err := os.Stat(e.opts.StatePath); err != nil {
		return ""
	}
	return e.opts.StatePath
}

// persistState saves the cookies of a closing tab so the next session
// starts signed in, or removes the saved state when wipe is set.
func (e *Engine) persistState(bctx playwright.BrowserContext, wipe bool) {
	if e.opts.StatePath == "" {
		return
	}
	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	if wipe {
		if err := os.Remove(e.opts.StatePath); err != nil && !os.IsNotExist(err) {
			e.log.Warnf("Failed to remove browser state: %v", err)
		}
		return
	}
	if _, err := bctx.StorageState(e.opts.StatePath); err != nil {
		e.log.Warnf("Failed to save browser state: %v", err)
	}
}

// NewSurface opens an isolated context and page for tabID.
func (e *Engine) NewSurface(ctx context.Context, tabID, userAgent string) (session.Surface, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, ErrNotInitialized
	}
	if _, exists := e.surfaces[tabID]; exists {
		return nil, fmt.Errorf("surface for tab %q already exists", tabID)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  e.opts.Viewport.Width,
			Height: e.opts.Viewport.Height,
		},
		JavaScriptEnabled: playwright.Bool(e.Policy().JavaScriptEnabled),
		IsMobile:          playwright.Bool(true),
		HasTouch:          playwright.Bool(true),
	}
	if state := e.storageState(); state != "" {
		contextOpts.StorageStatePath = playwright.String(state)
	}
	bctx, err := e.browser.NewContext(contextOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	pwPage, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	pwPage.SetDefaultNavigationTimeout(float64(e.opts.Timeout.Milliseconds()))

	p := newPage(tabID, bctx, pwPage, e.Policy, e.log)
	if err := p.SetUserAgent(userAgent); err != nil {
		_ = p.Close()
		return nil, err
	}
	p.onClose = func() { e.forget(tabID) }
	p.persist = e.persistState
	p.watch()

	e.surfaces[tabID] = p
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = p.Close()
			case <-p.events.done:
			}
		}()
	}
	e.log.Debugf("Surface for tab %s ready", tabID)
	return p, nil
}

func (e *Engine) forget(tabID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.surfaces, tabID)
}

// Shutdown closes every surface, the browser and the Playwright driver.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	pages := make([]*Page, 0, len(e.surfaces))
	for _, p := range e.surfaces {
		pages = append(pages, p)
	}
	e.mu.Unlock()

	var errs []error
	for _, p := range pages {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		e.browser = nil
	}
	if e.initialized && e.playwright != nil {
		if err := e.playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		e.initialized = false
	}
	return errors.Join(errs...)
}
