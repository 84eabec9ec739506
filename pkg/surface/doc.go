// Package surface renders tabs with a Playwright-driven Chromium.
//
// An Engine owns the Playwright driver and a single browser process. Each
// tab gets its own browser context and page, so cookies and storage are
// isolated per tab while it is open. With Options.StatePath set, a closing
// tab saves its cookies and local storage there and new tabs start from the
// saved state; Policy.ClearCookiesOnExit clears the cookies and deletes the
// saved state instead. Page events are translated into session events:
//
//	main-frame navigation request  -> session.LoadStart
//	DOMContentLoaded               -> session.Progress{Value: 0.5}
//	load                           -> session.LoadEnd, session.NavigationStateChanged
//	main-frame navigated           -> session.NavigationStateChanged
//	failed navigation              -> session.LoadError
//
// Commands (Load, GoBack, GoForward, Reload) return immediately; the
// navigation runs in the background and reports through events.
//
// # Example Usage
//
//	engine := surface.NewEngine(surface.Options{Headless: true})
//	if err := engine.Initialize(); err != nil {
//	    return err
//	}
//	defer engine.Shutdown()
//
//	mgr, err := session.NewManager(ctx, engine)
package surface
