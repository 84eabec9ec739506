// Package app wires the thazh stores, settings and tab session together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/entrhq/thazh/pkg/bookmarks"
	"github.com/entrhq/thazh/pkg/config"
	"github.com/entrhq/thazh/pkg/history"
	"github.com/entrhq/thazh/pkg/logging"
	"github.com/entrhq/thazh/pkg/session"
	"github.com/entrhq/thazh/pkg/settings"
	"github.com/entrhq/thazh/pkg/storage"
	"github.com/entrhq/thazh/pkg/surface"
)

// App holds the long-lived components of one thazh process.
type App struct {
	Config    *config.Config
	Store     storage.Store
	Bookmarks *bookmarks.Store
	History   *history.Store
	Settings  *settings.Store

	// Session is nil until StartSession.
	Session *session.Manager

	log     *logging.Logger
	loggers []*logging.Logger
	closer  io.Closer
}

// verbosityLevels maps config verbosity to the log level; quiet is absent
// because it disables file logging.
var verbosityLevels = map[string]logging.Level{
	"normal":  logging.LevelWarn,
	"verbose": logging.LevelInfo,
	"debug":   logging.LevelDebug,
}

// Open opens the configured storage backend and builds the stores on top
// of it. User settings are loaded eagerly.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	if lvl, ok := verbosityLevels[cfg.Logging.Verbosity]; ok {
		logging.SetDirectory(cfg.LogDir())
		logging.SetLevel(lvl)
	}
	a.log = a.logger("app")

	kv, closer, err := storage.Open(cfg.Storage.Backend, cfg.StoragePath())
	if err != nil {
		a.closeLoggers()
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	a.Store = kv
	a.closer = closer

	exclude, err := history.NewMatcher(cfg.History.Exclude)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Settings = settings.NewStore(kv, a.logger("settings"))
	a.Settings.Load(ctx)

	a.Bookmarks = bookmarks.NewStore(kv, bookmarks.WithLogger(a.logger("bookmarks")))
	a.History = history.NewStore(kv,
		history.WithLogger(a.logger("history")),
		history.WithExclusions(exclude),
		history.WithMaxItems(cfg.History.MaxItems),
		history.WithGate(func() bool { return a.Settings.Current().SaveHistory }),
	)

	a.log.Infof("Opened %s store at %s", cfg.Storage.Backend, cfg.StoragePath())
	return a, nil
}

// logger returns a component logger honouring the configured verbosity.
// File logging failures fall back to discarding so the terminal stays clean.
func (a *App) logger(component string) *logging.Logger {
	if a.Config.Logging.Verbosity == "quiet" {
		return logging.Discard(component)
	}
	l, err := logging.NewLogger(component)
	if err != nil {
		return logging.Discard(component)
	}
	a.loggers = append(a.loggers, l)
	return l
}

// LogPath returns the file this process logs to, or "" when quiet.
func (a *App) LogPath() string {
	return a.log.LogPath()
}

// Policy derives the rendering policy from the current user settings.
func (a *App) Policy() surface.Policy {
	s := a.Settings.Current()
	return surface.Policy{
		JavaScriptEnabled:  s.EnableJavaScript,
		BlockPopups:        s.BlockPopups,
		ClearCookiesOnExit: s.ClearCookiesOnExit,
	}
}

// PolicySink receives rendering policy changes.
type PolicySink interface {
	SetPolicy(surface.Policy)
}

// ApplyPolicy pushes the policy derived from the current settings to sink.
func (a *App) ApplyPolicy(sink PolicySink) {
	sink.SetPolicy(a.Policy())
}

// EngineOptions builds rendering engine options from config and settings.
func (a *App) EngineOptions() surface.Options {
	b := a.Config.Browser
	return surface.Options{
		Headless:  b.Headless,
		Viewport:  surface.Viewport{Width: b.Viewport.Width, Height: b.Viewport.Height},
		Timeout:   b.Timeout,
		Policy:    a.Policy(),
		StatePath: a.browserStatePath(),
	}
}

// browserStatePath is where cookies survive between runs. Memory-backed
// runs leave no trace on disk.
func (a *App) browserStatePath() string {
	if a.Config.Storage.Backend == "memory" {
		return ""
	}
	return filepath.Join(a.Config.DataDir, "browser-state.json")
}

// NewEngine creates a rendering engine logging through the app's logger.
func (a *App) NewEngine() *surface.Engine {
	return surface.NewEngine(a.EngineOptions(), surface.WithLogger(a.logger("surface")))
}

// StartSession opens the tab session on factory. Navigations are recorded
// to history and the initial desktop mode follows the user setting.
func (a *App) StartSession(ctx context.Context, factory session.Factory) error {
	if a.Session != nil {
		return errors.New("app: session already started")
	}

	m, err := session.NewManager(ctx, factory,
		session.WithLogger(a.logger("session")),
		session.WithRecorder(a.History),
		session.WithHomepage(a.Config.Homepage),
		session.WithSearchEngine(a.Config.SearchEngine),
		session.WithReloadDelay(a.Config.Session.DesktopReloadDelay),
		session.WithDesktopMode(a.Settings.Current().DesktopModeDefault),
	)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	a.Session = m
	return nil
}

// Close shuts the session down and releases storage and log files.
func (a *App) Close() error {
	var errs []error
	if a.Session != nil {
		if err := a.Session.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown session: %w", err))
		}
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	a.closeLoggers()
	return errors.Join(errs...)
}

func (a *App) closeLoggers() {
	for _, l := range a.loggers {
		_ = l.Close()
	}
	a.loggers = nil
}
