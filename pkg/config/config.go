// Package config loads the thazh application config file.
//
// The file is YAML, by default ~/.thazh/config.yaml. A missing file is not
// an error: every field has a default. User-facing toggles (history saving,
// popup blocking and the like) are not stored here; see package settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/thazh/pkg/history"
	"github.com/entrhq/thazh/pkg/session"
	"github.com/entrhq/thazh/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// Directory holding the store, logs and config. Default ~/.thazh.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	Homepage     string `yaml:"homepage" json:"homepage"`
	SearchEngine string `yaml:"search_engine" json:"search_engine"`

	Storage StorageConfig `yaml:"storage" json:"storage"`
	History HistoryConfig `yaml:"history" json:"history"`
	Session SessionConfig `yaml:"session" json:"session"`
	Browser BrowserConfig `yaml:"browser" json:"browser"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// StorageConfig selects the persistent store backend.
type StorageConfig struct {
	// Backend is one of file, sqlite, memory
	Backend string `yaml:"backend" json:"backend"`
	// Path overrides the backend's file location
	Path string `yaml:"path" json:"path"`
}

// HistoryConfig bounds and filters browsing history.
type HistoryConfig struct {
	MaxItems int      `yaml:"max_items" json:"max_items"`
	Exclude  []string `yaml:"exclude" json:"exclude"`
}

// SessionConfig tunes the tab session.
type SessionConfig struct {
	DesktopReloadDelay time.Duration `yaml:"desktop_reload_delay" json:"desktop_reload_delay"`
}

// BrowserConfig configures the rendering engine.
type BrowserConfig struct {
	Headless bool           `yaml:"headless" json:"headless"`
	Viewport ViewportConfig `yaml:"viewport" json:"viewport"`
	Timeout  time.Duration  `yaml:"timeout" json:"timeout"` // navigation timeout, 0 means engine default
}

// ViewportConfig is the page size in CSS pixels.
type ViewportConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// DefaultConfig returns the configuration used when no file exists.
// DataDir is left empty and resolved by Load.
func DefaultConfig() *Config {
	return &Config{
		Homepage:     session.DefaultHomepage,
		SearchEngine: session.DefaultSearchEngine,
		Storage: StorageConfig{
			Backend: storage.BackendFile,
		},
		History: HistoryConfig{
			MaxItems: history.DefaultMaxItems,
			Exclude:  append([]string(nil), history.DefaultExcludePatterns...),
		},
		Session: SessionConfig{
			DesktopReloadDelay: session.DefaultReloadDelay,
		},
		Browser: BrowserConfig{
			Headless: true,
			Viewport: ViewportConfig{Width: 412, Height: 915},
			Timeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// DefaultDataDir returns ~/.thazh.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".thazh"), nil
}

// DefaultPath returns ~/.thazh/config.yaml.
func DefaultPath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path over the defaults and validates the
// result. An empty path means DefaultPath. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Storage.Path = expandHome(cfg.Storage.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 'file', 'sqlite' or 'memory')", c.Storage.Backend)
	}

	if err := validateWebURL("homepage", c.Homepage); err != nil {
		return err
	}
	if err := validateWebURL("search_engine", c.SearchEngine); err != nil {
		return err
	}

	if c.History.MaxItems <= 0 {
		return fmt.Errorf("history.max_items must be positive")
	}
	if _, err := history.NewMatcher(c.History.Exclude); err != nil {
		return fmt.Errorf("history.exclude: %w", err)
	}

	if c.Session.DesktopReloadDelay < 0 {
		return fmt.Errorf("session.desktop_reload_delay cannot be negative")
	}
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser.timeout cannot be negative")
	}
	if c.Browser.Viewport.Width < 0 || c.Browser.Viewport.Height < 0 {
		return fmt.Errorf("browser.viewport cannot be negative")
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

func validateWebURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, raw)
	}
	return nil
}

// StoragePath returns where the configured backend keeps its data.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case storage.BackendSQLite:
		return filepath.Join(c.DataDir, "thazh.db")
	case storage.BackendMemory:
		return ""
	default:
		return filepath.Join(c.DataDir, "store.json")
	}
}

// LogDir returns the directory log files are written to.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}
