// Package settings persists the user's browser preferences as a single
// JSON object under storage.KeySettings.
package settings

import (
	"fmt"
	"sort"
)

// Setting names, as used in the stored object and on the command line.
const (
	NameSaveHistory        = "saveHistory"
	NameBlockPopups        = "blockPopups"
	NameEnableJavaScript   = "enableJavaScript"
	NameClearCookiesOnExit = "clearCookiesOnExit"
	NameDesktopModeDefault = "desktopModeDefault"
)

// Settings are the user-facing toggles.
type Settings struct {
	SaveHistory        bool `json:"saveHistory"`
	BlockPopups        bool `json:"blockPopups"`
	EnableJavaScript   bool `json:"enableJavaScript"`
	ClearCookiesOnExit bool `json:"clearCookiesOnExit"`
	DesktopModeDefault bool `json:"desktopModeDefault"`
}

// Defaults returns the factory settings.
func Defaults() Settings {
	return Settings{
		SaveHistory:        true,
		BlockPopups:        true,
		EnableJavaScript:   true,
		ClearCookiesOnExit: false,
		DesktopModeDefault: false,
	}
}

// field returns a pointer to the named toggle.
func (s *Settings) field(name string) (*bool, error) {
	switch name {
	case NameSaveHistory:
		return &s.SaveHistory, nil
	case NameBlockPopups:
		return &s.BlockPopups, nil
	case NameEnableJavaScript:
		return &s.EnableJavaScript, nil
	case NameClearCookiesOnExit:
		return &s.ClearCookiesOnExit, nil
	case NameDesktopModeDefault:
		return &s.DesktopModeDefault, nil
	default:
		return nil, fmt.Errorf("unknown setting %q", name)
	}
}

// Get returns the named toggle.
func (s Settings) Get(name string) (bool, error) {
	p, err := s.field(name)
	if err != nil {
		return false, err
	}
	return *p, nil
}

// Names returns every setting name in sorted order.
func Names() []string {
	names := []string{
		NameSaveHistory,
		NameBlockPopups,
		NameEnableJavaScript,
		NameClearCookiesOnExit,
		NameDesktopModeDefault,
	}
	sort.Strings(names)
	return names
}

// Data returns the settings as a generic map.
func (s Settings) Data() map[string]any {
	return map[string]any{
		NameSaveHistory:        s.SaveHistory,
		NameBlockPopups:        s.BlockPopups,
		NameEnableJavaScript:   s.EnableJavaScript,
		NameClearCookiesOnExit: s.ClearCookiesOnExit,
		NameDesktopModeDefault: s.DesktopModeDefault,
	}
}
