package surface

import "time"

// Default page geometry, a typical phone in portrait.
const (
	DefaultViewportWidth  = 412
	DefaultViewportHeight = 915
	DefaultTimeout        = 30 * time.Second
)

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Policy holds the user settings that shape new surfaces.
type Policy struct {
	JavaScriptEnabled  bool
	BlockPopups        bool
	ClearCookiesOnExit bool
}

// DefaultPolicy matches the default user settings.
func DefaultPolicy() Policy {
	return Policy{JavaScriptEnabled: true, BlockPopups: true}
}

// Options configures an Engine.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the page size; zero means the default phone size
	Viewport Viewport

	// Timeout bounds each navigation; zero means DefaultTimeout
	Timeout time.Duration

	Policy Policy

	// StatePath is where cookies and local storage are kept between runs;
	// empty keeps every tab's state in memory only
	StatePath string
}

func (o *Options) setDefaults() {
	if o.Viewport.Width == 0 || o.Viewport.Height == 0 {
		o.Viewport = Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
}
