package session

import "context"

// Surface is the rendering engine instance behind one tab.
//
// Commands return once the surface has accepted them; their outcome is
// reported later through Events. Events must be closed by Close.
type Surface interface {
	Load(url string) error
	GoBack() error
	GoForward() error
	Reload() error

	// SetUserAgent overrides the identification string sent to sites.
	// An empty string restores the engine default.
	SetUserAgent(ua string) error

	Events() <-chan Event
	Close() error
}

// Factory creates a surface for a new tab.
type Factory interface {
	NewSurface(ctx context.Context, tabID, userAgent string) (Surface, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, tabID, userAgent string) (Surface, error)

// NewSurface calls f.
func (f FactoryFunc) NewSurface(ctx context.Context, tabID, userAgent string) (Surface, error) {
	return f(ctx, tabID, userAgent)
}

// Recorder receives committed navigations. Implementations must not fail
// loudly; history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, url, title string)
}
