package session

// Event is a notification from a tab's rendering surface.
type Event interface {
	isEvent()
}

// LoadStart reports that the surface began loading a page.
type LoadStart struct{}

// Progress reports load progress in [0, 1].
type Progress struct {
	Value float64
}

// LoadEnd reports that loading finished, successfully or not.
type LoadEnd struct{}

// NavigationStateChanged reports the surface's committed location.
type NavigationStateChanged struct {
	URL          string
	Title        string
	CanGoBack    bool
	CanGoForward bool
}

// LoadError reports a failed load.
type LoadError struct {
	URL string
	Err error
}

func (LoadStart) isEvent()              {}
func (Progress) isEvent()               {}
func (LoadEnd) isEvent()                {}
func (NavigationStateChanged) isEvent() {}
func (LoadError) isEvent()              {}
