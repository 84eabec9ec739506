package session

import (
	"context"
	"fmt"
	"sync"
)

// fakeSurface records commands and lets tests emit events.
type fakeSurface struct {
	mu        sync.Mutex
	tabID     string
	loads     []string
	backs     int
	forwards  int
	reloads   int
	userAgent string
	closed    bool
	events    chan Event
}

func (f *fakeSurface) Load(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, url)
	return nil
}

func (f *fakeSurface) GoBack() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backs++
	return nil
}

func (f *fakeSurface) GoForward() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwards++
	return nil
}

func (f *fakeSurface) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeSurface) SetUserAgent(ua string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userAgent = ua
	return nil
}

func (f *fakeSurface) Events() <-chan Event {
	return f.events
}

func (f *fakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

func (f *fakeSurface) state() (loads []string, reloads int, ua string, closed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loads...), f.reloads, f.userAgent, f.closed
}

// fakeFactory hands out fakeSurfaces and remembers them by tab id.
type fakeFactory struct {
	mu       sync.Mutex
	surfaces map[string]*fakeSurface
	fail     error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{surfaces: make(map[string]*fakeSurface)}
}

func (f *fakeFactory) NewSurface(_ context.Context, tabID, userAgent string) (Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	s := &fakeSurface{tabID: tabID, userAgent: userAgent, events: make(chan Event, 16)}
	f.surfaces[tabID] = s
	return s, nil
}

func (f *fakeFactory) get(tabID string) *fakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.surfaces[tabID]
}

// recorder collects Record calls.
type recorder struct {
	mu     sync.Mutex
	visits []string
}

func (r *recorder) Record(_ context.Context, url, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, url+"|"+title)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.visits...)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%d", n)
	}
}
