package surface

import (
	"sync"

	"github.com/entrhq/thazh/pkg/session"
)

// emitter delivers events to a single consumer and can be closed while
// senders are blocked.
type emitter struct {
	mu     sync.RWMutex
	ch     chan session.Event
	done   chan struct{}
	once   sync.Once
	closed bool
}

func newEmitter(size int) *emitter {
	return &emitter{
		ch:   make(chan session.Event, size),
		done: make(chan struct{}),
	}
}

// emit sends ev, blocking while the buffer is full. It reports false once
// the emitter is closed.
func (e *emitter) emit(ev session.Event) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false
	}
	select {
	case e.ch <- ev:
		return true
	case <-e.done:
		return false
	}
}

// close unblocks pending senders and closes the channel.
func (e *emitter) close() {
	e.once.Do(func() {
		close(e.done)
		e.mu.Lock()
		e.closed = true
		close(e.ch)
		e.mu.Unlock()
	})
}
