package surface

import (
	"testing"
	"time"

	"github.com/entrhq/thazh/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_DeliversInOrder(t *testing.T) {
	e := newEmitter(4)
	require.True(t, e.emit(session.LoadStart{}))
	require.True(t, e.emit(session.Progress{Value: 0.5}))
	require.True(t, e.emit(session.LoadEnd{}))
	e.close()

	var got []session.Event
	for ev := range e.ch {
		got = append(got, ev)
	}
	assert.Equal(t, []session.Event{session.LoadStart{}, session.Progress{Value: 0.5}, session.LoadEnd{}}, got)
}

func TestEmitter_EmitAfterClose(t *testing.T) {
	e := newEmitter(1)
	e.close()
	e.close()
	assert.False(t, e.emit(session.LoadEnd{}))
}

func TestEmitter_CloseUnblocksSender(t *testing.T) {
	e := newEmitter(1)
	require.True(t, e.emit(session.LoadStart{}))

	result := make(chan bool)
	go func() {
		result <- e.emit(session.LoadEnd{})
	}()

	time.Sleep(20 * time.Millisecond)
	e.close()

	select {
	case ok := <-result:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("blocked sender was not released")
	}
}
