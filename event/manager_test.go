package event

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingListener struct {
	Adapter
	mu       sync.Mutex
	messages int
	err      error
	panics   bool
}

func (c *countingListener) OnMessage(*MessageEvent) error {
	if c.panics {
		panic("listener bug")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages++
	return c.err
}

func (c *countingListener) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages
}

func TestSequentialManagerDeliversToAllListeners(t *testing.T) {
	m := NewSequentialManager()
	a, b := &countingListener{}, &countingListener{}
	m.AddListener(a)
	m.AddListener(b)

	m.Dispatch(&MessageEvent{Base: NewBase(&testSource{}), Text: "hi"})

	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}

func TestSequentialManagerIsolatesFailures(t *testing.T) {
	m := NewSequentialManager()
	bad := &countingListener{err: errors.New("broken handler")}
	panicky := &countingListener{panics: true}
	good := &countingListener{}
	m.AddListener(bad)
	m.AddListener(panicky)
	m.AddListener(good)

	// Neither the error nor the panic stops delivery to the good listener
	m.Dispatch(&MessageEvent{Base: NewBase(&testSource{})})

	assert.Equal(t, 1, good.count())
}

func TestSequentialManagerRemoveListener(t *testing.T) {
	m := NewSequentialManager()
	a, b := &countingListener{}, &countingListener{}
	m.AddListener(a)
	m.AddListener(b)
	m.RemoveListener(a)

	m.Dispatch(&MessageEvent{Base: NewBase(&testSource{})})

	assert.Equal(t, 0, a.count())
	assert.Equal(t, 1, b.count())
}

func TestSequentialManagerShutdownDropsListeners(t *testing.T) {
	m := NewSequentialManager()
	a := &countingListener{}
	m.AddListener(a)
	m.Shutdown()

	m.Dispatch(&MessageEvent{Base: NewBase(&testSource{})})
	assert.Equal(t, 0, a.count())
}

func TestPooledManagerDeliversToAllListeners(t *testing.T) {
	m := NewPooledManager(4, 64)
	a, b := &countingListener{}, &countingListener{}
	m.AddListener(a)
	m.AddListener(b)

	for i := 0; i < 10; i++ {
		m.Dispatch(&MessageEvent{Base: NewBase(&testSource{})})
	}
	m.Shutdown()

	assert.Equal(t, 10, a.count())
	assert.Equal(t, 10, b.count())
}

func TestPooledManagerSurvivesPanickingListener(t *testing.T) {
	m := NewPooledManager(2, 16)
	panicky := &countingListener{panics: true}
	good := &countingListener{}
	m.AddListener(panicky)
	m.AddListener(good)

	m.Dispatch(&MessageEvent{Base: NewBase(&testSource{})})

	require.Eventually(t, func() bool { return good.count() == 1 },
		time.Second, 10*time.Millisecond)
	m.Shutdown()
}

func TestManagerIgnoresNil(t *testing.T) {
	m := NewSequentialManager()
	m.AddListener(nil)
	m.Dispatch(nil) // must not panic
	m.Shutdown()
}
