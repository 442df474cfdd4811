package client

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vitrealabs/vbox/internal/logging"
	"github.com/vitrealabs/vbox/internal/protocol"
)

// KeyStatusHandler receives unsolicited key status updates: wall switch
// presses, timer expiries, and states pushed after a NodeStatus refresh.
type KeyStatusHandler func(*protocol.KeyStatusResponse)

// dispatcher fans unsolicited key status updates out to subscribers.
type dispatcher struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]KeyStatusHandler
}

func newDispatcher() *dispatcher {
	return &dispatcher{handlers: make(map[int]KeyStatusHandler)}
}

// subscribe registers h and returns a function that removes it again.
func (d *dispatcher) subscribe(h KeyStatusHandler) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.handlers[id] = h
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.handlers, id)
		d.mu.Unlock()
	}
}

// dispatch invokes every subscriber with resp. A panicking handler is
// logged and does not take down the read loop or other handlers.
func (d *dispatcher) dispatch(resp *protocol.KeyStatusResponse) {
	d.mu.RLock()
	handlers := make([]KeyStatusHandler, 0, len(d.handlers))
	for _, h := range d.handlers {
		handlers = append(handlers, h)
	}
	d.mu.RUnlock()

	for _, h := range handlers {
		invoke(h, resp)
	}
}

func (d *dispatcher) count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}

func invoke(h KeyStatusHandler, resp *protocol.KeyStatusResponse) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Key status handler panicked", zap.Any("panic", r))
		}
	}()
	h(resp)
}
