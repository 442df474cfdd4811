package client

import (
	"sync"
	"time"
)

// heartbeat fires a keepalive after the link has been idle for the
// configured interval. Every outgoing frame resets the countdown, so a
// busy connection never sends keepalives. A zero or negative interval
// disables it entirely.
type heartbeat struct {
	interval time.Duration
	fire     func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newHeartbeat(interval time.Duration, fire func()) *heartbeat {
	h := &heartbeat{interval: interval, fire: fire}
	if interval <= 0 {
		h.stopped = true
		return h
	}
	h.timer = time.AfterFunc(interval, h.tick)
	return h
}

func (h *heartbeat) tick() {
	h.mu.Lock()
	stopped := h.stopped
	h.mu.Unlock()
	if stopped {
		return
	}
	// fire writes a frame, and the write path calls reset, which arms the
	// next tick. If the write fails the connection teardown stops us.
	h.fire()
}

// reset restarts the idle countdown. Called after every successful write.
func (h *heartbeat) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || h.timer == nil {
		return
	}
	h.timer.Reset(h.interval)
}

// stop permanently disarms the heartbeat.
func (h *heartbeat) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	if h.timer != nil {
		h.timer.Stop()
	}
}
