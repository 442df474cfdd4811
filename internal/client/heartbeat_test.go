package client

import (
	"testing"
	"time"
)

func TestHeartbeatFiresWhenIdle(t *testing.T) {
	fired := make(chan struct{}, 1)
	h := newHeartbeat(30*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	defer h.stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat did not fire on an idle link")
	}
}

func TestHeartbeatResetPostponesFiring(t *testing.T) {
	fired := make(chan struct{}, 1)
	h := newHeartbeat(80*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	defer h.stop()

	// Keep the link "busy" for a while; no heartbeat should fire.
	for i := 0; i < 6; i++ {
		time.Sleep(20 * time.Millisecond)
		h.reset()
	}
	select {
	case <-fired:
		t.Fatal("heartbeat fired despite constant resets")
	default:
	}

	// Once traffic stops, it fires.
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat did not fire after traffic stopped")
	}
}

func TestHeartbeatStopDisarms(t *testing.T) {
	fired := make(chan struct{}, 1)
	h := newHeartbeat(20*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	h.stop()
	h.reset() // no-op after stop

	select {
	case <-fired:
		t.Fatal("heartbeat fired after stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHeartbeatZeroIntervalDisabled(t *testing.T) {
	h := newHeartbeat(0, func() { t.Error("disabled heartbeat fired") })
	defer h.stop()
	h.reset()
	time.Sleep(50 * time.Millisecond)
}
