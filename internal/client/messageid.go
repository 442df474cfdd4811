package client

import "sync"

// messageIDAllocator hands out the one-byte message ids that correlate
// requests with responses. Ids cycle 0x01-0xFF; zero is never issued
// because the box uses it for unsolicited traffic.
type messageIDAllocator struct {
	mu   sync.Mutex
	last byte
}

// Next returns the next message id, wrapping 0xFF back to 0x01.
func (a *messageIDAllocator) Next() byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last++
	if a.last == 0 {
		a.last = 1
	}
	return a.last
}
