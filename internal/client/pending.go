package client

import (
	"sync"

	"github.com/vitrealabs/vbox/internal/protocol"
)

// pendingKey identifies one in-flight request. Correlation is by reply
// command id plus message id: operations the box merely confirms wait under
// CmdAcknowledgement, not under their own command.
type pendingKey struct {
	command   protocol.CommandID
	messageID byte
}

type pendingResult struct {
	response protocol.Response
	err      error
}

// pendingTable tracks requests waiting for their correlated response.
// Channels are buffered so a resolver never blocks on a waiter that has
// already given up.
type pendingTable struct {
	mu      sync.Mutex
	waiters map[pendingKey]chan pendingResult
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiters: make(map[pendingKey]chan pendingResult)}
}

// register adds a waiter for (replyCommand, messageID) and returns the
// channel its result will arrive on.
func (t *pendingTable) register(command protocol.CommandID, messageID byte) (pendingKey, chan pendingResult) {
	key := pendingKey{command: command, messageID: messageID}
	ch := make(chan pendingResult, 1)
	t.mu.Lock()
	t.waiters[key] = ch
	t.mu.Unlock()
	return key, ch
}

// resolve delivers resp to the matching waiter and reports whether one was
// registered.
func (t *pendingTable) resolve(command protocol.CommandID, messageID byte, resp protocol.Response) bool {
	key := pendingKey{command: command, messageID: messageID}
	t.mu.Lock()
	ch, ok := t.waiters[key]
	if ok {
		delete(t.waiters, key)
	}
	t.mu.Unlock()
	if ok {
		ch <- pendingResult{response: resp}
	}
	return ok
}

// remove drops a waiter without delivering anything. It reports whether the
// waiter was still registered; false means a resolver got there first and
// the result is sitting in the channel buffer.
func (t *pendingTable) remove(key pendingKey) bool {
	t.mu.Lock()
	_, ok := t.waiters[key]
	if ok {
		delete(t.waiters, key)
	}
	t.mu.Unlock()
	return ok
}

// failAll delivers err to every waiter and empties the table. Called on
// connection loss.
func (t *pendingTable) failAll(err error) {
	t.mu.Lock()
	waiters := t.waiters
	t.waiters = make(map[pendingKey]chan pendingResult)
	t.mu.Unlock()
	for _, ch := range waiters {
		ch <- pendingResult{err: err}
	}
}

func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}
