package client

import (
	"errors"
	"testing"

	"github.com/vitrealabs/vbox/internal/protocol"
)

func ackResponse(t *testing.T, messageID byte) protocol.Response {
	t.Helper()
	raw := protocol.BuildFrame(protocol.DirectionIncoming, protocol.CmdAcknowledgement, messageID, nil)
	d, err := protocol.DecodeFrame(raw)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	return protocol.ResponseFromFrame(d, protocol.V2)
}

func TestPendingResolveDeliversToWaiter(t *testing.T) {
	tbl := newPendingTable()
	_, ch := tbl.register(protocol.CmdAcknowledgement, 7)

	resp := ackResponse(t, 7)
	if !tbl.resolve(protocol.CmdAcknowledgement, 7, resp) {
		t.Fatal("resolve() = false for registered waiter")
	}

	got := <-ch
	if got.err != nil {
		t.Fatalf("unexpected error: %v", got.err)
	}
	if got.response.MessageID() != 7 {
		t.Errorf("MessageID = %d, want 7", got.response.MessageID())
	}
	if tbl.size() != 0 {
		t.Errorf("table size = %d after resolve, want 0", tbl.size())
	}
}

func TestPendingResolveUnknownKey(t *testing.T) {
	tbl := newPendingTable()
	tbl.register(protocol.CmdRoomCount, 1)

	// same message id, different command
	if tbl.resolve(protocol.CmdNodeCount, 1, ackResponse(t, 1)) {
		t.Error("resolve() matched a waiter registered under another command")
	}
	// same command, different message id
	if tbl.resolve(protocol.CmdRoomCount, 2, ackResponse(t, 2)) {
		t.Error("resolve() matched a waiter registered under another message id")
	}
	if tbl.size() != 1 {
		t.Errorf("table size = %d, want 1", tbl.size())
	}
}

func TestPendingRemoveReportsRace(t *testing.T) {
	tbl := newPendingTable()
	key, ch := tbl.register(protocol.CmdRoomCount, 3)

	if !tbl.remove(key) {
		t.Error("remove() = false for a registered waiter")
	}
	if tbl.remove(key) {
		t.Error("remove() = true for an already removed waiter")
	}

	// A resolver that wins the race leaves the result buffered; remove
	// must report that so the sender can drain it.
	key2, ch2 := tbl.register(protocol.CmdRoomCount, 4)
	tbl.resolve(protocol.CmdRoomCount, 4, ackResponse(t, 4))
	if tbl.remove(key2) {
		t.Error("remove() = true after the waiter was resolved")
	}
	select {
	case <-ch2:
	default:
		t.Error("resolved result not buffered in channel")
	}
	_ = ch
}

func TestPendingFailAll(t *testing.T) {
	tbl := newPendingTable()
	_, ch1 := tbl.register(protocol.CmdRoomCount, 1)
	_, ch2 := tbl.register(protocol.CmdAcknowledgement, 2)

	tbl.failAll(ErrConnectionLost)

	for _, ch := range []chan pendingResult{ch1, ch2} {
		res := <-ch
		if !errors.Is(res.err, ErrConnectionLost) {
			t.Errorf("err = %v, want ErrConnectionLost", res.err)
		}
	}
	if tbl.size() != 0 {
		t.Errorf("table size = %d after failAll, want 0", tbl.size())
	}
}
