package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildFrameRoomCount(t *testing.T) {
	// RoomCount request with message id 1 against the captured wire bytes.
	got := NewRoomCount().Encode(0x01)
	want := []byte{0x56, 0x54, 0x55, 0x3E, 0x1D, 0x00, 0x02, 0x01, 0x5D}
	if !bytes.Equal(got, want) {
		t.Errorf("encoded frame = %s, want %s", HexString(got), HexString(want))
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want byte
	}{
		{"empty", nil, 0x00},
		{"single byte", []byte{0x7F}, 0x7F},
		{"wraps modulo 256", []byte{0xFF, 0xFF, 0x03}, 0x01},
		{"prefix", Prefix, 0xFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.in); got != tt.want {
				t.Errorf("Checksum(%s) = 0x%02X, want 0x%02X", HexString(tt.in), got, tt.want)
			}
		})
	}
}

func TestDecodeFrameRoundTrip(t *testing.T) {
	reqs := []struct {
		name string
		req  Request
	}{
		{"RoomCount", NewRoomCount()},
		{"NodeCount", NewNodeCount()},
		{"RoomMetaData", NewRoomMetaData(4)},
		{"NodeMetaData", NewNodeMetaData(9)},
		{"NodeStatus", NewNodeStatus(2)},
		{"KeyStatus", NewKeyStatus(1, 2)},
		{"KeyParameters", NewKeyParameters(3, 0)},
		{"InternalUnitStatuses", NewInternalUnitStatuses()},
		{"Heartbeat", NewHeartbeat()},
		{"ToggleHeartbeat", NewToggleHeartbeat(true, true)},
		{"ToggleKeyStatus", NewToggleKeyStatus(1, 2, PowerOn, 50, 300)},
		{"Login", NewLogin("user", "pass")},
	}
	for _, tt := range reqs {
		t.Run(tt.name, func(t *testing.T) {
			const msgID = 0x2A
			raw := tt.req.Encode(msgID)
			frame, err := DecodeFrame(raw)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if frame.CommandID() != tt.req.Command {
				t.Errorf("command = %s, want %s", frame.CommandID(), tt.req.Command)
			}
			if frame.MessageID() != msgID {
				t.Errorf("message id = 0x%02X, want 0x%02X", frame.MessageID(), msgID)
			}
			if frame.Direction() != DirectionOutgoing {
				t.Errorf("direction = 0x%02X, want outgoing", byte(frame.Direction()))
			}
			if !bytes.Equal(frame.Data(), tt.req.Data) {
				t.Errorf("data = %s, want %s", HexString(frame.Data()), HexString(tt.req.Data))
			}
		})
	}
}

func TestDecodeFrameRejectsCorruption(t *testing.T) {
	// Flipping any single byte of a valid frame must fail decoding: either
	// the checksum no longer matches, or the corrupted byte breaks the
	// prefix or the declared length.
	raw := NewToggleKeyStatus(1, 2, PowerOn, 0, 0).Encode(0x07)
	for i := range raw {
		corrupted := make([]byte, len(raw))
		copy(corrupted, raw)
		corrupted[i] ^= 0x40
		if _, err := DecodeFrame(corrupted); err == nil {
			t.Errorf("byte %d flipped: decode unexpectedly succeeded", i)
		} else {
			var mfe *MalformedFrameError
			if !errors.As(err, &mfe) {
				t.Errorf("byte %d flipped: error = %v, want MalformedFrameError", i, err)
			}
		}
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"short", []byte{0x56, 0x54, 0x55}},
		{"bad prefix", []byte{0x01, 0x02, 0x03, 0x3C, 0x1D, 0x00, 0x02, 0x01, 0x00}},
		{"truncated data", NewRoomCount().Encode(1)[:8]},
		{"declared length too long", []byte{0x56, 0x54, 0x55, 0x3C, 0x1D, 0x00, 0x09, 0x01, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeFrame(tt.raw); err == nil {
				t.Error("DecodeFrame() unexpectedly succeeded")
			}
		})
	}
}

func TestUTF16RoundTrip(t *testing.T) {
	tests := []string{"", "a", "vBox", "Living Room", "חדר שינה"}
	for _, s := range tests {
		if got := decodeUTF16LE(encodeUTF16LE(s)); got != s {
			t.Errorf("round trip of %q = %q", s, got)
		}
	}
}

func TestDecodeUTF16LETrimsPadding(t *testing.T) {
	b := append(encodeUTF16LE("Kitchen"), 0x00, 0x00, 0x00, 0x00)
	if got := decodeUTF16LE(b); got != "Kitchen" {
		t.Errorf("decoded %q, want %q", got, "Kitchen")
	}
}
