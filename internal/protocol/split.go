package protocol

import (
	"bytes"
	"encoding/binary"
)

// incomingPrefix is the four-byte pattern opening every box-originated
// datagram: "VTU" plus the incoming direction byte.
var incomingPrefix = []byte{0x56, 0x54, 0x55, byte(DirectionIncoming)}

// Splitter reassembles complete datagrams from an arbitrary TCP stream.
// A single read may deliver zero, one, or several frames, and a frame may
// span reads; Feed extracts whatever is complete and retains the rest.
// Bytes that cannot open a datagram are discarded until the next incoming
// prefix, so line noise or a mid-frame connection pickup cannot wedge the
// stream.
//
// A Splitter is not safe for concurrent use; each connection owns one.
type Splitter struct {
	buf []byte
}

// Feed appends p to the internal buffer and returns every complete frame
// now available, in arrival order. Returned slices are copies.
func (s *Splitter) Feed(p []byte) [][]byte {
	s.buf = append(s.buf, p...)

	var frames [][]byte
	for {
		s.resync()
		if len(s.buf) < DataLengthIndex+2 {
			return frames
		}
		declared := int(binary.BigEndian.Uint16(s.buf[DataLengthIndex : DataLengthIndex+2]))
		if declared < 2 {
			// Impossible length; skip this prefix byte and rescan.
			s.buf = s.buf[1:]
			continue
		}
		total := MessageIDIndex + declared
		if len(s.buf) < total {
			return frames
		}
		frame := make([]byte, total)
		copy(frame, s.buf[:total])
		s.buf = s.buf[total:]
		frames = append(frames, frame)
	}
}

// resync drops leading bytes until the buffer starts with the incoming
// prefix. When no complete prefix is present, the longest tail that could
// still grow into one is kept, in case a prefix is split across reads.
func (s *Splitter) resync() {
	if i := bytes.Index(s.buf, incomingPrefix); i >= 0 {
		s.buf = s.buf[i:]
		return
	}
	for keep := min(len(s.buf), len(incomingPrefix)-1); keep > 0; keep-- {
		tail := s.buf[len(s.buf)-keep:]
		if bytes.HasPrefix(incomingPrefix, tail) {
			s.buf = s.buf[len(s.buf)-keep:]
			return
		}
	}
	s.buf = s.buf[:0]
}

// Pending returns how many buffered bytes await more input. Used by tests
// and connection diagnostics.
func (s *Splitter) Pending() int {
	return len(s.buf)
}

// Reset discards any partial frame, for reuse across reconnects.
func (s *Splitter) Reset() {
	s.buf = nil
}
