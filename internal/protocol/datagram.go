package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf16"
)

// Byte offsets within a datagram.
const (
	DirectionIndex  = 3
	CommandIDIndex  = 4
	DataLengthIndex = 5
	MessageIDIndex  = 7
	DataIndex       = 8
)

// MinFrameSize is the smallest legal datagram: header plus checksum, no data.
const MinFrameSize = DataIndex + 1

// Prefix opens every datagram on the wire ("VTU").
var Prefix = []byte{0x56, 0x54, 0x55}

// Datagram is one complete decoded frame, held without its trailing
// checksum byte. The checksum is verified during DecodeFrame and
// recomputable via Checksum.
type Datagram struct {
	buf []byte
}

// MalformedFrameError reports a frame that failed structural validation.
// Malformed frames are dropped by the read path, never fatal.
type MalformedFrameError struct {
	Reason string
	Raw    []byte
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed frame: %s (raw %s)", e.Reason, HexString(e.Raw))
}

// Checksum computes the single-byte checksum over b: the sum of all bytes
// modulo 256.
func Checksum(b []byte) byte {
	var sum int
	for _, c := range b {
		sum += int(c)
	}
	return byte(sum & 0xFF)
}

// BuildFrame assembles a complete wire frame, checksum included. Exposed
// beyond request encoding so tests and tooling can fabricate box-originated
// traffic.
func BuildFrame(dir Direction, cmd CommandID, messageID byte, data []byte) []byte {
	buf := make([]byte, DataIndex, DataIndex+len(data)+1)
	copy(buf, Prefix)
	buf[DirectionIndex] = byte(dir)
	buf[CommandIDIndex] = byte(cmd)
	binary.BigEndian.PutUint16(buf[DataLengthIndex:DataLengthIndex+2], uint16(len(data)+2))
	buf[MessageIDIndex] = messageID
	buf = append(buf, data...)
	return append(buf, Checksum(buf))
}

// DecodeFrame validates raw as one complete datagram and returns it. It
// fails with *MalformedFrameError when the prefix is wrong, the declared
// length disagrees with the bytes present, or the checksum does not match.
func DecodeFrame(raw []byte) (*Datagram, error) {
	if len(raw) < MinFrameSize {
		return nil, &MalformedFrameError{Reason: fmt.Sprintf("short frame: %d bytes (minimum %d)", len(raw), MinFrameSize), Raw: raw}
	}
	if !bytes.Equal(raw[:len(Prefix)], Prefix) {
		return nil, &MalformedFrameError{Reason: "bad prefix", Raw: raw}
	}
	declared := int(binary.BigEndian.Uint16(raw[DataLengthIndex : DataLengthIndex+2]))
	if declared+MessageIDIndex != len(raw) {
		return nil, &MalformedFrameError{
			Reason: fmt.Sprintf("declared length %d disagrees with %d bytes present", declared, len(raw)),
			Raw:    raw,
		}
	}
	body, sum := raw[:len(raw)-1], raw[len(raw)-1]
	if got := Checksum(body); got != sum {
		return nil, &MalformedFrameError{
			Reason: fmt.Sprintf("checksum mismatch: computed 0x%02X, frame carries 0x%02X", got, sum),
			Raw:    raw,
		}
	}
	d := &Datagram{buf: make([]byte, len(body))}
	copy(d.buf, body)
	return d, nil
}

// Direction reports which way the datagram traveled.
func (d *Datagram) Direction() Direction {
	return Direction(d.buf[DirectionIndex])
}

// CommandID returns the datagram's command byte.
func (d *Datagram) CommandID() CommandID {
	return CommandID(d.buf[CommandIDIndex])
}

// MessageID returns the correlation id the datagram carries.
func (d *Datagram) MessageID() byte {
	return d.buf[MessageIDIndex]
}

// Data returns the variable-length data section. The slice aliases the
// datagram's internal buffer and must not be mutated.
func (d *Datagram) Data() []byte {
	if len(d.buf) <= DataIndex {
		return nil
	}
	return d.buf[DataIndex:]
}

// Checksum recomputes the checksum over the datagram body.
func (d *Datagram) Checksum() byte {
	return Checksum(d.buf)
}

// Raw returns the datagram body without the trailing checksum byte.
func (d *Datagram) Raw() []byte {
	return d.buf
}

// String returns a debug representation of the datagram.
func (d *Datagram) String() string {
	return fmt.Sprintf("Datagram{cmd=%s, id=0x%02X, data=%d bytes}",
		d.CommandID(), d.MessageID(), len(d.Data()))
}

// HexString renders b as colon-separated uppercase hex, the format the vBox
// maintenance tools use in their logs.
func HexString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}
	return sb.String()
}

// encodeUTF16LE serializes s as two bytes per UTF-16 code unit,
// little-endian, the text encoding the vBox expects.
func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}
	return out
}

// decodeUTF16LE is the inverse of encodeUTF16LE. A trailing odd byte and
// trailing NULs are discarded, matching how the box pads name fields.
func decodeUTF16LE(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, binary.LittleEndian.Uint16(b[i:]))
	}
	s := string(utf16.Decode(units))
	return strings.TrimRight(s, "\x00")
}
