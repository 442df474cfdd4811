// Package protocol implements the Vitrea vBox binary datagram protocol.
//
// This package handles construction, parsing, and validation of the framed
// messages exchanged with a Vitrea vBox home-automation controller over a
// plain TCP socket. The format was confirmed against live captures from a
// vBox running both protocol generations (V1 and V2).
//
// # Datagram Layout
//
// Every datagram shares one shape:
//   - Prefix: 0x56 0x54 0x55 ("VTU")
//   - Direction byte: 0x3E (client to box) or 0x3C (box to client)
//   - Command ID: 1 byte
//   - Data length: 2 bytes (big-endian), equal to len(data)+2
//   - Message ID: 1 byte, correlates a request with its response
//   - Data: variable length
//   - Checksum: 1 byte, sum of all preceding bytes modulo 256
//
// Text fields inside the data section (login credentials, room and key
// names) are encoded as UTF-16LE, two bytes per code unit.
//
// # Requests and Responses
//
// Requests are built with the New* constructors and serialized with
// Request.Encode. Incoming datagrams are reassembled from the TCP stream by
// Splitter, validated by DecodeFrame, and mapped to a typed response by
// ResponseFromFrame. Command IDs without a dedicated response type map to
// GenericUnusedResponse instead of failing, so traffic from newer vBox
// firmware never breaks the read path.
//
// # Usage Example
//
//	req := protocol.NewRoomCount()
//	wire := req.Encode(msgID)
//	// ... write wire, read bytes back ...
//	frames := splitter.Feed(received)
//	for _, raw := range frames {
//	    frame, err := protocol.DecodeFrame(raw)
//	    if err != nil {
//	        continue // malformed, dropped
//	    }
//	    resp := protocol.ResponseFromFrame(frame, protocol.V2)
//	    // ...
//	}
package protocol
