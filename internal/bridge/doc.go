// Package bridge exposes a vBox over WebSockets.
//
// The vBox control protocol is binary and connection-oriented, which makes
// it awkward for dashboards and home-automation hubs to consume directly.
// The bridge owns the single vBox session and re-exposes it as JSON over a
// WebSocket endpoint at /ws:
//
//   - Unsolicited key status updates fan out to every connected peer as
//     {"type":"key_status","node":5,"key":1,"power":"on"} events.
//   - Peers actuate keys with {"type":"toggle","node":5,"key":1,"power":"on"}
//     and query them with {"type":"status","node":5,"key":1}.
//
// Failed commands are answered with {"type":"error","error":"..."} on the
// issuing connection. Slow consumers never block the vBox session; events
// are dropped when a peer's buffer is full.
package bridge
