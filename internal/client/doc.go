// Package client maintains sessions with Vitrea vBox controllers.
//
// A Client owns one TCP connection to a box and everything that keeps it
// healthy: a read loop that reassembles and decodes frames, a pending
// table that correlates responses with in-flight requests by message id,
// an idle heartbeat, and optional reconnection with exponential backoff.
//
// # Requests and Responses
//
// Send transmits a protocol.Request and blocks until the correlated
// response arrives. Requests may be issued concurrently from any number of
// goroutines; correlation is by message id, so responses arriving out of
// order reach the right caller. Convenience wrappers cover every vBox
// operation:
//
//	rooms, err := c.GetRoomCount(ctx)
//	status, err := c.GetKeyStatus(ctx, node, key)
//	err = c.TurnKeyOn(ctx, node, key)
//
// # Unsolicited Updates
//
// The box pushes key status frames when a wall switch is pressed or a
// timer expires. Subscribe with OnKeyStatus:
//
//	cancel := c.OnKeyStatus(func(ks *protocol.KeyStatusResponse) {
//	    fmt.Printf("node %d key %d is %s\n", ks.NodeID(), ks.KeyID(), ks.Power())
//	})
//	defer cancel()
//
// A frame is delivered either to the request that solicited it or to
// handlers, never both.
//
// # Lifecycle
//
//	c := client.New(config.ConnectionFromEnv(), config.SocketFromEnv())
//	if err := c.Connect(ctx); err != nil {
//	    return err
//	}
//	defer c.Disconnect()
//
// Connect performs session setup (heartbeat enablement and login) before
// returning. When the connection drops and reconnection is enabled, the
// client re-dials in the background; requests issued while the link is
// down fail with ErrNoConnection.
package client
