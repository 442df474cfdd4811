package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vitrealabs/vbox/internal/config"
	"github.com/vitrealabs/vbox/internal/logging"
	"github.com/vitrealabs/vbox/internal/protocol"
)

// Client maintains a session with one vBox: a single TCP connection, a
// read loop that correlates responses with in-flight requests, an idle
// heartbeat, and optional reconnection with backoff.
//
// All methods are safe for concurrent use. Multiple requests may be in
// flight at once; responses are matched by message id regardless of
// arrival order.
type Client struct {
	connCfg config.Connection
	sockCfg config.Socket

	ids     *messageIDAllocator
	pending *pendingTable
	events  *dispatcher

	mu           sync.Mutex
	conn         net.Conn
	hb           *heartbeat
	closed       bool
	reconnecting bool

	writeMu   sync.Mutex
	lastWrite time.Time

	// reconnect backoff bounds, overridable in tests
	reconnectInitial time.Duration
	reconnectMax     time.Duration
}

// New creates a client for the given box. No connection is opened until
// Connect is called.
func New(conn config.Connection, sock config.Socket) *Client {
	return &Client{
		connCfg:          conn,
		sockCfg:          sock,
		ids:              &messageIDAllocator{},
		pending:          newPendingTable(),
		events:           newDispatcher(),
		reconnectInitial: time.Second,
		reconnectMax:     30 * time.Second,
	}
}

// NewFromEnv creates a client configured from defaults plus VITREA_VBOX_*
// environment overrides.
func NewFromEnv() *Client {
	return New(config.ConnectionFromEnv(), config.SocketFromEnv())
}

// Addr returns the host:port this client talks to.
func (c *Client) Addr() string {
	return c.connCfg.Addr()
}

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Connect dials the box and performs session setup: it enables the box
// heartbeat and unsolicited status updates, then logs in when credentials
// are configured. Returns ErrConnectionExists if already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if c.conn != nil {
		c.mu.Unlock()
		return ErrConnectionExists
	}
	c.mu.Unlock()

	dial := c.sockCfg.Dial
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	dialCtx := ctx
	if c.sockCfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.sockCfg.RequestTimeout)
		defer cancel()
	}

	conn, err := dial(dialCtx, "tcp", c.connCfg.Addr())
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.connCfg.Addr(), err)
	}

	c.mu.Lock()
	if c.closed || c.conn != nil {
		closed := c.closed
		c.mu.Unlock()
		conn.Close()
		if closed {
			return ErrClientClosed
		}
		return ErrConnectionExists
	}
	c.conn = conn
	c.hb = newHeartbeat(c.sockCfg.HeartbeatInterval, func() { c.keepalive(conn) })
	c.mu.Unlock()

	go c.readLoop(conn)
	logging.LogConnection(c.connCfg.Addr(), "connected")

	if err := c.setupSession(ctx); err != nil {
		c.dropConn(conn, err)
		return err
	}
	return nil
}

// setupSession runs the handshake the box expects right after the socket
// opens: ToggleHeartbeat so the box pushes status updates, then Login when
// credentials are present.
func (c *Client) setupSession(ctx context.Context) error {
	if _, err := c.Send(ctx, protocol.NewToggleHeartbeat(true, true)); err != nil {
		return fmt.Errorf("enable heartbeat: %w", err)
	}
	if c.connCfg.HasCredentials() {
		if _, err := c.Send(ctx, protocol.NewLogin(c.connCfg.Username, c.connCfg.Password)); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		logging.Info("Logged in to vBox", zap.String("username", c.connCfg.Username))
	}
	return nil
}

// Disconnect closes the connection and permanently disables reconnection.
// Every in-flight request fails with ErrConnectionLost.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		c.dropConn(conn, nil)
	}
	return nil
}

// Send transmits req and, when the request expects a reply, blocks until
// the correlated response arrives, the request timeout passes, or ctx is
// cancelled. For fire-and-forget requests the returned response is nil.
func (c *Client) Send(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	c.mu.Lock()
	conn := c.conn
	hb := c.hb
	c.mu.Unlock()
	if conn == nil {
		return nil, ErrNoConnection
	}

	messageID := c.ids.Next()
	frame := req.Encode(messageID)

	var key pendingKey
	var ch chan pendingResult
	if req.ExpectsReply {
		key, ch = c.pending.register(req.ReplyCommand, messageID)
	}

	if err := c.writeFrame(conn, hb, req.Command, messageID, frame); err != nil {
		if req.ExpectsReply {
			c.pending.remove(key)
		}
		return nil, err
	}
	if !req.ExpectsReply {
		return nil, nil
	}

	timeout := c.sockCfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.response, res.err
	case <-timer.C:
		if !c.pending.remove(key) {
			// The response won the race; it is buffered in the channel.
			res := <-ch
			return res.response, res.err
		}
		return nil, fmt.Errorf("%s: %w after %s", req.Command, ErrTimeout, timeout)
	case <-ctx.Done():
		if !c.pending.remove(key) {
			res := <-ch
			return res.response, res.err
		}
		return nil, ctx.Err()
	}
}

// writeFrame serializes writes and enforces the pacing gap between
// consecutive commands; the box drops commands that arrive back to back.
func (c *Client) writeFrame(conn net.Conn, hb *heartbeat, cmd protocol.CommandID, messageID byte, frame []byte) error {
	c.writeMu.Lock()
	if gap := c.sockCfg.RequestBuffer; gap > 0 && !c.lastWrite.IsZero() {
		if wait := gap - time.Since(c.lastWrite); wait > 0 {
			time.Sleep(wait)
		}
	}
	_, err := conn.Write(frame)
	c.lastWrite = time.Now()
	c.writeMu.Unlock()

	if err != nil {
		c.dropConn(conn, err)
		return fmt.Errorf("write %s: %w", cmd, err)
	}
	if hb != nil {
		hb.reset()
	}
	if !(c.sockCfg.IgnoreAckLogs && cmd == protocol.CmdHeartbeat) {
		logging.LogFrame("sent", cmd.String(), messageID, frame)
	}
	return nil
}

// keepalive writes a heartbeat without waiting for its acknowledgement.
func (c *Client) keepalive(conn net.Conn) {
	c.mu.Lock()
	current := c.conn
	hb := c.hb
	c.mu.Unlock()
	if current != conn {
		return
	}

	req := protocol.NewHeartbeat()
	messageID := c.ids.Next()
	_ = c.writeFrame(conn, hb, req.Command, messageID, req.Encode(messageID))
}

// readLoop reads from conn until it fails, reassembling frames from the
// byte stream and routing each one.
func (c *Client) readLoop(conn net.Conn) {
	var splitter protocol.Splitter
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			for _, raw := range splitter.Feed(buf[:n]) {
				c.handleFrame(raw)
			}
		}
		if err != nil {
			c.dropConn(conn, err)
			return
		}
	}
}

// handleFrame decodes one reassembled frame and routes it: to the waiting
// request when one matches, otherwise to key status subscribers. A frame
// never goes to both.
func (c *Client) handleFrame(raw []byte) {
	d, err := protocol.DecodeFrame(raw)
	if err != nil {
		logging.Warn("Discarding malformed frame",
			zap.Error(err),
			zap.String("hex", protocol.HexString(raw)),
		)
		return
	}

	resp := protocol.ResponseFromFrame(d, c.connCfg.Version)

	if !c.quietFrame(resp) {
		logging.LogFrame("received", d.CommandID().String(), d.MessageID(), raw)
	}

	if c.pending.resolve(d.CommandID(), d.MessageID(), resp) {
		return
	}

	if ks, ok := resp.(*protocol.KeyStatusResponse); ok {
		c.events.dispatch(ks)
	}
}

// quietFrame reports whether per-frame logging is suppressed for resp.
func (c *Client) quietFrame(resp protocol.Response) bool {
	if !c.sockCfg.IgnoreAckLogs {
		return false
	}
	switch resp.(type) {
	case *protocol.Acknowledgement, *protocol.GenericUnusedResponse:
		return true
	}
	return false
}

// dropConn tears down conn if it is still the active connection: stops the
// heartbeat, fails every in-flight request, and kicks off reconnection
// when configured. Safe to call multiple times for the same conn.
func (c *Client) dropConn(conn net.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	hb := c.hb
	c.hb = nil
	closed := c.closed
	reconnect := c.sockCfg.ShouldReconnect && !closed && !c.reconnecting
	if reconnect {
		c.reconnecting = true
	}
	c.mu.Unlock()

	if hb != nil {
		hb.stop()
	}
	conn.Close()
	c.pending.failAll(ErrConnectionLost)

	logging.LogConnection(c.connCfg.Addr(), "disconnected")
	if cause != nil && !closed {
		logging.Warn("Connection lost", zap.Error(cause))
	}

	if reconnect {
		go c.reconnectLoop()
	}
}
