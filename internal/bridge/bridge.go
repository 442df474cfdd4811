package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vitrealabs/vbox/internal/client"
	"github.com/vitrealabs/vbox/internal/logging"
	"github.com/vitrealabs/vbox/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum inbound command size
	maxCommandSize = 1024

	// Per-subscriber event buffer; slow consumers are dropped when full
	eventBuffer = 32
)

// Controller is the slice of the vBox client the bridge drives. Tests
// substitute a stub.
type Controller interface {
	GetKeyStatus(ctx context.Context, nodeID, keyID byte) (*protocol.KeyStatusResponse, error)
	ToggleKey(ctx context.Context, nodeID, keyID byte, status protocol.KeyPowerStatus, dimmerRatio byte, timer uint16) error
	OnKeyStatus(h client.KeyStatusHandler) func()
}

// Event is a key status update pushed to every connected WebSocket peer.
type Event struct {
	Type string `json:"type"`
	Node byte   `json:"node"`
	Key  byte   `json:"key"`
	// Power is the symbolic power state ("on", "off", "released", ...)
	Power string `json:"power"`
}

// Command is a request from a WebSocket peer. Type is "toggle" to actuate
// a key or "status" to query one; a status query is answered with an Event
// on the same connection.
type Command struct {
	Type   string `json:"type"`
	Node   byte   `json:"node"`
	Key    byte   `json:"key"`
	Power  string `json:"power,omitempty"`
	Dimmer byte   `json:"dimmer,omitempty"`
	Timer  uint16 `json:"timer,omitempty"`
}

// errorReply is sent back when a command cannot be executed.
type errorReply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Server bridges a vBox to WebSocket clients: unsolicited key status
// updates fan out to every peer, and peers submit toggle and status
// commands as JSON.
type Server struct {
	ctrl     Controller
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	unsubscribe func()
}

type subscriber struct {
	conn *websocket.Conn
	send chan any
}

// New creates a bridge server wired to ctrl and starts listening for its
// key status updates. Call Close to detach.
func New(ctrl Controller) *Server {
	s := &Server{
		ctrl:        ctrl,
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bridge is meant for the local network; trust the LAN.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.unsubscribe = ctrl.OnKeyStatus(func(ks *protocol.KeyStatusResponse) {
		s.broadcast(statusEvent(ks.NodeID(), ks.KeyID(), ks.Power()))
	})
	return s
}

// Handler returns the HTTP handler serving the WebSocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

// Run serves the bridge on addr until the listener fails.
func (s *Server) Run(addr string) error {
	logging.Info("Bridge listening", zap.String("addr", addr))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Close detaches from the controller and disconnects every peer.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.subscribers = make(map[*subscriber]struct{})
	s.mu.Unlock()

	for _, sub := range subs {
		close(sub.send)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	logging.LogConnection(r.RemoteAddr, "bridge_peer_connected")

	sub := &subscriber{conn: conn, send: make(chan any, eventBuffer)}
	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	go s.writePump(sub)
	s.readPump(r.Context(), sub, r.RemoteAddr)
}

func (s *Server) readPump(ctx context.Context, sub *subscriber, remoteAddr string) {
	defer s.drop(sub, remoteAddr)
	sub.conn.SetReadLimit(maxCommandSize)

	for {
		_, payload, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			sub.reply(errorReply{Type: "error", Error: "malformed command"})
			continue
		}
		if err := s.execute(ctx, sub, cmd); err != nil {
			logging.Warn("Bridge command failed",
				zap.String("remote_addr", remoteAddr),
				zap.String("command", cmd.Type),
				zap.Error(err),
			)
			sub.reply(errorReply{Type: "error", Error: err.Error()})
		}
	}
}

func (s *Server) execute(ctx context.Context, sub *subscriber, cmd Command) error {
	switch cmd.Type {
	case "toggle":
		power, err := parsePower(cmd.Power)
		if err != nil {
			return err
		}
		return s.ctrl.ToggleKey(ctx, cmd.Node, cmd.Key, power, cmd.Dimmer, cmd.Timer)
	case "status":
		ks, err := s.ctrl.GetKeyStatus(ctx, cmd.Node, cmd.Key)
		if err != nil {
			return err
		}
		sub.reply(statusEvent(ks.NodeID(), ks.KeyID(), ks.Power()))
		return nil
	default:
		return fmt.Errorf("unknown command type %q", cmd.Type)
	}
}

func (s *Server) writePump(sub *subscriber) {
	for msg := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteJSON(msg); err != nil {
			return
		}
	}
	_ = sub.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "bridge shutting down"))
	_ = sub.conn.Close()
}

// broadcast queues an event for every peer, skipping ones whose buffers
// are full.
func (s *Server) broadcast(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subscribers {
		select {
		case sub.send <- ev:
		default:
		}
	}
}

func (s *Server) drop(sub *subscriber, remoteAddr string) {
	s.mu.Lock()
	_, present := s.subscribers[sub]
	delete(s.subscribers, sub)
	s.mu.Unlock()

	if present {
		close(sub.send)
	}
	sub.conn.Close()
	logging.LogConnection(remoteAddr, "bridge_peer_disconnected")
}

func (sub *subscriber) reply(msg any) {
	select {
	case sub.send <- msg:
	default:
	}
}

func statusEvent(node, key byte, power protocol.KeyPowerStatus) Event {
	return Event{Type: "key_status", Node: node, Key: key, Power: power.String()}
}

func parsePower(s string) (protocol.KeyPowerStatus, error) {
	switch s {
	case "on":
		return protocol.PowerOn, nil
	case "off":
		return protocol.PowerOff, nil
	case "long":
		return protocol.PowerLong, nil
	case "short":
		return protocol.PowerShort, nil
	case "released":
		return protocol.PowerReleased, nil
	default:
		return 0, fmt.Errorf("unknown power state %q", s)
	}
}
