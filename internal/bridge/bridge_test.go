package bridge

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitrealabs/vbox/internal/client"
	"github.com/vitrealabs/vbox/internal/protocol"
)

type toggleCall struct {
	node, key byte
	power     protocol.KeyPowerStatus
	dimmer    byte
	timer     uint16
}

// stubController stands in for the vBox client.
type stubController struct {
	mu          sync.Mutex
	handler     client.KeyStatusHandler
	toggles     []toggleCall
	statusPower protocol.KeyPowerStatus
}

func (s *stubController) GetKeyStatus(ctx context.Context, nodeID, keyID byte) (*protocol.KeyStatusResponse, error) {
	s.mu.Lock()
	power := s.statusPower
	s.mu.Unlock()
	raw := protocol.BuildFrame(protocol.DirectionIncoming, protocol.CmdKeyStatus, 1,
		[]byte{nodeID, keyID, byte(power)})
	d, err := protocol.DecodeFrame(raw)
	if err != nil {
		return nil, err
	}
	return protocol.ResponseFromFrame(d, protocol.V2).(*protocol.KeyStatusResponse), nil
}

func (s *stubController) ToggleKey(ctx context.Context, nodeID, keyID byte, status protocol.KeyPowerStatus, dimmerRatio byte, timer uint16) error {
	s.mu.Lock()
	s.toggles = append(s.toggles, toggleCall{nodeID, keyID, status, dimmerRatio, timer})
	s.mu.Unlock()
	return nil
}

func (s *stubController) OnKeyStatus(h client.KeyStatusHandler) func() {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.handler = nil
		s.mu.Unlock()
	}
}

// fire pushes an unsolicited key status into the bridge, as the client
// would on wall switch presses.
func (s *stubController) fire(t *testing.T, node, key byte, power protocol.KeyPowerStatus) {
	t.Helper()
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		t.Fatal("bridge never subscribed to key status updates")
	}
	raw := protocol.BuildFrame(protocol.DirectionIncoming, protocol.CmdKeyStatus, 0,
		[]byte{node, key, byte(power)})
	d, err := protocol.DecodeFrame(raw)
	if err != nil {
		t.Fatal(err)
	}
	h(protocol.ResponseFromFrame(d, protocol.V2).(*protocol.KeyStatusResponse))
}

func (s *stubController) toggleCalls() []toggleCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]toggleCall(nil), s.toggles...)
}

func dialBridge(t *testing.T, stub *stubController) (*Server, *websocket.Conn) {
	t.Helper()
	srv := New(stub)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return srv, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return ev
}

func TestBridgeBroadcastsKeyStatus(t *testing.T) {
	stub := &stubController{}
	_, conn := dialBridge(t, stub)

	stub.fire(t, 5, 1, protocol.PowerOn)

	ev := readEvent(t, conn)
	if ev.Type != "key_status" || ev.Node != 5 || ev.Key != 1 || ev.Power != "on" {
		t.Errorf("event = %+v", ev)
	}
}

func TestBridgeToggleCommand(t *testing.T) {
	stub := &stubController{}
	_, conn := dialBridge(t, stub)

	cmd := Command{Type: "toggle", Node: 3, Key: 2, Power: "on", Dimmer: 80, Timer: 30}
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(stub.toggleCalls()) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	calls := stub.toggleCalls()
	if len(calls) != 1 {
		t.Fatalf("toggle calls = %d, want 1", len(calls))
	}
	got := calls[0]
	want := toggleCall{node: 3, key: 2, power: protocol.PowerOn, dimmer: 80, timer: 30}
	if got != want {
		t.Errorf("toggle = %+v, want %+v", got, want)
	}
}

func TestBridgeStatusCommand(t *testing.T) {
	stub := &stubController{statusPower: protocol.PowerOff}
	_, conn := dialBridge(t, stub)

	if err := conn.WriteJSON(Command{Type: "status", Node: 7, Key: 4}); err != nil {
		t.Fatal(err)
	}

	ev := readEvent(t, conn)
	if ev.Type != "key_status" || ev.Node != 7 || ev.Key != 4 || ev.Power != "off" {
		t.Errorf("event = %+v", ev)
	}
}

func TestBridgeRejectsUnknownCommand(t *testing.T) {
	stub := &stubController{}
	_, conn := dialBridge(t, stub)

	if err := conn.WriteJSON(Command{Type: "reboot"}); err != nil {
		t.Fatal(err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var reply struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if reply.Type != "error" || reply.Error == "" {
		t.Errorf("reply = %+v, want error", reply)
	}
}

func TestBridgeCloseDetaches(t *testing.T) {
	stub := &stubController{}
	srv, _ := dialBridge(t, stub)

	srv.Close()

	stub.mu.Lock()
	h := stub.handler
	stub.mu.Unlock()
	if h != nil {
		t.Error("bridge still subscribed after Close")
	}
}
