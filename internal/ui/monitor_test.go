package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitrealabs/vbox/internal/client"
	"github.com/vitrealabs/vbox/internal/protocol"
)

type stubController struct {
	handler    client.KeyStatusHandler
	subscribed bool
	onCalls    [][2]byte
	offCalls   [][2]byte
}

func (s *stubController) TurnKeyOn(ctx context.Context, nodeID, keyID byte) error {
	s.onCalls = append(s.onCalls, [2]byte{nodeID, keyID})
	return nil
}

func (s *stubController) TurnKeyOff(ctx context.Context, nodeID, keyID byte) error {
	s.offCalls = append(s.offCalls, [2]byte{nodeID, keyID})
	return nil
}

func (s *stubController) OnKeyStatus(h client.KeyStatusHandler) func() {
	s.handler = h
	s.subscribed = true
	return func() { s.subscribed = false }
}

func testRows() []KeyRow {
	return []KeyRow{
		{Node: 1, Key: 1, Room: "Kitchen", Name: "Ceiling", Power: protocol.PowerOff},
		{Node: 1, Key: 2, Room: "Kitchen", Name: "Counter", Power: protocol.PowerOn},
		{Node: 2, Key: 1, Room: "Bedroom", Name: "Lamp", Power: protocol.PowerOff},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "q":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	}
	return tea.KeyMsg{}
}

func TestMonitorCursorMovement(t *testing.T) {
	m := NewMonitor(&stubController{}, "192.168.1.23:11501", testRows())

	next, _ := m.Update(keyMsg("down"))
	m = next.(MonitorModel)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}

	next, _ = m.Update(keyMsg("up"))
	m = next.(MonitorModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}

	// Does not move past the ends.
	next, _ = m.Update(keyMsg("up"))
	m = next.(MonitorModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d at top after up, want 0", m.cursor)
	}
}

func TestMonitorToggleUsesRowState(t *testing.T) {
	stub := &stubController{}
	m := NewMonitor(stub, "192.168.1.23:11501", testRows())

	// Row 0 is off, so enter turns it on.
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(MonitorModel)
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	if msg, ok := cmd().(toggleDoneMsg); !ok || msg.err != nil {
		t.Fatalf("toggle result = %v", msg)
	}
	if len(stub.onCalls) != 1 || stub.onCalls[0] != [2]byte{1, 1} {
		t.Errorf("onCalls = %v, want [[1 1]]", stub.onCalls)
	}

	// Row 1 is on, so enter turns it off.
	next, _ = m.Update(toggleDoneMsg{})
	m = next.(MonitorModel)
	next, _ = m.Update(keyMsg("down"))
	m = next.(MonitorModel)
	next, cmd = m.Update(keyMsg("enter"))
	m = next.(MonitorModel)
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	cmd()
	if len(stub.offCalls) != 1 || stub.offCalls[0] != [2]byte{1, 2} {
		t.Errorf("offCalls = %v, want [[1 2]]", stub.offCalls)
	}
}

func TestMonitorAppliesStatusUpdates(t *testing.T) {
	stub := &stubController{}
	m := NewMonitor(stub, "192.168.1.23:11501", testRows())

	next, cmd := m.Update(statusMsg{node: 2, key: 1, power: protocol.PowerOn})
	m = next.(MonitorModel)
	if cmd == nil {
		t.Error("status update did not rearm the update listener")
	}
	if m.rows[2].Power != protocol.PowerOn {
		t.Errorf("row power = %s, want on", m.rows[2].Power)
	}
}

func TestMonitorQuitUnsubscribes(t *testing.T) {
	stub := &stubController{}
	m := NewMonitor(stub, "192.168.1.23:11501", testRows())
	if !stub.subscribed {
		t.Fatal("monitor did not subscribe on creation")
	}

	next, cmd := m.Update(keyMsg("q"))
	m = next.(MonitorModel)
	if cmd == nil {
		t.Fatal("quit produced no command")
	}
	if stub.subscribed {
		t.Error("monitor still subscribed after quit")
	}
	if !m.quitting {
		t.Error("quitting flag not set")
	}
}

func TestMonitorViewListsRows(t *testing.T) {
	m := NewMonitor(&stubController{}, "192.168.1.23:11501", testRows())
	view := m.View()
	for _, want := range []string{"Kitchen", "Ceiling", "Counter", "Bedroom", "192.168.1.23:11501"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
