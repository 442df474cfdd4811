package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vitrealabs/vbox/internal/client"
	"github.com/vitrealabs/vbox/internal/protocol"
)

// KeyRow is one switchable key shown in the monitor.
type KeyRow struct {
	Node  byte
	Key   byte
	Room  string
	Name  string
	Power protocol.KeyPowerStatus
}

// Controller is the slice of the vBox client the monitor drives.
type Controller interface {
	TurnKeyOn(ctx context.Context, nodeID, keyID byte) error
	TurnKeyOff(ctx context.Context, nodeID, keyID byte) error
	OnKeyStatus(h client.KeyStatusHandler) func()
}

type statusMsg struct {
	node  byte
	key   byte
	power protocol.KeyPowerStatus
}

type toggleDoneMsg struct{ err error }

// MonitorModel is the interactive key monitor: a live table of keys that
// tracks unsolicited status updates and toggles the selected key on enter.
type MonitorModel struct {
	ctrl Controller
	addr string
	rows []KeyRow

	cursor      int
	spin        spinner.Model
	updates     chan statusMsg
	unsubscribe func()
	busy        bool
	err         error
	quitting    bool
}

// NewMonitor builds the monitor over a pre-loaded key inventory and
// subscribes to live updates. addr is shown in the header.
func NewMonitor(ctrl Controller, addr string, rows []KeyRow) MonitorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	m := MonitorModel{
		ctrl:    ctrl,
		addr:    addr,
		rows:    rows,
		spin:    sp,
		updates: make(chan statusMsg, 16),
	}
	m.unsubscribe = ctrl.OnKeyStatus(func(ks *protocol.KeyStatusResponse) {
		select {
		case m.updates <- statusMsg{node: ks.NodeID(), key: ks.KeyID(), power: ks.Power()}:
		default:
		}
	})
	return m
}

// Init implements tea.Model
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.nextUpdate())
}

func (m MonitorModel) nextUpdate() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		return <-updates
	}
}

// Update implements tea.Model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			if m.unsubscribe != nil {
				m.unsubscribe()
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "enter", " ":
			if len(m.rows) == 0 || m.busy {
				return m, nil
			}
			m.busy = true
			m.err = nil
			return m, m.toggleSelected()
		}

	case statusMsg:
		for i := range m.rows {
			if m.rows[i].Node == msg.node && m.rows[i].Key == msg.key {
				m.rows[i].Power = msg.power
			}
		}
		return m, m.nextUpdate()

	case toggleDoneMsg:
		m.busy = false
		m.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m MonitorModel) toggleSelected() tea.Cmd {
	row := m.rows[m.cursor]
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var err error
		if row.Power == protocol.PowerOn {
			err = ctrl.TurnKeyOff(ctx, row.Node, row.Key)
		} else {
			err = ctrl.TurnKeyOn(ctx, row.Node, row.Key)
		}
		return toggleDoneMsg{err: err}
	}
}

// View implements tea.Model
func (m MonitorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("vBox key monitor"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(m.addr))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(SubtitleStyle.Render("no keys loaded"))
		b.WriteString("\n")
	}

	for i, row := range m.rows {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		label := fmt.Sprintf("%-16s %-20s node %3d key %2d  ",
			truncate(row.Room, 16), truncate(row.Name, 20), row.Node, row.Key)
		state := PowerCell(row.Power == protocol.PowerOn, row.Power.String())

		line := marker + label
		if i == m.cursor {
			line = SelectedRowStyle.Render(line)
		} else {
			line = RowStyle.Render(line)
		}
		b.WriteString(line + state + "\n")
	}

	b.WriteString("\n")
	if m.busy {
		b.WriteString(m.spin.View() + " sending...\n")
	}
	if m.err != nil {
		b.WriteString(ErrorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(HelpStyle.Render("↑/↓ select · enter toggle · q quit"))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// RunMonitor starts the monitor in the caller's terminal and blocks until
// the user quits.
func RunMonitor(ctrl Controller, addr string, rows []KeyRow) error {
	_, err := tea.NewProgram(NewMonitor(ctrl, addr, rows)).Run()
	return err
}
