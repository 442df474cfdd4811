package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the vBox terminal UI
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	OnColor      = lipgloss.Color("#43BF6D") // Green - keys that are on
	OffColor     = lipgloss.Color("#626262") // Gray - keys that are off
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Shared styles
var (
	// TitleStyle is for the monitor header line
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(1)

	// SubtitleStyle is for the box address under the title
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(1)

	// SelectedRowStyle highlights the row under the cursor
	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(PrimaryColor)

	// RowStyle is for unselected rows
	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// PowerOnStyle renders the state cell of keys that are on
	PowerOnStyle = lipgloss.NewStyle().
			Foreground(OnColor).
			Bold(true)

	// PowerOffStyle renders the state cell of keys that are off
	PowerOffStyle = lipgloss.NewStyle().
			Foreground(OffColor)

	// ErrorStyle is for error lines
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// HelpStyle is for the key binding footer
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(1)
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}
