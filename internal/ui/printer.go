package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled command output. CLI commands use it instead of
// bare fmt so table layout and colors stay consistent.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer writing to w; nil means os.Stdout.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// PrintTitle writes a bold section title
func (p *Printer) PrintTitle(title string) {
	p.Println(TitleStyle.Render(title))
}

// PrintError writes a styled error line
func (p *Printer) PrintError(err error) {
	p.Println(ErrorStyle.Render("error: " + err.Error()))
}

// PrintRow writes an aligned two-column row (label, value)
func (p *Printer) PrintRow(label, value string) {
	labelStyled := lipgloss.NewStyle().Foreground(MutedColor).Width(16).Render(label)
	p.Println("  " + labelStyled + RowStyle.Render(value))
}

// PowerCell renders a power state with its conventional color
func PowerCell(on bool, text string) string {
	if on {
		return PowerOnStyle.Render(text)
	}
	return PowerOffStyle.Render(text)
}
