// Package ui provides the terminal user interface for vBox tools.
//
// It has two halves: a Printer for styled one-shot command output (tables,
// error lines) and an interactive Bubble Tea monitor that shows a live view
// of every key on the box, tracking unsolicited status updates as wall
// switches are pressed and toggling the selected key on enter.
//
// Styling is centralized in styles.go so every command renders with the
// same palette and layout constants.
package ui
