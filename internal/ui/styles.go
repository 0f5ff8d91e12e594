// Package ui is the interactive terminal front end: a prompt wired to the
// session and a live summary of the simulated host.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#00ccff")
	colorSuccess = lipgloss.Color("#00ff88")
	colorError   = lipgloss.Color("#ff4444")
	colorMuted   = lipgloss.Color("#737373")
	colorText    = lipgloss.Color("#e5e5e5")
)

const (
	markSuccess = "✓"
	markFailure = "✗"
	dotRunning  = "●"
	dotStopped  = "○"
)

type theme struct {
	Title   lipgloss.Style
	Prompt  lipgloss.Style
	Command lipgloss.Style
	Output  lipgloss.Style
	System  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Stats   lipgloss.Style
}

var styles = theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary),
	Prompt: lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSuccess),
	Command: lipgloss.NewStyle().
		Foreground(colorText),
	Output: lipgloss.NewStyle().
		Foreground(colorText).
		PaddingLeft(2),
	System: lipgloss.NewStyle().
		Italic(true).
		Foreground(colorPrimary),
	Success: lipgloss.NewStyle().
		Foreground(colorSuccess),
	Error: lipgloss.NewStyle().
		Foreground(colorError),
	Muted: lipgloss.NewStyle().
		Foreground(colorMuted),
	Stats: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1),
}
