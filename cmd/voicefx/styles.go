package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	pionopus "github.com/pion/opus"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#3C78D8")
	errorColor   = lipgloss.Color("#A40000")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(24)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

// field is one key/value line of a report.
type field struct {
	key   string
	value string
}

// printReport renders a titled box of key/value lines to stdout.
func printReport(title string, fields []field) {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	for _, f := range fields {
		sb.WriteString("\n")
		sb.WriteString(keyStyle.Render(f.key))
		sb.WriteString(valueStyle.Render(f.value))
	}
	fmt.Println(boxStyle.Render(sb.String()))
}

// printError prints an error message to stderr.
func printError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), message)
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.2f s", s)
}

func formatBandwidth(b pionopus.Bandwidth) string {
	if b == 0 {
		return "none"
	}
	return fmt.Sprintf("%s (%d kHz)", b, b.SampleRate()/1000)
}
