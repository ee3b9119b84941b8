package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/clive/class-assigner/internal/state"
)

const debugBuffer = 100

// DebugPanel keeps a short history of state writes for display.
// It is shared by pointer: the state subscriber appends to it directly.
type DebugPanel struct {
	enabled bool
	lines   []string
	now     func() time.Time
}

// NewDebugPanel creates a new debug panel
func NewDebugPanel(enabled bool) *DebugPanel {
	return &DebugPanel{enabled: enabled, now: time.Now}
}

// IsEnabled returns whether debug mode is enabled
func (d *DebugPanel) IsEnabled() bool {
	return d != nil && d.enabled
}

// AddLine adds a new debug line with timestamp
func (d *DebugPanel) AddLine(line string) {
	if !d.IsEnabled() {
		return
	}
	d.lines = append(d.lines, d.now().Format("15:04:05.000")+" "+line)
	if len(d.lines) > debugBuffer {
		d.lines = d.lines[len(d.lines)-debugBuffer:]
	}
}

// AddChange records a state write
func (d *DebugPanel) AddChange(c state.Change) {
	switch c.Kind {
	case state.ChangeCounter, state.ChangeClassCount, state.ChangeOptScore, state.ChangeOptGender:
		d.AddLine("[" + string(c.Kind) + "]")
	default:
		d.AddLine(fmt.Sprintf("[%s] id=%d", c.Kind, c.StudentID))
	}
}

// Lines returns the current debug lines
func (d *DebugPanel) Lines() []string {
	if d == nil {
		return nil
	}
	return d.lines
}

// Render renders the most recent lines that fit in height
func (d *DebugPanel) Render(width, height int) string {
	if !d.IsEnabled() {
		return ""
	}

	title := lipgloss.NewStyle().
		Foreground(ColorYellow).
		Bold(true).
		Render("DEBUG")

	contentHeight := max(height-4, 1)
	maxLen := max(width-4, 10)

	start := max(len(d.lines)-contentHeight, 0)
	var lines []string
	for _, line := range d.lines[start:] {
		lines = append(lines, truncate(line, maxLen))
	}
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorYellow).
		Padding(0, 1).
		Render(title + "\n" + strings.Join(lines, "\n"))
}
