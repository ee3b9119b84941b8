package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders md for the given wrap width. On renderer errors
// the raw markdown is returned so the page still shows its text.
func renderMarkdown(md string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
