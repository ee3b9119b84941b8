package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const infoMarkdown = `# Program info

Press the start button on the **Assign Classes** page to launch the
background job. The progress bar advances while the rest of the program
stays responsive.

The balancing algorithm itself is not implemented yet; the job only
simulates work.
`

// InfoPageModel shows the program information in a scrollable viewport
type InfoPageModel struct {
	keys     KeyMap
	viewport viewport.Model
	width    int
}

// NewInfoPageModel creates the info page
func NewInfoPageModel(keys KeyMap) InfoPageModel {
	vp := viewport.New(60, 10)
	vp.SetContent(renderMarkdown(infoMarkdown, 60))
	return InfoPageModel{keys: keys, viewport: vp, width: 60}
}

// SetSize resizes the viewport and re-renders for the new width
func (m *InfoPageModel) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = max(height, 1)
	if width != m.width {
		m.width = width
		m.viewport.SetContent(renderMarkdown(infoMarkdown, width))
	}
}

// Update scrolls the viewport
func (m InfoPageModel) Update(msg tea.Msg) (InfoPageModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.viewport.LineUp(1)
		case key.Matches(msg, m.keys.Down):
			m.viewport.LineDown(1)
		case key.Matches(msg, m.keys.PageUp):
			m.viewport.HalfViewUp()
		case key.Matches(msg, m.keys.PageDown):
			m.viewport.HalfViewDown()
		}
	}
	return m, nil
}

// View renders the page
func (m InfoPageModel) View() string {
	return m.viewport.View()
}
