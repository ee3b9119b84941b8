package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clive/class-assigner/internal/state"
)

const homeMarkdown = `# 🚧 Under Construction

A small program for assigning students to classes.

Everything runs on this machine. Nothing is sent to a server and nothing
is saved, so the roster is lost when the program exits.

**Steps:**

1. Build the student list
2. Run the class assignment
`

// HomePageModel is the landing page
type HomePageModel struct {
	app   *state.App
	keys  KeyMap
	width int
	body  string // rendered markdown, cached per width
}

// NewHomePageModel creates the landing page
func NewHomePageModel(app *state.App, keys KeyMap) HomePageModel {
	return HomePageModel{app: app, keys: keys}
}

// SetSize re-renders the markdown body for the new width
func (m *HomePageModel) SetSize(width, _ int) {
	if width == m.width && m.body != "" {
		return
	}
	m.width = width
	m.body = renderMarkdown(homeMarkdown, width)
}

// Update handles key presses for the page
func (m HomePageModel) Update(msg tea.Msg) (HomePageModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Increment) {
		m.app.Increment()
	}
	return m, nil
}

// View renders the page
func (m HomePageModel) View() string {
	body := m.body
	if body == "" {
		body = renderMarkdown(homeMarkdown, 60)
	}
	counter := lipgloss.JoinHorizontal(lipgloss.Center,
		ButtonStyle.Render("Increment"),
		DimStyle.Render(fmt.Sprintf("  count: %d  (press +)", m.app.Counter())),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, "", counter)
}
