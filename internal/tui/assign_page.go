package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clive/class-assigner/internal/state"
	"github.com/clive/class-assigner/internal/task"
)

// AssignField is a focusable row of the assignment form
type AssignField int

const (
	FieldClassCount AssignField = iota
	FieldOptScore
	FieldOptGender
	FieldStart
)

// AssignPageModel configures the assignment and runs the simulated job
type AssignPageModel struct {
	app      *state.App
	keys     KeyMap
	task     task.Task
	progress progress.Model
	focus    AssignField
	width    int

	// Typed class count; every keystroke is applied through the state
	editing bool
	input   textinput.Model
	notice  string
}

// NewAssignPageModel creates the assignment page
func NewAssignPageModel(app *state.App, keys KeyMap, t task.Task) AssignPageModel {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.PromptStyle = InputPromptStyle
	ti.Placeholder = strconv.Itoa(state.DefaultClassCount)
	ti.CharLimit = 2
	ti.Width = 4

	return AssignPageModel{
		app:      app,
		keys:     keys,
		task:     t,
		progress: progress.New(progress.WithDefaultGradient()),
		width:    60,
		input:    ti,
	}
}

// SetSize fits the progress bar to the content width
func (m *AssignPageModel) SetSize(width, _ int) {
	m.width = width
	m.progress.Width = max(width-8, 10)
}

// Task returns the progress task state
func (m AssignPageModel) Task() task.Task {
	return m.task
}

// Focus returns the focused form row
func (m AssignPageModel) Focus() AssignField {
	return m.focus
}

// Editing reports whether the class count is being typed
func (m AssignPageModel) Editing() bool {
	return m.editing
}

// Notice returns the message about the last typed class count
func (m AssignPageModel) Notice() string {
	return m.notice
}

// Start launches the simulated job unless one is already running
func (m *AssignPageModel) Start() tea.Cmd {
	cmd, _ := m.task.Start()
	return cmd
}

// Update handles key presses and task messages. Task messages are handled
// even when the page is not visible so a run keeps going in the background.
func (m AssignPageModel) Update(msg tea.Msg) (AssignPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case task.StepMsg:
		cmd := m.task.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Up):
			if m.focus > FieldClassCount {
				m.focus--
			}
		case key.Matches(msg, m.keys.Down):
			if m.focus < FieldStart {
				m.focus++
			}
		case key.Matches(msg, m.keys.Left):
			if m.focus == FieldClassCount {
				m.app.SetClassCount(m.app.Settings().ClassCount - 1)
			}
		case key.Matches(msg, m.keys.Right):
			if m.focus == FieldClassCount {
				m.app.SetClassCount(m.app.Settings().ClassCount + 1)
			}
		case key.Matches(msg, m.keys.Start):
			cmd := m.Start()
			return m, cmd
		case key.Matches(msg, m.keys.Toggle):
			cmd := m.press()
			return m, cmd
		}
	}
	return m, nil
}

// updateEditing feeds the typed text to the class count as it changes.
// Enter or Esc closes the input.
func (m AssignPageModel) updateEditing(msg tea.KeyMsg) (AssignPageModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	text := m.input.Value()
	m.notice = ""
	if !m.app.SetClassCountText(text) {
		if text != "" {
			m.notice = fmt.Sprintf("%q is not a whole number", text)
		}
		return m, cmd
	}
	if n, _ := strconv.Atoi(text); n != m.app.Settings().ClassCount {
		m.notice = fmt.Sprintf("kept within %d..%d", state.MinClassCount, state.MaxClassCount)
	}
	return m, cmd
}

func (m *AssignPageModel) startEditing() tea.Cmd {
	m.editing = true
	m.notice = ""
	m.input.SetValue("")
	return m.input.Focus()
}

func (m *AssignPageModel) press() tea.Cmd {
	settings := m.app.Settings()
	switch m.focus {
	case FieldClassCount:
		return m.startEditing()
	case FieldOptScore:
		m.app.SetOptScore(!settings.OptScore)
	case FieldOptGender:
		m.app.SetOptGender(!settings.OptGender)
	case FieldStart:
		return m.Start()
	}
	return nil
}

func (m AssignPageModel) field(f AssignField, text string) string {
	if m.focus == f {
		return FieldFocusedStyle.Render("▸ " + text)
	}
	return FieldStyle.Render("  " + text)
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// slider draws the class count as a bar between the bounds
func slider(value int) string {
	span := state.MaxClassCount - state.MinClassCount
	pos := value - state.MinClassCount
	const width = 27
	filled := pos * width / span
	return fmt.Sprintf("%d ├%s●%s┤ %d",
		state.MinClassCount,
		strings.Repeat("─", filled),
		strings.Repeat("─", width-filled),
		state.MaxClassCount,
	)
}

// View renders the page
func (m AssignPageModel) View() string {
	settings := m.app.Settings()
	var b strings.Builder

	b.WriteString(PageTitleStyle.Render("Assign Classes") + "\n\n")

	b.WriteString(SectionTitleStyle.Render("Number of classes") + "\n")
	b.WriteString(m.field(FieldClassCount, slider(settings.ClassCount)) +
		"  " + lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d classes", settings.ClassCount)) + "\n")
	switch {
	case m.editing:
		b.WriteString("  " + m.input.View())
		if m.notice != "" {
			b.WriteString("  " + WarningStyle.Render("⚠ "+m.notice))
		}
		b.WriteString("\n")
	case m.focus == FieldClassCount:
		b.WriteString(DimStyle.Render("  enter to type a number") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(SectionTitleStyle.Render("Optimization criteria") + "\n")
	b.WriteString(m.field(FieldOptScore, checkbox(settings.OptScore)+" Balance average score") + "\n")
	b.WriteString(m.field(FieldOptGender, checkbox(settings.OptGender)+" Balance gender ratio") + "\n\n")

	b.WriteString(SectionTitleStyle.Render("Algorithm") + "\n")
	b.WriteString(DimStyle.Render("  >> 🚧 Under Construction") + "\n")

	b.WriteString(m.renderCard())
	return b.String()
}

func (m AssignPageModel) renderCard() string {
	status := StatusIdleStyle.Render("Status: idle")
	if m.task.Running() {
		status = StatusRunningStyle.Render("Status: processing...")
	}
	percent := DimStyle.Render(fmt.Sprintf("%d%%", m.task.Progress()))
	info := lipgloss.JoinHorizontal(lipgloss.Top, status, "  ", percent)

	var button string
	switch {
	case m.task.Running():
		button = ButtonDisabledStyle.Render("⏳ Working...")
	case m.focus == FieldStart:
		button = ButtonFocusedStyle.Render("🚀 Start")
	default:
		button = ButtonStyle.Render("🚀 Start")
	}

	rows := []string{info, m.progress.ViewAs(m.task.Percent()), "", button}
	if m.task.Done() {
		rows = append(rows, "", SuccessStyle.Render("✅ All work is complete!"))
	}
	return CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
