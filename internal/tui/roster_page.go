package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clive/class-assigner/internal/model"
	"github.com/clive/class-assigner/internal/roster"
	"github.com/clive/class-assigner/internal/state"
)

// RosterColumn is an editable column of the student table
type RosterColumn int

const (
	ColumnName RosterColumn = iota
	ColumnGender
	ColumnScore
	ColumnNote
)

var rosterColumnTitles = []string{"Name", "Gender", "Score", "Note"}

const (
	namePlaceholder = "(enter name)"
	notePlaceholder = "(no remarks)"
)

// RosterPageModel is the student list editor
type RosterPageModel struct {
	app   *state.App
	keys  KeyMap
	table table.Model

	column  RosterColumn
	editing bool
	editID  model.StudentID
	input   textinput.Model

	// Last validation message; cleared by the next valid edit
	status string

	width  int
	height int
}

// NewRosterPageModel creates the student list editor
func NewRosterPageModel(app *state.App, keys KeyMap) RosterPageModel {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(15),
	)

	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.PromptStyle = InputPromptStyle
	ti.CharLimit = 200
	ti.Width = 40

	m := RosterPageModel{
		app:   app,
		keys:  keys,
		table: t,
		input: ti,
		width: 80,
	}
	m.layoutColumns()
	m.Refresh()
	return m
}

// SetSize fits the table to the content area
func (m *RosterPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	// Leave room for the edit line and the status line
	m.table.SetHeight(max(height-4, 3))
	m.input.Width = max(width-30, 10)
	m.layoutColumns()
}

// Refresh reloads rows from the state snapshot
func (m *RosterPageModel) Refresh() {
	students := m.app.Students()
	rows := make([]table.Row, 0, len(students))
	for _, s := range students {
		rows = append(rows, table.Row{
			strconv.FormatUint(uint64(s.ID), 10),
			s.Name.OrDefault(namePlaceholder),
			s.Gender.Label(),
			fmt.Sprintf("%.1f", s.Score),
			s.Note.OrDefault(notePlaceholder),
		})
	}
	m.table.SetRows(rows)
	if n := len(rows); m.table.Cursor() >= n {
		m.table.SetCursor(max(n-1, 0))
	}

	// A stale edit target means the row was removed
	if m.editing {
		if _, ok := m.app.Student(m.editID); !ok {
			m.stopEditing()
		}
	}
}

// Editing reports whether a cell editor has focus
func (m RosterPageModel) Editing() bool {
	return m.editing
}

// Column returns the selected column
func (m RosterPageModel) Column() RosterColumn {
	return m.column
}

// Status returns the last validation message
func (m RosterPageModel) Status() string {
	return m.status
}

// SelectedID returns the id of the student under the cursor
func (m RosterPageModel) SelectedID() (model.StudentID, bool) {
	students := m.app.Students()
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(students) {
		return 0, false
	}
	return students[cursor].ID, true
}

// Update handles messages
func (m RosterPageModel) Update(msg tea.Msg) (RosterPageModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		return m.updateEditing(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Add):
		m.app.AddStudent()
		m.Refresh()
		m.table.GotoBottom()
		return m, nil

	case key.Matches(keyMsg, m.keys.Delete):
		if id, ok := m.SelectedID(); ok {
			m.app.RemoveStudent(id)
			m.Refresh()
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Gender):
		m.toggleGender()
		return m, nil

	case key.Matches(keyMsg, m.keys.Left):
		if m.column > ColumnName {
			m.column--
			m.layoutColumns()
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Right):
		if m.column < ColumnNote {
			m.column++
			m.layoutColumns()
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Edit):
		if m.column == ColumnGender {
			m.toggleGender()
			return m, nil
		}
		cmd := m.startEditing()
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(keyMsg)
	return m, cmd
}

// updateEditing applies every keystroke to the state immediately, the way
// an input's change handler would. Enter or Esc closes the editor.
func (m RosterPageModel) updateEditing(msg tea.KeyMsg) (RosterPageModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.apply(m.input.Value())
	m.Refresh()
	return m, cmd
}

func (m *RosterPageModel) apply(value string) {
	var err error
	switch m.column {
	case ColumnName:
		err = m.app.UpdateName(m.editID, value)
	case ColumnNote:
		err = m.app.UpdateNote(m.editID, value)
	case ColumnScore:
		err = m.app.UpdateScore(m.editID, value)
	}

	var scoreErr *roster.ScoreError
	switch {
	case errors.As(err, &scoreErr):
		m.status = scoreErr.Error()
	case err == nil:
		m.status = ""
	}
}

func (m *RosterPageModel) startEditing() tea.Cmd {
	id, ok := m.SelectedID()
	if !ok {
		return nil
	}
	s, _ := m.app.Student(id)

	var value string
	switch m.column {
	case ColumnName:
		value = s.Name.OrDefault("")
		m.input.Placeholder = "enter name"
	case ColumnNote:
		value = s.Note.OrDefault("")
		m.input.Placeholder = "no remarks"
	case ColumnScore:
		value = strconv.FormatFloat(s.Score, 'f', -1, 64)
		m.input.Placeholder = "0.0"
	}

	m.editing = true
	m.editID = id
	m.status = ""
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.table.Blur()
	return m.input.Focus()
}

func (m *RosterPageModel) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.table.Focus()
}

func (m *RosterPageModel) toggleGender() {
	id, ok := m.SelectedID()
	if !ok {
		return
	}
	s, _ := m.app.Student(id)
	_ = m.app.UpdateGender(id, s.Gender.Toggle().Value())
	m.Refresh()
}

// layoutColumns sizes the columns and marks the selected one
func (m *RosterPageModel) layoutColumns() {
	const idWidth, genderWidth, scoreWidth = 5, 7, 7
	flex := max(m.width-idWidth-genderWidth-scoreWidth-12, 20)
	nameWidth := flex / 2
	noteWidth := flex - nameWidth

	widths := []int{nameWidth, genderWidth, scoreWidth, noteWidth}
	columns := []table.Column{{Title: "ID", Width: idWidth}}
	for i, title := range rosterColumnTitles {
		if RosterColumn(i) == m.column {
			title = "▸" + title
		}
		columns = append(columns, table.Column{Title: title, Width: widths[i]})
	}
	m.table.SetColumns(columns)
}

// View renders the page
func (m RosterPageModel) View() string {
	title := PageTitleStyle.Render("Students") +
		DimStyle.Render(fmt.Sprintf("  %d total · next id %d", m.app.StudentCount(), m.app.NextStudentID()))

	var editLine string
	if m.editing {
		editLine = CellEditStyle.Render(fmt.Sprintf(" %s #%d ", rosterColumnTitles[m.column], m.editID)) +
			" " + m.input.View()
	} else {
		editLine = ColumnActiveStyle.Render("▸ "+rosterColumnTitles[m.column]) +
			"  " + DimStyle.Render("←/→ column · enter edit · a add · x delete · g gender")
	}

	var statusLine string
	if m.status != "" {
		statusLine = ErrorStyle.Render("✗ " + m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.table.View(),
		editLine,
		statusLine,
	)
}
