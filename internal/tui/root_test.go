package tui

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clive/class-assigner/internal/model"
	"github.com/clive/class-assigner/internal/roster"
	"github.com/clive/class-assigner/internal/router"
	"github.com/clive/class-assigner/internal/state"
	"github.com/clive/class-assigner/internal/task"
)

// createTestModel returns a sized root model over a three student roster
func createTestModel(t *testing.T) Model {
	t.Helper()
	r := roster.Seed(3, rand.New(rand.NewPCG(7, 7)))
	app := state.New(r, state.DefaultSettings())
	m := NewRootModel(Options{
		App:   app,
		Task:  task.New(time.Millisecond),
		Route: "/",
		Debug: true,
	})
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = update(t, m, runes(string(r)))
	}
	return m
}

func TestNewRootModelStartRoute(t *testing.T) {
	tests := []struct {
		name  string
		route string
		want  router.Page
	}{
		{"empty", "", router.PageHome},
		{"home", "/", router.PageHome},
		{"students", "/student-list", router.PageStudentList},
		{"assign", "/assign-class", router.PageAssignClass},
		{"info", "/info", router.PageInfo},
		{"unknown", "/nope/deeper", router.PageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewRootModel(Options{Route: tt.route})
			assert.Equal(t, tt.want, m.Route().Page)
		})
	}
}

func TestViewBeforeWindowSize(t *testing.T) {
	m := NewRootModel(Options{})
	assert.Equal(t, "Loading...", m.View())
}

func TestSidebarNavigationKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want router.Page
	}{
		{"1 home", runes("1"), router.PageHome},
		{"2 students", runes("2"), router.PageStudentList},
		{"3 assign", runes("3"), router.PageAssignClass},
		{"4 info", runes("4"), router.PageInfo},
		{"tab cycles forward", tea.KeyMsg{Type: tea.KeyTab}, router.PageStudentList},
		{"shift+tab wraps back", tea.KeyMsg{Type: tea.KeyShiftTab}, router.PageInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := createTestModel(t)
			m = update(t, m, tt.key)
			assert.Equal(t, tt.want, m.Route().Page)
		})
	}
}

func TestPathBarNavigatesToUnknownPath(t *testing.T) {
	m := createTestModel(t)

	m = update(t, m, runes(":"))
	require.True(t, m.inputFocused)
	assert.Equal(t, "/", m.input.Value())

	m = typeText(t, m, "classes/2024")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.inputFocused)
	assert.Equal(t, router.PageNotFound, m.Route().Page)
	assert.Equal(t, []string{"classes", "2024"}, m.Route().Segments)

	view := m.View()
	assert.Contains(t, view, "Page not found.")
	assert.Contains(t, view, "2024")

	// esc leaves the not-found page
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, router.PageHome, m.Route().Page)
}

func TestPathBarTabCompletes(t *testing.T) {
	m := createTestModel(t)

	m = update(t, m, runes(":"))
	m = typeText(t, m, "as")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "/assign-class", m.input.Value())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, router.PageAssignClass, m.Route().Page)
}

func TestPathBarSwallowsGlobalKeys(t *testing.T) {
	m := createTestModel(t)

	m = update(t, m, runes(":"))
	m = typeText(t, m, "q2")
	assert.True(t, m.inputFocused)
	assert.Equal(t, "/q2", m.input.Value())
	assert.Equal(t, router.PageHome, m.Route().Page)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.inputFocused)
	assert.Equal(t, "", m.input.Value())
}

func TestHomeIncrement(t *testing.T) {
	m := createTestModel(t)

	m = update(t, m, runes("+"))
	m = update(t, m, runes("+"))

	assert.Equal(t, 2, m.app.Counter())
	assert.Contains(t, m.View(), "count: 2")
}

func TestStateChangesReachTheView(t *testing.T) {
	m := createTestModel(t)

	m.app.Increment()
	cmd := waitForChange(m.changes)
	msg := cmd()

	changed, ok := msg.(stateChangedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, state.ChangeCounter, changed.change.Kind)

	m = update(t, m, changed)
	assert.Equal(t, 1, m.Revision())
	assert.NotEmpty(t, m.debug.Lines())
}

func TestStateChangesCoalesce(t *testing.T) {
	m := createTestModel(t)

	// Only one pending notification is buffered; writes never block
	for range 5 {
		m.app.Increment()
	}
	assert.Len(t, m.changes, 1)
	assert.Equal(t, 5, m.app.Counter())
}

func TestWaitForChangeClosedChannel(t *testing.T) {
	ch := make(chan state.Change)
	close(ch)

	msg := waitForChange(ch)()
	assert.Nil(t, msg)
}

func TestRosterAddAndDelete(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("2"))

	m = update(t, m, runes("a"))
	assert.Equal(t, 4, m.app.StudentCount())
	assert.Equal(t, model.StudentID(4), m.app.NextStudentID())

	// cursor follows the new row
	id, ok := m.students.SelectedID()
	require.True(t, ok)
	assert.Equal(t, model.StudentID(3), id)

	m = update(t, m, runes("x"))
	assert.Equal(t, 3, m.app.StudentCount())
	_, found := m.app.Student(3)
	assert.False(t, found)

	// ids are never reused
	m = update(t, m, runes("a"))
	id, _ = m.students.SelectedID()
	assert.Equal(t, model.StudentID(4), id)
}

func TestRosterEditName(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("2"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.students.Editing())

	// global keys are typed into the cell while editing
	m = typeText(t, m, "q1 Ann")
	s, _ := m.app.Student(0)
	assert.Equal(t, "q1 Ann", s.Name.OrDefault(""))
	assert.Equal(t, router.PageStudentList, m.Route().Page)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.students.Editing())
}

func TestRosterEditScoreKeepsValueOnBadInput(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("2"))

	// Name -> Gender -> Score
	m = update(t, m, runes("l"))
	m = update(t, m, runes("l"))
	require.Equal(t, ColumnScore, m.students.Column())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.students.Editing())

	// clear the field, then type a value that does not parse
	for range 20 {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	// each keystroke applies, so the last parsable prefix has landed
	cleared, _ := m.app.Student(0)
	m = typeText(t, m, "abc")

	after, _ := m.app.Student(0)
	assert.Equal(t, cleared.Score, after.Score)
	assert.NotEmpty(t, m.students.Status())

	for range 3 {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = typeText(t, m, "42.5")
	after, _ = m.app.Student(0)
	assert.Equal(t, 42.5, after.Score)
	assert.Empty(t, m.students.Status())
}

func TestRosterToggleGender(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("2"))
	before, _ := m.app.Student(0)

	m = update(t, m, runes("g"))
	after, _ := m.app.Student(0)
	assert.Equal(t, before.Gender.Toggle(), after.Gender)
}

func TestRosterRemovedRowStopsEditing(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("2"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.students.Editing())

	m.app.RemoveStudent(0)
	m = update(t, m, stateChangedMsg{change: state.Change{Kind: state.ChangeStudentRemove, StudentID: 0}})
	assert.False(t, m.students.Editing())
}

func TestAssignClassCountBounds(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("3"))

	for range 40 {
		m = update(t, m, runes("l"))
	}
	assert.Equal(t, state.MaxClassCount, m.app.Settings().ClassCount)

	for range 40 {
		m = update(t, m, runes("h"))
	}
	assert.Equal(t, state.MinClassCount, m.app.Settings().ClassCount)
}

func TestAssignTypedClassCount(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("3"))
	require.Equal(t, FieldClassCount, m.assign.Focus())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.assign.Editing())

	// digits go to the input, not to the sidebar shortcuts
	m = typeText(t, m, "1")
	assert.Equal(t, router.PageAssignClass, m.Route().Page)
	assert.Equal(t, state.MinClassCount, m.app.Settings().ClassCount)
	assert.NotEmpty(t, m.assign.Notice())

	m = typeText(t, m, "5")
	assert.Equal(t, 15, m.app.Settings().ClassCount)
	assert.Empty(t, m.assign.Notice())
	assert.Contains(t, m.View(), "15 classes")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.assign.Editing())
	assert.Equal(t, 15, m.app.Settings().ClassCount)

	// back to global keys once closed
	m = update(t, m, runes("1"))
	assert.Equal(t, router.PageHome, m.Route().Page)
}

func TestAssignTypedClassCountClampsAndRejects(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("3"))
	m = update(t, m, runes(" "))
	require.True(t, m.assign.Editing())

	m = typeText(t, m, "99")
	assert.Equal(t, state.MaxClassCount, m.app.Settings().ClassCount)
	assert.Contains(t, m.assign.Notice(), "kept within")
	assert.Contains(t, m.View(), "kept within")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = typeText(t, m, "x")
	assert.Equal(t, state.MaxClassCount, m.app.Settings().ClassCount)
	assert.Contains(t, m.assign.Notice(), "not a whole number")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.assign.Editing())
}

func TestAssignToggles(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("3"))

	m = update(t, m, runes("j"))
	require.Equal(t, FieldOptScore, m.assign.Focus())
	m = update(t, m, runes(" "))
	assert.False(t, m.app.Settings().OptScore)

	m = update(t, m, runes("j"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.app.Settings().OptGender)
}

func TestAssignRunKeepsGoingOffPage(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("3"))

	next, cmd := m.Update(runes("s"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.assign.Task().Running())
	assert.Contains(t, m.View(), "processing")

	// a second start while running is a no-op
	_, again := m.Update(runes("s"))
	assert.Nil(t, again)

	m = update(t, m, runes("1"))
	for step := 1; step <= task.Steps; step++ {
		m = update(t, m, task.StepMsg{Run: 1, Step: step})
	}

	assert.False(t, m.assign.Task().Running())
	assert.Equal(t, task.Steps, m.assign.Task().Progress())

	m = update(t, m, runes("3"))
	assert.Contains(t, m.View(), "All work is complete!")
}

func TestHelpOverlay(t *testing.T) {
	m := createTestModel(t)

	m = update(t, m, runes("?"))
	require.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	// page keys are ignored while help is open
	m = update(t, m, runes("2"))
	assert.Equal(t, router.PageHome, m.Route().Page)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)
}

func TestQuitKeys(t *testing.T) {
	m := createTestModel(t)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSidebarListsPagesInOrder(t *testing.T) {
	m := createTestModel(t)
	view := m.View()

	last := -1
	for _, e := range router.Entries() {
		i := strings.Index(view, e.Title)
		require.GreaterOrEqual(t, i, 0, "sidebar missing %q", e.Title)
		assert.Greater(t, i, last, "%q out of order", e.Title)
		last = i
	}
	assert.Contains(t, view, "Class Assigner")
}

func TestStatusBarShowsShortHelp(t *testing.T) {
	m := createTestModel(t)
	bar := m.renderStatusBar()

	for _, binding := range m.keys.ShortHelp() {
		assert.Contains(t, bar, binding.Help().Desc)
	}
}

func TestRosterShowsSelectedColumn(t *testing.T) {
	m := createTestModel(t)
	m = update(t, m, runes("2"))
	assert.Contains(t, m.students.View(), "▸ Name")

	m = update(t, m, runes("l"))
	assert.Contains(t, m.students.View(), "▸ Gender")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdefgh", 6, "abc..."},
		{"tiny max", "abcdef", 2, "ab"},
		{"multibyte", "ééééé", 4, "é..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.max))
		})
	}
}
