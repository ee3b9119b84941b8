package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/clive/class-assigner/internal/router"
	"github.com/clive/class-assigner/internal/state"
	"github.com/clive/class-assigner/internal/task"
)

const sidebarWidth = 26

// Messages
type stateChangedMsg struct {
	change state.Change
}

// Options configure the root model
type Options struct {
	App    *state.App
	Task   task.Task
	Route  string
	Debug  bool
	Logger *zap.Logger
}

// Model is the root Bubble Tea model: a sidebar layout around the routed
// page. Every page shares the same state container.
type Model struct {
	// Terminal dimensions
	width  int
	height int

	app    *state.App
	logger *zap.Logger

	// Routing
	route    router.Route
	showHelp bool

	// Path bar
	input              textinput.Model
	inputFocused       bool
	selectedSuggestion int

	// Pages
	home     HomePageModel
	students RosterPageModel
	assign   AssignPageModel
	info     InfoPageModel

	// Re-render bridge: state writes land here, coalesced
	changes  chan state.Change
	revision int

	debug *DebugPanel
	keys  KeyMap
	ready bool
}

// NewRootModel creates the root model and subscribes it to the state
func NewRootModel(opts Options) Model {
	app := opts.App
	if app == nil {
		app = state.New(nil, state.DefaultSettings())
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	keys := DefaultKeyMap()

	ti := textinput.New()
	ti.Placeholder = "/student-list"
	ti.Prompt = "go to ❯ "
	ti.PromptStyle = InputPromptStyle
	ti.CharLimit = 200
	ti.Width = 60

	m := Model{
		app:      app,
		logger:   logger,
		route:    router.Parse(opts.Route),
		input:    ti,
		home:     NewHomePageModel(app, keys),
		students: NewRosterPageModel(app, keys),
		assign:   NewAssignPageModel(app, keys, opts.Task),
		info:     NewInfoPageModel(keys),
		changes:  make(chan state.Change, 1),
		debug:    NewDebugPanel(opts.Debug),
		keys:     keys,
	}

	changes := m.changes
	debug := m.debug
	app.Subscribe(func(c state.Change) {
		logger.Debug("state changed", zap.String("kind", string(c.Kind)), zap.Uint32("student_id", uint32(c.StudentID)))
		debug.AddChange(c)
		select {
		case changes <- c:
		default:
			// a re-render is already pending
		}
	})

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	m.logger.Info("session started",
		zap.String("route", m.route.Path()),
		zap.Int("students", m.app.StudentCount()),
	)
	return tea.Batch(
		textinput.Blink,
		waitForChange(m.changes),
	)
}

// waitForChange blocks until the state reports a write
func waitForChange(changes <-chan state.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-changes
		if !ok {
			return nil
		}
		return stateChangedMsg{change: c}
	}
}

// Route returns the current route
func (m Model) Route() router.Route {
	return m.route
}

// Revision counts the state changes the view has picked up
func (m Model) Revision() int {
	return m.revision
}

// Navigate switches to the page for path
func (m *Model) Navigate(path string) {
	m.route = router.Parse(path)
	m.logger.Debug("navigate", zap.String("path", m.route.Path()), zap.Int("page", int(m.route.Page)))
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth, contentHeight := m.contentSize()
		m.home.SetSize(contentWidth, contentHeight)
		m.students.SetSize(contentWidth, contentHeight)
		m.assign.SetSize(contentWidth, contentHeight)
		m.info.SetSize(contentWidth, contentHeight)
		m.input.Width = max(m.width-16, 10)

	case stateChangedMsg:
		m.revision++
		m.students.Refresh()
		cmds = append(cmds, waitForChange(m.changes))

	case task.StepMsg:
		var cmd tea.Cmd
		m.assign, cmd = m.assign.Update(msg)
		cmds = append(cmds, cmd)

	case task.FinishedMsg:
		m.logger.Info("assignment run finished", zap.Int("run", msg.Run))
		m.debug.AddLine(fmt.Sprintf("[task] run %d finished", msg.Run))

	case tea.KeyMsg:
		// Ctrl+C always quits, regardless of state
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.inputFocused {
			return m.updateInput(msg)
		}

		// Open editors own the keyboard
		if m.route.Page == router.PageStudentList && m.students.Editing() {
			var cmd tea.Cmd
			m.students, cmd = m.students.Update(msg)
			return m, cmd
		}
		if m.route.Page == router.PageAssignClass && m.assign.Editing() {
			var cmd tea.Cmd
			m.assign, cmd = m.assign.Update(msg)
			return m, cmd
		}

		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) {
				m.showHelp = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.GoTo):
			m.inputFocused = true
			m.selectedSuggestion = 0
			m.input.SetValue("/")
			m.input.CursorEnd()
			cmd := m.input.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.Home):
			m.Navigate(router.PageHome.Path())
			return m, nil
		case key.Matches(msg, m.keys.Students):
			m.Navigate(router.PageStudentList.Path())
			return m, nil
		case key.Matches(msg, m.keys.Assign):
			m.Navigate(router.PageAssignClass.Path())
			return m, nil
		case key.Matches(msg, m.keys.Info):
			m.Navigate(router.PageInfo.Path())
			return m, nil
		case key.Matches(msg, m.keys.NextPage):
			m.cyclePage(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevPage):
			m.cyclePage(-1)
			return m, nil
		case key.Matches(msg, m.keys.Escape) && m.route.Page == router.PageNotFound:
			m.Navigate(router.PageHome.Path())
			return m, nil
		}

		cmds = append(cmds, m.updatePage(msg))
	}

	return m, tea.Batch(cmds...)
}

// updatePage forwards a key to the visible page
func (m *Model) updatePage(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.route.Page {
	case router.PageHome:
		m.home, cmd = m.home.Update(msg)
	case router.PageStudentList:
		m.students, cmd = m.students.Update(msg)
	case router.PageAssignClass:
		wasRunning := m.assign.Task().Running()
		m.assign, cmd = m.assign.Update(msg)
		if !wasRunning && m.assign.Task().Running() {
			m.logger.Info("assignment run started", zap.Int("class_count", m.app.Settings().ClassCount))
			m.debug.AddLine("[task] started")
		}
	case router.PageInfo:
		m.info, cmd = m.info.Update(msg)
	}
	return cmd
}

// updateInput handles keys while the path bar is focused
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	suggestions := router.Match(m.input.Value())

	switch msg.Type {
	case tea.KeyEnter:
		// Unknown paths are allowed and land on the not-found page
		m.Navigate(m.input.Value())
		m.closeInput()
		return m, nil
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyTab:
		if len(suggestions) > 0 {
			m.input.SetValue(suggestions[m.selectedSuggestion%len(suggestions)].Path)
			m.input.CursorEnd()
			m.selectedSuggestion = 0
		}
		return m, nil
	case tea.KeyUp:
		if m.selectedSuggestion > 0 {
			m.selectedSuggestion--
		}
		return m, nil
	case tea.KeyDown:
		if m.selectedSuggestion < len(suggestions)-1 {
			m.selectedSuggestion++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.selectedSuggestion = 0
	return m, cmd
}

func (m *Model) closeInput() {
	m.inputFocused = false
	m.selectedSuggestion = 0
	m.input.SetValue("")
	m.input.Blur()
}

// cyclePage moves through the sidebar pages; from not-found it starts at home
func (m *Model) cyclePage(delta int) {
	entries := router.Entries()
	idx := 0
	for i, e := range entries {
		if e.Page == m.route.Page {
			idx = (i + delta + len(entries)) % len(entries)
			break
		}
	}
	m.Navigate(entries[idx].Path)
}

// contentSize returns the inner size of the content area
func (m Model) contentSize() (int, int) {
	// Sidebar, content border and padding
	width := m.width - sidebarWidth - 8
	// Header, status bar, content border and padding
	height := m.height - 3 - 4
	if m.debug.IsEnabled() {
		height -= 8
	}
	return max(width, 20), max(height, 5)
}

// View renders the model
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.helpView()
	}

	header := m.renderHeader()
	bodyHeight := m.height - 3
	if m.debug.IsEnabled() {
		bodyHeight -= 8
	}

	sidebar := m.renderSidebar(sidebarWidth, bodyHeight)
	content := ContentStyle.
		Width(m.width - sidebarWidth - 2).
		Height(bodyHeight - 2).
		Render(m.renderPage())
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)

	sections := []string{header, body}
	if m.debug.IsEnabled() {
		sections = append(sections, m.debug.Render(m.width-2, 8))
	}
	if m.inputFocused {
		sections = append(sections, m.renderInput())
	} else {
		sections = append(sections, m.renderStatusBar())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderPage() string {
	switch m.route.Page {
	case router.PageHome:
		return m.home.View()
	case router.PageStudentList:
		return m.students.View()
	case router.PageAssignClass:
		return m.assign.View()
	case router.PageInfo:
		return m.info.View()
	default:
		return m.notFoundView()
	}
}

func (m Model) notFoundView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		PageTitleStyle.Render("Page not found."),
		"",
		DimStyle.Render("No page at "+m.route.Path()),
		DimStyle.Render(fmt.Sprintf("segments: %q", m.route.Segments)),
		"",
		HelpDescStyle.Render("Press esc to go home."),
	)
}

// renderHeader renders the header bar
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorRed).
		Bold(true).
		Render("CLASS ASSIGNER")

	subtitle := lipgloss.NewStyle().
		Foreground(ColorFgMuted).
		Render("Student class assignment")

	path := lipgloss.NewStyle().
		Foreground(ColorFgSecondary).
		Render(" · " + m.route.Path())

	return lipgloss.NewStyle().
		PaddingLeft(1).
		Width(m.width).
		Render(title + "  " + subtitle + path)
}

// renderSidebar renders the navigation sidebar
func (m Model) renderSidebar(width, height int) string {
	var b strings.Builder
	b.WriteString(SidebarTitleStyle.Render("Class Assigner") + "\n\n")

	for i, e := range router.Entries() {
		label := fmt.Sprintf("%d %s %s", i+1, e.Icon, e.Title)
		if e.Page == m.route.Page {
			b.WriteString(NavActiveStyle.Render(label))
		} else {
			b.WriteString(NavItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + DimStyle.Render(fmt.Sprintf("%d students", m.app.StudentCount())))
	b.WriteString("\n" + DimStyle.Render(fmt.Sprintf("%d classes", m.app.Settings().ClassCount)))

	return SidebarStyle.
		Width(width).
		Height(height - 2).
		Render(b.String())
}

// renderInput renders the path bar with suggestions
func (m Model) renderInput() string {
	var result strings.Builder

	suggestions := router.Match(m.input.Value())
	if len(suggestions) > 0 {
		var content strings.Builder
		for i, s := range suggestions {
			itemStyle := lipgloss.NewStyle().Foreground(ColorFgPrimary).Padding(0, 1)
			if i == m.selectedSuggestion {
				itemStyle = itemStyle.Background(ColorBgHighlight).Bold(true)
			}
			content.WriteString(itemStyle.Render(s.Path))
			content.WriteString(DimStyle.Render(" - " + s.Title))
			content.WriteString("\n")
		}
		result.WriteString(lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			Width(m.width - 4).
			Render(strings.TrimSuffix(content.String(), "\n")))
		result.WriteString("\n")
	}

	result.WriteString(InputStyle.
		BorderForeground(ColorGreen).
		Width(m.width - 4).
		Render(m.input.View()))
	return result.String()
}

// renderStatusBar renders the bottom status bar
func (m Model) renderStatusBar() string {
	var status string
	if m.assign.Task().Running() {
		status = StatusRunningStyle.Render(fmt.Sprintf("● Assigning %d%%", m.assign.Task().Progress()))
	} else {
		status = StatusIdleStyle.Render("○ Ready")
	}

	mutedStyle := lipgloss.NewStyle().Foreground(ColorFgMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorFgPrimary)

	hint := func(k, desc string) string {
		return mutedStyle.Render(" │ ") + keyStyle.Render(k) + mutedStyle.Render(" "+desc)
	}

	var hints string
	switch m.route.Page {
	case router.PageStudentList:
		if m.students.Editing() {
			hints = hint("Enter/Esc", "done")
		} else {
			hints = hint("a", "add") + hint("x", "delete") + hint("enter", "edit")
		}
	case router.PageAssignClass:
		if m.assign.Editing() {
			hints = hint("Enter/Esc", "done")
		} else {
			hints = hint("←/→", "classes") + hint("space", "toggle") + hint("s", "start")
		}
	case router.PageHome:
		hints = hint("+", "increment")
	}
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		hints += hint(h.Key, h.Desc)
	}

	return StatusBarStyle.Render(status + hints)
}

// helpView renders the help overlay
func (m Model) helpView() string {
	title := HelpTitleStyle.Render("Keyboard Shortcuts")

	var b strings.Builder
	for _, group := range m.keys.FullHelp() {
		b.WriteString("\n")
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(HelpKeyStyle.Render(fmt.Sprintf("%-10s", h.Key)))
			b.WriteString(HelpDescStyle.Render(h.Desc))
			b.WriteString("\n")
		}
	}

	content := title + "\n" + b.String() + "\n" + HelpDescStyle.Render("Press ? or Esc to close")

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		HelpStyle.Render(content),
	)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
