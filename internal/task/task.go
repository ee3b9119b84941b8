// Package task implements the simulated class-assignment job: a progress
// counter that walks from 1 to 100 on a fixed cadence without doing any
// real work. It runs on the bubbletea event loop; each step is a tea.Tick.
package task

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// Steps is the number of progress increments in one run
	Steps = 100

	// DefaultInterval is the wait before each increment
	DefaultInterval = 10 * time.Millisecond
)

// Status is the runner state
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
)

// StepMsg advances a run to Step after the interval elapsed
type StepMsg struct {
	Run  int
	Step int
}

// FinishedMsg is emitted once after the final step of a run
type FinishedMsg struct {
	Run int
}

// Task is the progress state machine: Idle -> Running -> Idle.
// The zero value is idle with DefaultInterval.
type Task struct {
	running  bool
	progress int
	interval time.Duration
	run      int // generation; StepMsgs from older runs are dropped
}

// New returns an idle task stepping every interval
func New(interval time.Duration) Task {
	return Task{interval: interval}
}

// Start begins a run and returns the command for the first step.
// It is a no-op returning (nil, false) while a run is in progress.
func (t *Task) Start() (tea.Cmd, bool) {
	if t.running {
		return nil, false
	}
	t.run++
	t.running = true
	t.progress = 0
	return t.tick(1), true
}

// Update applies a StepMsg and returns the command for the next step.
// Messages that do not belong to the current run are ignored.
func (t *Task) Update(msg tea.Msg) tea.Cmd {
	step, ok := msg.(StepMsg)
	if !ok || !t.running || step.Run != t.run {
		return nil
	}

	t.progress = step.Step
	if step.Step < Steps {
		return t.tick(step.Step + 1)
	}

	t.running = false
	run := t.run
	return func() tea.Msg {
		return FinishedMsg{Run: run}
	}
}

// Running reports whether a run is in progress
func (t Task) Running() bool {
	return t.running
}

// Progress returns the last applied step (0..100)
func (t Task) Progress() int {
	return t.progress
}

// Percent returns progress as a fraction for progress bars
func (t Task) Percent() float64 {
	return float64(t.progress) / Steps
}

// Done reports whether the last run completed and no new run started
func (t Task) Done() bool {
	return !t.running && t.progress == Steps
}

// Status returns the runner state
func (t Task) Status() Status {
	if t.running {
		return StatusRunning
	}
	return StatusIdle
}

// Interval returns the per-step wait
func (t Task) Interval() time.Duration {
	if t.interval <= 0 {
		return DefaultInterval
	}
	return t.interval
}

func (t Task) tick(step int) tea.Cmd {
	run := t.run
	return tea.Tick(t.Interval(), func(time.Time) tea.Msg {
		return StepMsg{Run: run, Step: step}
	})
}
