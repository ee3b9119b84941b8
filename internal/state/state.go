// Package state holds the single application state shared by every page:
// the roster, the assignment settings and the home page counter.
//
// App is observable. Every write notifies subscribers synchronously after
// the change is applied, so any view subscribed to it can re-render. App is
// not safe for concurrent use; the UI event loop is its only writer.
package state

import (
	"strconv"

	"github.com/clive/class-assigner/internal/model"
	"github.com/clive/class-assigner/internal/roster"
)

// Class count bounds shown on the assignment page
const (
	MinClassCount     = 3
	MaxClassCount     = 30
	DefaultClassCount = 10
)

// ChangeKind identifies what a write touched
type ChangeKind string

const (
	ChangeCounter       ChangeKind = "counter"
	ChangeClassCount    ChangeKind = "class_count"
	ChangeOptScore      ChangeKind = "opt_score"
	ChangeOptGender     ChangeKind = "opt_gender"
	ChangeStudentAdded  ChangeKind = "student_added"
	ChangeStudentRemove ChangeKind = "student_removed"
	ChangeStudentName   ChangeKind = "student_name"
	ChangeStudentNote   ChangeKind = "student_note"
	ChangeStudentGender ChangeKind = "student_gender"
	ChangeStudentScore  ChangeKind = "student_score"
)

// Change describes one applied write
type Change struct {
	Kind      ChangeKind
	StudentID model.StudentID // set for student changes
}

// Settings are the assignment preferences
type Settings struct {
	ClassCount int
	OptScore   bool
	OptGender  bool
}

// DefaultSettings returns the startup preferences
func DefaultSettings() Settings {
	return Settings{
		ClassCount: DefaultClassCount,
		OptScore:   true,
		OptGender:  true,
	}
}

// App is the application state container
type App struct {
	counter  int
	settings Settings
	roster   *roster.Roster

	subscribers map[int]func(Change)
	nextSub     int
}

// New creates the container around an existing roster
func New(r *roster.Roster, settings Settings) *App {
	if r == nil {
		r = roster.New()
	}
	settings.ClassCount = clampClassCount(settings.ClassCount)
	return &App{
		settings:    settings,
		roster:      r,
		subscribers: make(map[int]func(Change)),
	}
}

// Subscribe registers fn to be called after every write.
// The returned function removes the subscription.
func (a *App) Subscribe(fn func(Change)) (unsubscribe func()) {
	id := a.nextSub
	a.nextSub++
	a.subscribers[id] = fn
	return func() {
		delete(a.subscribers, id)
	}
}

func (a *App) notify(c Change) {
	for _, fn := range a.subscribers {
		fn(c)
	}
}

// Counter returns the home page counter
func (a *App) Counter() int {
	return a.counter
}

// Increment bumps the home page counter
func (a *App) Increment() {
	a.counter++
	a.notify(Change{Kind: ChangeCounter})
}

// Settings returns the current assignment preferences
func (a *App) Settings() Settings {
	return a.settings
}

// SetClassCount stores n clamped to [MinClassCount, MaxClassCount]
func (a *App) SetClassCount(n int) {
	a.settings.ClassCount = clampClassCount(n)
	a.notify(Change{Kind: ChangeClassCount})
}

// SetClassCountText parses an integer from slider input. Unparsable text
// leaves the value unchanged.
func (a *App) SetClassCountText(text string) bool {
	n, err := strconv.Atoi(text)
	if err != nil {
		return false
	}
	a.SetClassCount(n)
	return true
}

// SetOptScore toggles score balancing
func (a *App) SetOptScore(on bool) {
	a.settings.OptScore = on
	a.notify(Change{Kind: ChangeOptScore})
}

// SetOptGender toggles gender balancing
func (a *App) SetOptGender(on bool) {
	a.settings.OptGender = on
	a.notify(Change{Kind: ChangeOptGender})
}

// Students returns a snapshot of the roster for rendering
func (a *App) Students() []model.Student {
	return a.roster.Students()
}

// StudentCount returns the roster size
func (a *App) StudentCount() int {
	return a.roster.Len()
}

// NextStudentID returns the id the next AddStudent will use
func (a *App) NextStudentID() model.StudentID {
	return a.roster.NextID()
}

// Student returns one student by id
func (a *App) Student(id model.StudentID) (model.Student, bool) {
	return a.roster.Get(id)
}

// AddStudent appends a blank student
func (a *App) AddStudent() model.StudentID {
	id := a.roster.Add()
	a.notify(Change{Kind: ChangeStudentAdded, StudentID: id})
	return id
}

// RemoveStudent deletes a student; missing ids are ignored
func (a *App) RemoveStudent(id model.StudentID) {
	if a.roster.Remove(id) {
		a.notify(Change{Kind: ChangeStudentRemove, StudentID: id})
	}
}

// UpdateName sets a student's name
func (a *App) UpdateName(id model.StudentID, text string) error {
	return a.apply(ChangeStudentName, id, a.roster.UpdateName(id, text))
}

// UpdateNote sets a student's note
func (a *App) UpdateNote(id model.StudentID, text string) error {
	return a.apply(ChangeStudentNote, id, a.roster.UpdateNote(id, text))
}

// UpdateGender sets a student's gender from a form value
func (a *App) UpdateGender(id model.StudentID, text string) error {
	return a.apply(ChangeStudentGender, id, a.roster.UpdateGender(id, text))
}

// UpdateScore sets a student's score. A parse failure is returned as a
// *roster.ScoreError and nothing changes.
func (a *App) UpdateScore(id model.StudentID, text string) error {
	return a.apply(ChangeStudentScore, id, a.roster.UpdateScore(id, text))
}

// apply notifies only when the roster write succeeded
func (a *App) apply(kind ChangeKind, id model.StudentID, err error) error {
	if err != nil {
		return err
	}
	a.notify(Change{Kind: kind, StudentID: id})
	return nil
}

func clampClassCount(n int) int {
	return min(max(n, MinClassCount), MaxClassCount)
}
