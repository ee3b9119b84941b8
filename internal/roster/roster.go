// Package roster holds the ordered list of students for a session and the
// id allocator that feeds it.
package roster

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/clive/class-assigner/internal/model"
)

// Seed score distribution
const (
	ScoreMean   = 60.0
	ScoreStdDev = 15.0
	ScoreMin    = 0.0
	ScoreMax    = 100.0
)

// DefaultSeedSize is the number of students generated at startup
const DefaultSeedSize = 101

// Roster is an ordered collection of students. Insertion order is display
// order. It is not safe for concurrent use; the UI loop owns it.
type Roster struct {
	students []model.Student
	nextID   model.StudentID
}

// New returns an empty roster whose allocator starts at 0
func New() *Roster {
	return &Roster{}
}

// Seed returns a roster of n generated students with ids [0, n).
// Gender is uniform and score is drawn from Normal(60, 15) clamped to
// [0, 100]. The allocator continues at n.
func Seed(n int, rng *rand.Rand) *Roster {
	r := &Roster{students: make([]model.Student, 0, n)}
	for i := 0; i < n; i++ {
		gender := model.GenderMale
		if rng.IntN(2) == 1 {
			gender = model.GenderFemale
		}
		score := min(max(ScoreMean+rng.NormFloat64()*ScoreStdDev, ScoreMin), ScoreMax)
		r.students = append(r.students, model.NewStudent(model.StudentID(i), model.None(), gender, score))
	}
	r.nextID = model.StudentID(n)
	return r
}

// Add appends a blank student with the next id and returns that id
func (r *Roster) Add() model.StudentID {
	id := r.nextID
	r.students = append(r.students, model.NewBlankStudent(id))
	r.nextID++
	return id
}

// Remove deletes the student with the given id. It reports whether a
// student was removed; a missing id leaves the roster unchanged.
func (r *Roster) Remove(id model.StudentID) bool {
	before := len(r.students)
	r.students = slices.DeleteFunc(r.students, func(s model.Student) bool {
		return s.ID == id
	})
	return len(r.students) != before
}

// UpdateName sets the name; blank text clears it
func (r *Roster) UpdateName(id model.StudentID, text string) error {
	s := r.find(id)
	if s == nil {
		return ErrStudentNotFound
	}
	s.Name = model.TextFromInput(text)
	return nil
}

// UpdateNote sets the note; blank text clears it
func (r *Roster) UpdateNote(id model.StudentID, text string) error {
	s := r.find(id)
	if s == nil {
		return ErrStudentNotFound
	}
	s.Note = model.TextFromInput(text)
	return nil
}

// UpdateGender sets the gender from a form value
func (r *Roster) UpdateGender(id model.StudentID, text string) error {
	s := r.find(id)
	if s == nil {
		return ErrStudentNotFound
	}
	s.Gender = model.ParseGender(text)
	return nil
}

// UpdateScore parses text as a float and stores it. Unparsable text keeps
// the current score and returns a *ScoreError the caller may show or drop.
func (r *Roster) UpdateScore(id model.StudentID, text string) error {
	s := r.find(id)
	if s == nil {
		return ErrStudentNotFound
	}
	score, err := parseScore(text)
	if err != nil {
		return &ScoreError{ID: id, Input: text, Err: err}
	}
	s.Score = score
	return nil
}

// parseScore accepts decimal floats only; hex floats such as "0x1p4" are
// rejected even though strconv would take them.
func parseScore(text string) (float64, error) {
	digits := strings.TrimLeft(text, "+-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: text, Err: strconv.ErrSyntax}
	}
	return strconv.ParseFloat(text, 64)
}

// Get returns a copy of the student with the given id
func (r *Roster) Get(id model.StudentID) (model.Student, bool) {
	if s := r.find(id); s != nil {
		return *s, true
	}
	return model.Student{}, false
}

// Students returns a snapshot of the roster in display order
func (r *Roster) Students() []model.Student {
	return slices.Clone(r.students)
}

// Len returns the number of students
func (r *Roster) Len() int {
	return len(r.students)
}

// NextID returns the id the next Add will allocate
func (r *Roster) NextID() model.StudentID {
	return r.nextID
}

func (r *Roster) find(id model.StudentID) *model.Student {
	for i := range r.students {
		if r.students[i].ID == id {
			return &r.students[i]
		}
	}
	return nil
}
