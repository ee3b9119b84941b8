package roster

import (
	"errors"
	"fmt"

	"github.com/clive/class-assigner/internal/model"
)

var (
	// ErrStudentNotFound is returned when an operation targets an id that is
	// not in the roster. Callers driven by stale UI rows may ignore it.
	ErrStudentNotFound = errors.New("student not found")

	// ErrInvalidScore is the kind of every ScoreError
	ErrInvalidScore = errors.New("invalid score")
)

// ScoreError reports score text that could not be parsed.
// The student's previous score is left in place.
type ScoreError struct {
	ID    model.StudentID
	Input string
	Err   error
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("student %d: %q is not a number", e.ID, e.Input)
}

func (e *ScoreError) Unwrap() []error {
	return []error{ErrInvalidScore, e.Err}
}
