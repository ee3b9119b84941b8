package model

import "strings"

// StudentID identifies a student for the lifetime of a session
type StudentID uint32

// Gender represents a student's gender as entered in the roster
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender maps a form value to a Gender.
// Only "female" selects GenderFemale; every other input, including the
// empty string, falls back to GenderMale.
func ParseGender(s string) Gender {
	switch s {
	case string(GenderFemale):
		return GenderFemale
	default:
		return GenderMale
	}
}

// Value returns the form value for the gender
func (g Gender) Value() string {
	return string(g)
}

// Label returns the short display label
func (g Gender) Label() string {
	switch g {
	case GenderFemale:
		return "F"
	default:
		return "M"
	}
}

// Toggle returns the other gender
func (g Gender) Toggle() Gender {
	if g == GenderFemale {
		return GenderMale
	}
	return GenderFemale
}

// OptionalText is a text field that may be absent
type OptionalText struct {
	value string
	set   bool
}

// Some returns a present OptionalText holding s
func Some(s string) OptionalText {
	return OptionalText{value: s, set: true}
}

// None returns an absent OptionalText
func None() OptionalText {
	return OptionalText{}
}

// TextFromInput normalizes form input: whitespace-only input is absent,
// anything else is kept as typed (untrimmed).
func TextFromInput(s string) OptionalText {
	if strings.TrimSpace(s) == "" {
		return None()
	}
	return Some(s)
}

// Get returns the value and whether it is present
func (o OptionalText) Get() (string, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present
func (o OptionalText) IsSet() bool {
	return o.set
}

// OrDefault returns the value, or def when absent
func (o OptionalText) OrDefault(def string) string {
	if !o.set {
		return def
	}
	return o.value
}

// String returns the value or "" when absent
func (o OptionalText) String() string {
	return o.value
}

// MarshalYAML renders an absent value as null
func (o OptionalText) MarshalYAML() (interface{}, error) {
	if !o.set {
		return nil, nil
	}
	return o.value, nil
}

// Student represents one entry in the roster
type Student struct {
	ID     StudentID    `yaml:"id"`
	Name   OptionalText `yaml:"name"`
	Note   OptionalText `yaml:"note"`
	Gender Gender       `yaml:"gender"`
	Score  float64      `yaml:"score"`
	Valid  bool         `yaml:"valid"` // reserved: marks placeholder records, unused by views
}

// NewStudent creates a student with no note
func NewStudent(id StudentID, name OptionalText, gender Gender, score float64) Student {
	return Student{
		ID:     id,
		Name:   name,
		Note:   None(),
		Gender: gender,
		Score:  score,
	}
}

// NewBlankStudent creates the default record used when a row is added
func NewBlankStudent(id StudentID) Student {
	return NewStudent(id, None(), GenderMale, 0)
}
