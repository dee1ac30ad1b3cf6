// Package riddle owns the daily riddle catalog and resolves which riddle is
// in effect for a given day key: an admin override wins, then a schedule
// entry, then a deterministic pick from the catalog.
package riddle

// Type discriminates how answers are compared.
type Type string

const (
	TypeWord   Type = "word"
	TypeNumber Type = "number"
)

// Valid reports whether t is a known riddle type.
func (t Type) Valid() bool { return t == TypeWord || t == TypeNumber }

// Riddle is a single puzzle. Answer is stored as text even for number
// riddles; comparison semantics live in the guess package.
type Riddle struct {
	ID          int64  `json:"id"`
	Type        Type   `json:"type"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

// CustomID marks riddles materialized from a custom override/schedule entry
// rather than the catalog.
const CustomID int64 = -1

// Source identifies where a day's riddle came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceSchedule Source = "schedule"
	SourceDefault  Source = "default"
)

// Resolved is the effective riddle for a day, tagged with its provenance and
// the day-state version clients use to detect admin resets.
type Resolved struct {
	Riddle  Riddle
	Source  Source
	Version int64
}

// Entry is an override or schedule row: either a catalog reference
// (RiddleID) or a full custom riddle.
type Entry struct {
	DayKey      string
	RiddleID    *int64
	Question    string
	Type        Type
	Answer      string
	Explanation string
}
