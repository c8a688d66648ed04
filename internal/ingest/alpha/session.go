package alpha

import (
	"strings"
	"time"
)

// Session is one workout block of an Alpha Progression export.
type Session struct {
	Name      string
	Date      time.Time
	Duration  string
	Exercises []Exercise
}

// Exercise is one numbered exercise within a session.
type Exercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []Set
}

// Set is a working or warmup set. Bodyweight-plus sets carry the added load
// in WeightKg.
type Set struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64
	IsWarmup         bool
}

// Title is the session name up to the first " · " separator, so
// "Legs · Day 2 · Week 4" becomes "Legs".
func (s Session) Title() string {
	title, _, _ := strings.Cut(s.Name, " · ")
	return strings.TrimSpace(title)
}
