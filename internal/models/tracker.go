package models

import (
	"slices"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for workouts and weight entries.
const DateLayout = "2006-01-02"

// Week groups workouts in the order they were created.
type Week struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	WorkoutIDs []int64 `json:"workoutIds"`
}

// Workout is a dated session. ID 0 marks a workout that has not been stored yet.
type Workout struct {
	ID        int64      `json:"id"`
	Date      string     `json:"date"`
	Title     string     `json:"title"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is a named movement with its sets, owned by a workout or template.
type Exercise struct {
	Name string `json:"name"`
	Sets []Set  `json:"sets"`
}

// Set is one performed unit of an exercise.
type Set struct {
	Weight float64 `json:"weight"`
	Reps   float64 `json:"reps"`
}

// Template is a reusable exercise list copied into new workouts.
type Template struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// WeightEntry is one bodyweight reading. At most one exists per date.
type WeightEntry struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// State is the root record persisted as a single blob.
type State struct {
	Weeks     []Week            `json:"weeks"`
	Workouts  map[int64]Workout `json:"workouts"`
	Templates []Template        `json:"templates"`
	Weights   []WeightEntry     `json:"weights"`
}

// DefaultState returns the bootstrap state: one empty week and the
// Push/Pull/Legs templates.
func DefaultState(firstWeekID int64) State {
	return State{
		Weeks:    []Week{{ID: firstWeekID, Name: "Week 1", WorkoutIDs: []int64{}}},
		Workouts: map[int64]Workout{},
		Templates: []Template{
			{Name: "Push", Exercises: []Exercise{}},
			{Name: "Pull", Exercises: []Exercise{}},
			{Name: "Legs", Exercises: []Exercise{}},
		},
		Weights: []WeightEntry{},
	}
}

// Clone returns a deep copy of the week.
func (w Week) Clone() Week {
	w.WorkoutIDs = cloneNonNil(w.WorkoutIDs)
	return w
}

// Clone returns a deep copy of the workout. Edits to the copy never reach
// the original, which is what makes cancelling an edit lossless.
func (w Workout) Clone() Workout {
	w.Exercises = CloneExercises(w.Exercises)
	return w
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	t.Exercises = CloneExercises(t.Exercises)
	return t
}

// CloneExercises deep-copies an exercise list including every set slice.
func CloneExercises(exs []Exercise) []Exercise {
	if exs == nil {
		return []Exercise{}
	}
	out := make([]Exercise, len(exs))
	for i, ex := range exs {
		out[i] = Exercise{Name: ex.Name, Sets: cloneNonNil(ex.Sets)}
	}
	return out
}

// Clone returns a deep copy of the whole state.
func (s State) Clone() State {
	out := State{
		Weeks:     make([]Week, len(s.Weeks)),
		Workouts:  make(map[int64]Workout, len(s.Workouts)),
		Templates: make([]Template, len(s.Templates)),
		Weights:   cloneNonNil(s.Weights),
	}
	for i, w := range s.Weeks {
		out.Weeks[i] = w.Clone()
	}
	for id, w := range s.Workouts {
		out.Workouts[id] = w.Clone()
	}
	for i, t := range s.Templates {
		out.Templates[i] = t.Clone()
	}
	return out
}

// MaxID returns the largest week or workout id in the state.
func (s State) MaxID() int64 {
	var max int64
	for _, w := range s.Weeks {
		if w.ID > max {
			max = w.ID
		}
		for _, id := range w.WorkoutIDs {
			if id > max {
				max = id
			}
		}
	}
	for id := range s.Workouts {
		if id > max {
			max = id
		}
	}
	return max
}

// cloneNonNil copies a slice and never returns nil, so JSON encodes [] not null.
func cloneNonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}

// CompareDates orders two "YYYY-MM-DD" strings by calendar date. Strings that
// do not parse sort after valid dates and compare lexically among themselves.
func CompareDates(a, b string) int {
	ta, errA := time.Parse(DateLayout, a)
	tb, errB := time.Parse(DateLayout, b)
	switch {
	case errA == nil && errB == nil:
		return ta.Compare(tb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
