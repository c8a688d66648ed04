// Package calendar lays out a month as a Sunday-first grid and classifies
// each day against the recorded workouts.
package calendar

import (
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Day is one cell of the grid. Today is an overlay that combines with either
// Done or Missed; Done and Missed are mutually exclusive.
type Day struct {
	Date   string `json:"date"`
	Day    int    `json:"day"`
	Today  bool   `json:"today"`
	Done   bool   `json:"done"`
	Missed bool   `json:"missed"`
}

// Classes returns the CSS classes for the cell.
func (d Day) Classes() string {
	c := "calendar-day"
	if d.Today {
		c += " today"
	}
	switch {
	case d.Done:
		c += " workout-done"
	case d.Missed:
		c += " workout-missed"
	}
	return c
}

// Grid is one month of cells preceded by blank cells for the first week.
type Grid struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
	Leading   int    `json:"leading"`
	Days      []Day  `json:"days"`
}

// Title is the grid heading, e.g. "March 2024".
func (g Grid) Title() string {
	return fmt.Sprintf("%s %d", g.MonthName, g.Year)
}

// Blanks returns a slice of length Leading for template ranging.
func (g Grid) Blanks() []struct{} {
	return make([]struct{}, g.Leading)
}

// Month builds the grid for the month containing cursor. today is the
// "YYYY-MM-DD" date used for the today overlay and for deciding which days
// are already in the past.
func Month(cursor time.Time, today string, workouts []models.Workout) Grid {
	year, month := cursor.Year(), cursor.Month()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	done := make(map[string]bool, len(workouts))
	for _, w := range workouts {
		done[w.Date] = true
	}

	g := Grid{
		Year:      year,
		Month:     int(month),
		MonthName: month.String(),
		Leading:   int(first.Weekday()),
		Days:      make([]Day, 0, daysInMonth),
	}
	for day := 1; day <= daysInMonth; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
		d := Day{Date: date, Day: day, Today: date == today}
		if done[date] {
			d.Done = true
		} else if date < today {
			d.Missed = true
		}
		g.Days = append(g.Days, d)
	}
	return g
}

// StartOfMonth normalizes t to midnight on the first day of its month, so
// month arithmetic never overflows from e.g. the 31st into a later month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Shift moves a month cursor by n months, wrapping across years.
func Shift(cursor time.Time, n int) time.Time {
	return StartOfMonth(cursor).AddDate(0, n, 0)
}

// ExerciseSummary is an exercise name with its set count.
type ExerciseSummary struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
}

// DayDetail is what the day overlay shows for one date.
type DayDetail struct {
	Date         string            `json:"date"`
	HasWorkout   bool              `json:"has_workout"`
	WorkoutTitle string            `json:"workout_title,omitempty"`
	Exercises    []ExerciseSummary `json:"exercises,omitempty"`
	HasWeight    bool              `json:"has_weight"`
	Weight       float64           `json:"weight,omitempty"`
}

// Detail picks the first workout dated date, in the order given, and the
// weight entry for that date.
func Detail(date string, workouts []models.Workout, weight models.WeightEntry, hasWeight bool) DayDetail {
	d := DayDetail{Date: date, HasWeight: hasWeight}
	if hasWeight {
		d.Weight = weight.Weight
	}
	for _, w := range workouts {
		if w.Date != date {
			continue
		}
		d.HasWorkout = true
		d.WorkoutTitle = w.Title
		for _, ex := range w.Exercises {
			d.Exercises = append(d.Exercises, ExerciseSummary{Name: ex.Name, Sets: len(ex.Sets)})
		}
		break
	}
	return d
}
