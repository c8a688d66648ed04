package app

import (
	"github.com/claude/liftlog/internal/calendar"
	"github.com/claude/liftlog/internal/chart"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/progress"
)

// Screen names which panel fills the content region.
type Screen string

const (
	ScreenWeek     Screen = "week"
	ScreenEditor   Screen = "editor"
	ScreenWeight   Screen = "weight"
	ScreenCalendar Screen = "calendar"
)

// View is everything needed to draw the interface for the current state.
type View struct {
	Today  string    `json:"today"`
	Tab    Tab       `json:"tab"`
	Screen Screen    `json:"screen"`
	Weeks  []WeekTab `json:"weeks"`
	Flash  string    `json:"flash,omitempty"`

	Week     *WeekView           `json:"week,omitempty"`
	Editor   *EditorView         `json:"editor,omitempty"`
	Weight   *WeightView         `json:"weight,omitempty"`
	Calendar *calendar.Grid      `json:"calendar,omitempty"`
	Day      *calendar.DayDetail `json:"day,omitempty"`
}

// WeekTab is one entry in the week navigation.
type WeekTab struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// WeekView lists the workouts of the active week.
type WeekView struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Workouts []WorkoutSummary `json:"workouts"`
}

// WorkoutSummary is one row of the week list.
type WorkoutSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// EditorView is the edit buffer laid out for display.
type EditorView struct {
	ID        int64          `json:"id,omitempty"`
	IsNew     bool           `json:"is_new"`
	Title     string         `json:"title"`
	Date      string         `json:"date"`
	Templates []string       `json:"templates,omitempty"`
	Exercises []ExerciseView `json:"exercises"`
}

// ExerciseView is one exercise block in the editor.
type ExerciseView struct {
	Index     int           `json:"index"`
	Name      string        `json:"name"`
	Sets      []SetView     `json:"sets"`
	ChartOpen bool          `json:"chart_open"`
	Chart     *chart.Config `json:"chart,omitempty"`
}

// SetView is one set row with its inputs pre-formatted.
type SetView struct {
	Index  int    `json:"index"`
	Weight string `json:"weight"`
	Reps   string `json:"reps"`
}

// WeightView is the bodyweight tab.
type WeightView struct {
	DefaultDate string               `json:"default_date"`
	Entries     []models.WeightEntry `json:"entries"`
	Chart       *chart.Config        `json:"chart,omitempty"`
}

// View derives the screen from the transient state and a fresh read of the
// store. It does not consume the flash message.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// Page is View for the rendered page: the flash message is shown once and
// then cleared.
func (c *Controller) Page() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view()
	c.flash = ""
	return v
}

func (c *Controller) view() View {
	today := c.today()
	weeks := c.store.Weeks()
	active, hasActive := weekByID(weeks, c.activeWeekID)

	v := View{
		Today: today,
		Tab:   c.tab,
		Weeks: make([]WeekTab, len(weeks)),
		Flash: c.flash,
	}
	for i, w := range weeks {
		v.Weeks[i] = WeekTab{ID: w.ID, Name: w.Name, Active: c.tab == TabWeek && hasActive && w.ID == active.ID}
	}

	if c.openDay != "" && c.tab == TabCalendar && c.editing == nil {
		weight, ok := c.store.WeightForDate(c.openDay)
		d := calendar.Detail(c.openDay, c.store.Workouts(), weight, ok)
		v.Day = &d
	}

	switch {
	case c.editing != nil:
		v.Screen = ScreenEditor
		v.Editor = c.editorView()
	case c.tab == TabWeight:
		v.Screen = ScreenWeight
		entries := c.store.Weights()
		v.Weight = &WeightView{DefaultDate: today, Entries: entries, Chart: chart.Weight(entries)}
	case c.tab == TabCalendar:
		v.Screen = ScreenCalendar
		g := calendar.Month(c.cursor, today, c.store.Workouts())
		v.Calendar = &g
	default:
		v.Screen = ScreenWeek
		if hasActive {
			v.Week = c.weekView(active)
		}
	}
	return v
}

func (c *Controller) weekView(week models.Week) *WeekView {
	wv := &WeekView{ID: week.ID, Name: week.Name, Workouts: []WorkoutSummary{}}
	for _, id := range week.WorkoutIDs {
		w, ok := c.store.Workout(id)
		if !ok {
			c.log.Warn("week links missing workout", "week_id", week.ID, "workout_id", id)
			continue
		}
		wv.Workouts = append(wv.Workouts, WorkoutSummary{ID: w.ID, Title: w.Title, Date: w.Date})
	}
	return wv
}

func (c *Controller) editorView() *EditorView {
	buf := c.editing
	ev := &EditorView{
		ID:        buf.ID,
		IsNew:     buf.ID == 0,
		Title:     buf.Title,
		Date:      buf.Date,
		Exercises: make([]ExerciseView, len(buf.Exercises)),
	}
	if ev.IsNew {
		for _, t := range c.store.Templates() {
			ev.Templates = append(ev.Templates, t.Name)
		}
	}

	var history []models.Workout
	for i, ex := range buf.Exercises {
		exv := ExerciseView{Index: i, Name: ex.Name, Sets: make([]SetView, len(ex.Sets))}
		for j, s := range ex.Sets {
			exv.Sets[j] = SetView{Index: j, Weight: FormatNumber(s.Weight), Reps: FormatNumber(s.Reps)}
		}
		if c.openCharts[i] {
			exv.ChartOpen = true
			if ex.Name != "" {
				if history == nil {
					history = c.store.Workouts()
				}
				points := progress.WithProvisional(progress.History(history, ex.Name), ex, buf.Date)
				exv.Chart = chart.OneRepMax(points)
			}
		}
		ev.Exercises[i] = exv
	}
	return ev
}
