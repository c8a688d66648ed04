// Package app holds the interactive session: which tab is open, which week
// is selected, the workout being edited and the calendar cursor. Every
// action mutates that state and/or the store; View derives the full screen
// from scratch afterwards.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/calendar"
	"github.com/claude/liftlog/internal/models"
)

// Tab is a top-level section of the interface.
type Tab string

const (
	TabWeek     Tab = "week"
	TabWeight   Tab = "weight"
	TabCalendar Tab = "calendar"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrWeekNotFound    = errors.New("week not found")
	ErrNoEditor        = errors.New("no workout is being edited")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownField    = errors.New("unknown set field")
	ErrNotNewWorkout   = errors.New("templates can only be applied to a new workout")
	ErrInvalidDate     = errors.New("invalid date")
)

// Store is the persistence the controller needs. *storage.Store satisfies it.
type Store interface {
	Weeks() []models.Week
	AddWeek(ctx context.Context) (models.Week, error)
	Workout(id int64) (models.Workout, bool)
	Workouts() []models.Workout
	AddWorkout(ctx context.Context, weekID int64, w models.Workout) (models.Workout, error)
	UpdateWorkout(ctx context.Context, w models.Workout) error
	Templates() []models.Template
	AddTemplate(ctx context.Context, t models.Template) error
	AddWeight(ctx context.Context, date string, weight float64) error
	Weights() []models.WeightEntry
	WeightForDate(date string) (models.WeightEntry, bool)
}

// Controller owns the transient interface state. All methods are safe for
// concurrent use; each runs to completion before the next starts.
type Controller struct {
	mu    sync.Mutex
	store Store
	log   *slog.Logger
	now   func() time.Time

	tab          Tab
	activeWeekID int64
	editing      *models.Workout
	openCharts   map[int]bool
	cursor       time.Time
	openDay      string
	flash        string
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a controller showing the first week.
func New(store Store, log *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		log:        log,
		now:        time.Now,
		tab:        TabWeek,
		openCharts: map[int]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if weeks := store.Weeks(); len(weeks) > 0 {
		c.activeWeekID = weeks[0].ID
	}
	c.cursor = calendar.StartOfMonth(c.now())
	return c
}

func (c *Controller) today() string {
	return c.now().Format(models.DateLayout)
}

// SelectWeek shows the given week and abandons any open editor.
func (c *Controller) SelectWeek(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.ContainsFunc(c.store.Weeks(), func(w models.Week) bool { return w.ID == id }) {
		return fmt.Errorf("selecting week %d: %w", id, ErrWeekNotFound)
	}
	c.tab = TabWeek
	c.activeWeekID = id
	c.closeEditor()
	return nil
}

// AddWeek creates the next week and selects it.
func (c *Controller) AddWeek(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	week, err := c.store.AddWeek(ctx)
	if err != nil {
		return fmt.Errorf("adding week: %w", err)
	}
	c.activeWeekID = week.ID
	c.tab = TabWeek
	c.log.Info("week added", "week_id", week.ID, "name", week.Name)
	return nil
}

// ShowWeight switches to the weight tab. An open editor stays on screen.
func (c *Controller) ShowWeight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = TabWeight
}

// ShowCalendar switches to the calendar tab. An open editor stays on screen.
func (c *Controller) ShowCalendar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = TabCalendar
}

// PrevMonth moves the calendar cursor back one month.
func (c *Controller) PrevMonth() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = calendar.Shift(c.cursor, -1)
}

// NextMonth moves the calendar cursor forward one month.
func (c *Controller) NextMonth() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = calendar.Shift(c.cursor, 1)
}

// OpenDay shows the day detail overlay for date.
func (c *Controller) OpenDay(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openDay = date
	return nil
}

// CloseDay hides the day detail overlay.
func (c *Controller) CloseDay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openDay = ""
}

// LogWeight upserts a bodyweight entry. Submissions without a date or with a
// weight that parses to zero or nothing are dropped; the return value reports
// whether the entry was stored.
func (c *Controller) LogWeight(ctx context.Context, date, raw string) (bool, error) {
	weight := ParseNumber(raw)
	if date == "" || weight == 0 {
		return false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.AddWeight(ctx, date, weight); err != nil {
		return false, fmt.Errorf("logging weight: %w", err)
	}
	return true, nil
}

// Now exposes the controller clock to the rendering layer.
func (c *Controller) Now() time.Time {
	return c.now()
}

// closeEditor drops the edit buffer. Callers hold c.mu.
func (c *Controller) closeEditor() {
	c.editing = nil
	clear(c.openCharts)
}

// weekByID finds the active week, falling back to the first one.
func weekByID(weeks []models.Week, id int64) (models.Week, bool) {
	if i := slices.IndexFunc(weeks, func(w models.Week) bool { return w.ID == id }); i >= 0 {
		return weeks[i], true
	}
	if len(weeks) > 0 {
		return weeks[0], true
	}
	return models.Week{}, false
}
