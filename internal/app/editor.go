package app

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// CreateWorkout opens the editor on a blank workout dated today.
func (c *Controller) CreateWorkout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeEditor()
	c.editing = &models.Workout{
		Title:     "New Workout",
		Date:      c.today(),
		Exercises: []models.Exercise{},
	}
}

// EditWorkout opens the editor on a deep copy of a stored workout, so
// nothing reaches the store until SaveWorkout.
func (c *Controller) EditWorkout(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.store.Workout(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrWorkoutNotFound, id)
	}
	c.closeEditor()
	buf := w.Clone()
	c.editing = &buf
	return nil
}

// Editing reports whether a workout is open in the editor.
func (c *Controller) Editing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing != nil
}

// SetTitle changes the title in the edit buffer.
func (c *Controller) SetTitle(title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return ErrNoEditor
	}
	c.editing.Title = title
	return nil
}

// SetDate changes the date in the edit buffer.
func (c *Controller) SetDate(date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return ErrNoEditor
	}
	c.editing.Date = date
	return nil
}

// RenameExercise changes an exercise name in the edit buffer.
func (c *Controller) RenameExercise(idx int, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ex, err := c.exercise(idx)
	if err != nil {
		return err
	}
	ex.Name = name
	return nil
}

// ApplyTemplate replaces the buffer's exercises with a copy of the named
// template's exercises and takes the template name as title. Anything
// already entered is discarded. An empty or unknown name does nothing.
func (c *Controller) ApplyTemplate(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return ErrNoEditor
	}
	if c.editing.ID != 0 {
		return ErrNotNewWorkout
	}
	if name == "" {
		return nil
	}
	for _, t := range c.store.Templates() {
		if t.Name == name {
			c.editing.Title = t.Name
			c.editing.Exercises = models.CloneExercises(t.Exercises)
			clear(c.openCharts)
			return nil
		}
	}
	return nil
}

// AddExercise appends an unnamed exercise with one empty set.
func (c *Controller) AddExercise() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return ErrNoEditor
	}
	c.editing.Exercises = append(c.editing.Exercises, models.Exercise{Sets: []models.Set{{}}})
	clear(c.openCharts)
	return nil
}

// RemoveExercise deletes the exercise at idx; later exercises shift down.
func (c *Controller) RemoveExercise(idx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.exercise(idx); err != nil {
		return err
	}
	exs := c.editing.Exercises
	c.editing.Exercises = append(exs[:idx:idx], exs[idx+1:]...)
	clear(c.openCharts)
	return nil
}

// AddSet appends a set to an exercise, copying the previous set's values
// when there is one.
func (c *Controller) AddSet(exIdx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ex, err := c.exercise(exIdx)
	if err != nil {
		return err
	}
	var next models.Set
	if n := len(ex.Sets); n > 0 {
		next = ex.Sets[n-1]
	}
	ex.Sets = append(ex.Sets, next)
	clear(c.openCharts)
	return nil
}

// UpdateSet assigns a "weight" or "reps" value. Input that does not start
// with a number becomes 0.
func (c *Controller) UpdateSet(exIdx, setIdx int, field, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, err := c.set(exIdx, setIdx)
	if err != nil {
		return err
	}
	v := ParseNumber(raw)
	switch field {
	case "weight":
		set.Weight = v
	case "reps":
		set.Reps = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// RemoveSet deletes one set from an exercise.
func (c *Controller) RemoveSet(exIdx, setIdx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.set(exIdx, setIdx); err != nil {
		return err
	}
	ex := &c.editing.Exercises[exIdx]
	ex.Sets = append(ex.Sets[:setIdx:setIdx], ex.Sets[setIdx+1:]...)
	clear(c.openCharts)
	return nil
}

// ToggleOneRepMaxChart shows or hides the estimated 1RM chart for an exercise.
func (c *Controller) ToggleOneRepMaxChart(exIdx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.exercise(exIdx); err != nil {
		return err
	}
	if c.openCharts[exIdx] {
		delete(c.openCharts, exIdx)
	} else {
		c.openCharts[exIdx] = true
	}
	return nil
}

// SaveWorkout writes the buffer to the store, updating a stored workout or
// adding a new one to the active week, and closes the editor.
func (c *Controller) SaveWorkout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return ErrNoEditor
	}
	w := c.editing.Clone()
	if w.ID != 0 {
		if err := c.store.UpdateWorkout(ctx, w); err != nil {
			return fmt.Errorf("updating workout: %w", err)
		}
		c.log.Info("workout updated", "workout_id", w.ID)
	} else {
		week, ok := weekByID(c.store.Weeks(), c.activeWeekID)
		if !ok {
			return fmt.Errorf("adding workout: %w", ErrWeekNotFound)
		}
		stored, err := c.store.AddWorkout(ctx, week.ID, w)
		if err != nil {
			return fmt.Errorf("adding workout: %w", err)
		}
		c.log.Info("workout added", "workout_id", stored.ID, "week_id", week.ID)
	}
	c.closeEditor()
	return nil
}

// SaveAsTemplate stores a copy of the buffer's exercises as a new template.
// An empty name does nothing. The editor stays open.
func (c *Controller) SaveAsTemplate(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return ErrNoEditor
	}
	if name == "" {
		return nil
	}
	tpl := models.Template{Name: name, Exercises: models.CloneExercises(c.editing.Exercises)}
	if err := c.store.AddTemplate(ctx, tpl); err != nil {
		return fmt.Errorf("adding template: %w", err)
	}
	c.flash = "Template saved!"
	clear(c.openCharts)
	return nil
}

// Cancel discards the buffer without touching the store.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeEditor()
}

// EditorFields carries every bound input of the editor form. Values for
// indices that no longer exist are ignored.
type EditorFields struct {
	Title     string
	Date      string
	Exercises []ExerciseFields
}

// ExerciseFields are the inputs of one exercise block.
type ExerciseFields struct {
	Name string
	Sets []SetFields
}

// SetFields are the raw weight and reps inputs of one set row.
type SetFields struct {
	Weight string
	Reps   string
}

// Bind copies form inputs into the buffer, as field change events would.
func (c *Controller) Bind(f EditorFields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return ErrNoEditor
	}
	c.editing.Title = f.Title
	c.editing.Date = f.Date
	for i, exf := range f.Exercises {
		if i >= len(c.editing.Exercises) {
			break
		}
		ex := &c.editing.Exercises[i]
		ex.Name = exf.Name
		for j, sf := range exf.Sets {
			if j >= len(ex.Sets) {
				break
			}
			ex.Sets[j] = models.Set{Weight: ParseNumber(sf.Weight), Reps: ParseNumber(sf.Reps)}
		}
	}
	return nil
}

// exercise returns a pointer into the buffer. Callers hold c.mu.
func (c *Controller) exercise(idx int) (*models.Exercise, error) {
	if c.editing == nil {
		return nil, ErrNoEditor
	}
	if idx < 0 || idx >= len(c.editing.Exercises) {
		return nil, fmt.Errorf("%w: exercise %d", ErrIndexOutOfRange, idx)
	}
	return &c.editing.Exercises[idx], nil
}

// set returns a pointer into the buffer. Callers hold c.mu.
func (c *Controller) set(exIdx, setIdx int) (*models.Set, error) {
	ex, err := c.exercise(exIdx)
	if err != nil {
		return nil, err
	}
	if setIdx < 0 || setIdx >= len(ex.Sets) {
		return nil, fmt.Errorf("%w: set %d of exercise %d", ErrIndexOutOfRange, setIdx, exIdx)
	}
	return &ex.Sets[setIdx], nil
}
