package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// StateKey is the key the whole state blob is stored under.
const StateKey = "workoutTrackerData"

// Store owns the tracker state. Every mutator persists the full state to the
// backend before returning. Accessors hand out deep copies.
type Store struct {
	mu      sync.Mutex
	backend Backend
	key     string
	log     *slog.Logger
	ids     *idGen
	data    models.State
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for id generation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.ids.now = now }
}

// WithKey overrides the blob key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// Open loads the state from backend, falling back to defaults when the blob
// is absent or unreadable, and persists the result.
func Open(ctx context.Context, backend Backend, log *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		key:     StateKey,
		log:     log,
		ids:     &idGen{now: time.Now},
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, ok, err := backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	var state models.State
	switch {
	case !ok:
		state = models.DefaultState(s.ids.next())
		log.Info("no stored state, using defaults", "key", s.key)
	default:
		state, err = decodeState(raw)
		if err != nil {
			log.Warn("stored state unreadable, replacing with defaults", "key", s.key, "error", err)
			state = models.DefaultState(s.ids.next())
		}
	}
	s.ids.seed(state.MaxID())
	s.data = state

	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeState(raw string) (models.State, error) {
	var st models.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return models.State{}, fmt.Errorf("decoding state: %w", err)
	}
	if len(st.Weeks) == 0 {
		return models.State{}, errors.New("state has no weeks")
	}
	if st.Workouts == nil {
		st.Workouts = map[int64]models.Workout{}
	}
	for i, w := range st.Weeks {
		if w.WorkoutIDs == nil {
			st.Weeks[i].WorkoutIDs = []int64{}
		}
		for _, id := range w.WorkoutIDs {
			if _, ok := st.Workouts[id]; !ok {
				return models.State{}, fmt.Errorf("week %d references missing workout %d", w.ID, id)
			}
		}
	}
	for id, w := range st.Workouts {
		if w.ID != id {
			return models.State{}, fmt.Errorf("workout keyed %d carries id %d", id, w.ID)
		}
		if w.Exercises == nil {
			w.Exercises = []models.Exercise{}
			st.Workouts[id] = w
		}
	}
	if st.Templates == nil {
		st.Templates = []models.Template{}
	}
	if st.Weights == nil {
		st.Weights = []models.WeightEntry{}
	}
	return st, nil
}

// save writes the whole state. Callers hold s.mu (or own s exclusively).
func (s *Store) save(ctx context.Context) error {
	data, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := s.backend.Put(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("persisting state: %w", err)
	}
	return nil
}

// Weeks returns all weeks in creation order.
func (s *Store) Weeks() []models.Week {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Week, len(s.data.Weeks))
	for i, w := range s.data.Weeks {
		out[i] = w.Clone()
	}
	return out
}

// WeekByName returns the first week with the given name.
func (s *Store) WeekByName(name string) (models.Week, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.data.Weeks {
		if w.Name == name {
			return w.Clone(), true
		}
	}
	return models.Week{}, false
}

// AddWeek appends a week named "Week N" where N is the new week count.
func (s *Store) AddWeek(ctx context.Context) (models.Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	week := models.Week{
		ID:         s.ids.next(),
		Name:       fmt.Sprintf("Week %d", len(s.data.Weeks)+1),
		WorkoutIDs: []int64{},
	}
	s.data.Weeks = append(s.data.Weeks, week)
	if err := s.save(ctx); err != nil {
		return models.Week{}, err
	}
	return week.Clone(), nil
}

// Workout returns the workout with the given id.
func (s *Store) Workout(id int64) (models.Workout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.data.Workouts[id]
	if !ok {
		return models.Workout{}, false
	}
	return w.Clone(), true
}

// Workouts returns every workout ordered by ascending id.
func (s *Store) Workouts() []models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.data.Workouts))
	for id := range s.data.Workouts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]models.Workout, len(ids))
	for i, id := range ids {
		out[i] = s.data.Workouts[id].Clone()
	}
	return out
}

// AddWorkout stores w under a fresh id and links it to the week. When no
// week matches weekID the workout is still stored but unreachable from any
// week; that case is logged.
func (s *Store) AddWorkout(ctx context.Context, weekID int64, w models.Workout) (models.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := w.Clone()
	stored.ID = s.ids.next()
	s.data.Workouts[stored.ID] = stored

	linked := false
	for i := range s.data.Weeks {
		if s.data.Weeks[i].ID == weekID {
			s.data.Weeks[i].WorkoutIDs = append(s.data.Weeks[i].WorkoutIDs, stored.ID)
			linked = true
			break
		}
	}
	if !linked {
		s.log.Warn("workout stored without a week", "workout_id", stored.ID, "week_id", weekID)
	}

	if err := s.save(ctx); err != nil {
		return models.Workout{}, err
	}
	return stored.Clone(), nil
}

// UpdateWorkout overwrites the workout stored under w.ID. The id is not
// checked against existing workouts or weeks.
func (s *Store) UpdateWorkout(ctx context.Context, w models.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Workouts[w.ID] = w.Clone()
	return s.save(ctx)
}

// Templates returns all templates in creation order.
func (s *Store) Templates() []models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Template, len(s.data.Templates))
	for i, t := range s.data.Templates {
		out[i] = t.Clone()
	}
	return out
}

// AddTemplate appends t. Names are not deduplicated.
func (s *Store) AddTemplate(ctx context.Context, t models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Templates = append(s.data.Templates, t.Clone())
	return s.save(ctx)
}

// AddWeight records weight for date, replacing any entry with the same date,
// and keeps entries sorted by date.
func (s *Store) AddWeight(ctx context.Context, date string, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.data.Weights, func(e models.WeightEntry) bool { return e.Date == date })
	if idx >= 0 {
		s.data.Weights[idx].Weight = weight
	} else {
		s.data.Weights = append(s.data.Weights, models.WeightEntry{Date: date, Weight: weight})
	}
	slices.SortStableFunc(s.data.Weights, func(a, b models.WeightEntry) int {
		return models.CompareDates(a.Date, b.Date)
	})
	return s.save(ctx)
}

// Weights returns all weight entries sorted by date ascending.
func (s *Store) Weights() []models.WeightEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.Weights)
}

// WeightForDate returns the entry recorded for date, if any.
func (s *Store) WeightForDate(date string) (models.WeightEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.data.Weights {
		if e.Date == date {
			return e, true
		}
	}
	return models.WeightEntry{}, false
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}
