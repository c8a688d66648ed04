package alpha

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
)

var (
	ErrNoSessions  = errors.New("export contains no sessions")
	ErrUnknownWeek = errors.New("unknown week")
)

// Target is where imported workouts go. *storage.Store satisfies it.
type Target interface {
	WeekByName(name string) (models.Week, bool)
	Workouts() []models.Workout
	AddWorkout(ctx context.Context, weekID int64, w models.Workout) (models.Workout, error)
}

// Provider imports Alpha Progression CSV exports into a week.
type Provider struct {
	store Target
	log   *slog.Logger
}

// NewProvider creates a new Alpha Progression import provider.
func NewProvider(store Target, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Ingest parses an export and adds one workout per session to the named
// week. Sessions already present (same date and title) are skipped, so
// importing the same export twice is harmless.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, weekName string, dryRun bool) (*ingest.Result, error) {
	week, ok := p.store.WeekByName(weekName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWeek, weekName)
	}

	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}

	seen := map[string]bool{}
	for _, w := range p.store.Workouts() {
		seen[w.Date+"\x00"+w.Title] = true
	}

	result := &ingest.Result{Week: week.Name, SessionsReceived: len(sessions), DryRun: dryRun}
	for _, s := range sessions {
		w, warmups := ToWorkout(s)
		key := w.Date + "\x00" + w.Title
		if seen[key] {
			result.WorkoutsSkipped++
			continue
		}
		seen[key] = true
		result.WarmupsSkipped += warmups
		for _, ex := range w.Exercises {
			result.SetsInserted += len(ex.Sets)
		}
		result.WorkoutsInserted++
		if dryRun {
			continue
		}
		stored, err := p.store.AddWorkout(ctx, week.ID, w)
		if err != nil {
			return nil, fmt.Errorf("adding session %s: %w", w.Date, err)
		}
		p.log.Debug("session imported", "workout_id", stored.ID, "date", stored.Date, "title", stored.Title)
	}

	if dryRun {
		result.Message = fmt.Sprintf("dry run: %d workouts would be added to %s", result.WorkoutsInserted, week.Name)
	}

	p.log.Info("alpha import complete",
		"week", week.Name,
		"sessions", result.SessionsReceived,
		"inserted", result.WorkoutsInserted,
		"skipped", result.WorkoutsSkipped,
		"dry_run", dryRun,
	)
	return result, nil
}

// ToWorkout converts a session into a workout. Warmup sets are dropped and
// counted; bodyweight-plus sets keep the added load as their weight.
func ToWorkout(s Session) (models.Workout, int) {
	w := models.Workout{
		Date:      s.Date.Format(models.DateLayout),
		Title:     s.Title(),
		Exercises: make([]models.Exercise, 0, len(s.Exercises)),
	}
	warmups := 0
	for _, ex := range s.Exercises {
		out := models.Exercise{Name: ex.Name, Sets: []models.Set{}}
		for _, set := range ex.Sets {
			if set.IsWarmup {
				warmups++
				continue
			}
			out.Sets = append(out.Sets, models.Set{Weight: set.WeightKg, Reps: float64(set.Reps)})
		}
		w.Exercises = append(w.Exercises, out)
	}
	return w, warmups
}
