package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns the same instant on every call, which forces the id
// generator onto its same-tick path.
func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func openMemory(t *testing.T, b Backend) *Store {
	t.Helper()
	s, err := Open(context.Background(), b, quietLog(), WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

// TestOpenDefaults verifies a fresh backend bootstraps the default state and
// persists it immediately.
func TestOpenDefaults(t *testing.T) {
	b := NewMemory()
	s := openMemory(t, b)

	weeks := s.Weeks()
	if len(weeks) != 1 || weeks[0].Name != "Week 1" {
		t.Fatalf("weeks = %+v, want [Week 1]", weeks)
	}
	if got := len(s.Templates()); got != 3 {
		t.Errorf("templates = %d, want 3", got)
	}
	if _, ok, _ := b.Get(context.Background(), StateKey); !ok {
		t.Error("state not persisted on open")
	}
}

// TestRoundTrip verifies that reopening the same backend yields a state
// equal by value to the one that was persisted.
func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	s := openMemory(t, b)

	week, err := s.AddWeek(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddWorkout(ctx, week.ID, models.Workout{
		Date:  "2024-01-05",
		Title: "Push",
		Exercises: []models.Exercise{
			{Name: "Bench", Sets: []models.Set{{Weight: 100, Reps: 5}}},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddTemplate(ctx, models.Template{Name: "Arms", Exercises: []models.Exercise{{Name: "Curl", Sets: []models.Set{}}}}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddWeight(ctx, "2024-01-05", 80.5); err != nil {
		t.Fatal(err)
	}

	reopened := openMemory(t, b)
	if got, want := reopened.Snapshot(), s.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

// TestWeightUpsert verifies one entry per date, last write wins, and the
// sequence stays sorted after every call.
func TestWeightUpsert(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, NewMemory())

	steps := []struct {
		date   string
		weight float64
	}{
		{"2024-01-05", 70},
		{"2024-01-03", 71},
		{"2024-01-05", 72},
		{"2023-12-31", 73},
	}
	for _, st := range steps {
		if err := s.AddWeight(ctx, st.date, st.weight); err != nil {
			t.Fatal(err)
		}
		ws := s.Weights()
		if !slices.IsSortedFunc(ws, func(a, b models.WeightEntry) int { return models.CompareDates(a.Date, b.Date) }) {
			t.Fatalf("weights not sorted after %s: %+v", st.date, ws)
		}
	}

	ws := s.Weights()
	if len(ws) != 3 {
		t.Fatalf("weights = %+v, want 3 entries", ws)
	}
	e, ok := s.WeightForDate("2024-01-05")
	if !ok || e.Weight != 72 {
		t.Errorf("WeightForDate(2024-01-05) = %+v, %v; want 72", e, ok)
	}
	if _, ok := s.WeightForDate("2024-02-01"); ok {
		t.Error("expected no entry for 2024-02-01")
	}
}

// TestAddWorkoutLinksWeek verifies the new id is appended exactly once to the
// target week and the stored workout equals the input plus the id.
func TestAddWorkoutLinksWeek(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, NewMemory())
	weekID := s.Weeks()[0].ID

	in := models.Workout{
		Date:      "2024-01-05",
		Title:     "Legs",
		Exercises: []models.Exercise{{Name: "Squat", Sets: []models.Set{{Weight: 140, Reps: 3}}}},
	}
	got, err := s.AddWorkout(ctx, weekID, in)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID == 0 {
		t.Fatal("workout id not assigned")
	}

	count := 0
	for _, id := range s.Weeks()[0].WorkoutIDs {
		if id == got.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("week contains new id %d times, want 1", count)
	}

	stored, ok := s.Workout(got.ID)
	want := in
	want.ID = got.ID
	if !ok || !reflect.DeepEqual(stored, want) {
		t.Errorf("Workout(%d) = %+v, want %+v", got.ID, stored, want)
	}
}

// TestAddWorkoutUnknownWeek verifies the unknown-week case stores an orphan
// workout without touching any week.
func TestAddWorkoutUnknownWeek(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, NewMemory())

	w, err := s.AddWorkout(ctx, -1, models.Workout{Date: "2024-01-05", Title: "Orphan"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Workout(w.ID); !ok {
		t.Error("orphan workout not stored")
	}
	if n := len(s.Weeks()[0].WorkoutIDs); n != 0 {
		t.Errorf("week has %d workouts, want 0", n)
	}
}

// TestIDsUniqueWithinTick verifies ids stay unique when the clock does not
// advance between creations.
func TestIDsUniqueWithinTick(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, NewMemory())

	seen := map[int64]bool{s.Weeks()[0].ID: true}
	for i := 0; i < 5; i++ {
		wk, err := s.AddWeek(ctx)
		if err != nil {
			t.Fatal(err)
		}
		wo, err := s.AddWorkout(ctx, wk.ID, models.Workout{Date: "2024-01-05"})
		if err != nil {
			t.Fatal(err)
		}
		for _, id := range []int64{wk.ID, wo.ID} {
			if seen[id] {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = true
		}
	}
	if name := s.Weeks()[5].Name; name != "Week 6" {
		t.Errorf("sixth week name = %q, want Week 6", name)
	}
}

// TestIDsSeededFromState verifies a reopened store never reissues an id
// already present in the persisted state.
func TestIDsSeededFromState(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	s := openMemory(t, b)
	w, err := s.AddWorkout(ctx, s.Weeks()[0].ID, models.Workout{Date: "2024-01-05"})
	if err != nil {
		t.Fatal(err)
	}

	reopened := openMemory(t, b)
	wk, err := reopened.AddWeek(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if wk.ID <= w.ID {
		t.Errorf("new week id %d not greater than existing id %d", wk.ID, w.ID)
	}
}

// TestCorruptStateFallsBack verifies unreadable or inconsistent blobs are
// replaced by the default state.
func TestCorruptStateFallsBack(t *testing.T) {
	blobs := map[string]string{
		"not json":       "{{{",
		"no weeks":       `{"weeks":[],"workouts":{},"templates":[],"weights":[]}`,
		"dangling link":  `{"weeks":[{"id":1,"name":"Week 1","workoutIds":[99]}],"workouts":{},"templates":[],"weights":[]}`,
		"wrong type":     `{"weeks":"nope"}`,
		"mismatched key": `{"weeks":[{"id":1,"name":"W","workoutIds":[5]}],"workouts":{"5":{"id":6}},"templates":[],"weights":[]}`,
	}
	for name, blob := range blobs {
		t.Run(name, func(t *testing.T) {
			b := NewMemory()
			if err := b.Put(context.Background(), StateKey, blob); err != nil {
				t.Fatal(err)
			}
			s := openMemory(t, b)
			weeks := s.Weeks()
			if len(weeks) != 1 || weeks[0].Name != "Week 1" || len(s.Templates()) != 3 {
				t.Errorf("expected default state, got %+v", s.Snapshot())
			}
		})
	}
}

// TestPersistFailurePropagates verifies backend write errors surface to the caller.
func TestPersistFailurePropagates(t *testing.T) {
	b := NewMemory()
	s := openMemory(t, b)
	b.PutErr = errors.New("quota exceeded")

	err := s.AddWeight(context.Background(), "2024-01-05", 70)
	if err == nil || !errors.Is(err, b.PutErr) {
		t.Fatalf("AddWeight error = %v, want wrapped quota error", err)
	}
}

// TestAccessorsReturnCopies verifies callers cannot mutate stored state
// through returned values.
func TestAccessorsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, NewMemory())
	w, err := s.AddWorkout(ctx, s.Weeks()[0].ID, models.Workout{
		Date:      "2024-01-05",
		Exercises: []models.Exercise{{Name: "Row", Sets: []models.Set{{Weight: 60, Reps: 10}}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := s.Workout(w.ID)
	got.Exercises[0].Sets[0].Weight = 999
	s.Weeks()[0].WorkoutIDs[0] = 0
	s.Templates()[0].Name = "changed"

	again, _ := s.Workout(w.ID)
	if again.Exercises[0].Sets[0].Weight != 60 {
		t.Error("workout mutated through accessor")
	}
	if s.Weeks()[0].WorkoutIDs[0] != w.ID {
		t.Error("week mutated through accessor")
	}
	if s.Templates()[0].Name != "Push" {
		t.Error("template mutated through accessor")
	}
}

// TestWorkoutsOrdered verifies Workouts returns ascending ids.
func TestWorkoutsOrdered(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, NewMemory())
	weekID := s.Weeks()[0].ID
	for _, d := range []string{"2024-01-07", "2024-01-01", "2024-01-04"} {
		if _, err := s.AddWorkout(ctx, weekID, models.Workout{Date: d}); err != nil {
			t.Fatal(err)
		}
	}
	ws := s.Workouts()
	if !slices.IsSortedFunc(ws, func(a, b models.Workout) int { return int(a.ID - b.ID) }) {
		t.Errorf("workouts not ordered by id: %+v", ws)
	}
}

// TestSQLiteRoundTrip verifies the SQLite backend persists blobs across reopen.
func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "liftlog.db")

	b, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, err := b.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	s := openMemory(t, b)
	if err := s.AddWeight(ctx, "2024-01-05", 70); err != nil {
		t.Fatal(err)
	}
	want := s.Snapshot()
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	b2, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b2.Close()
	s2 := openMemory(t, b2)
	if got := s2.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("sqlite round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

// TestOpenBackendDrivers verifies driver selection for the backends that need
// no external service.
func TestOpenBackendDrivers(t *testing.T) {
	ctx := context.Background()

	b, err := OpenBackend(ctx, "memory", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*Memory); !ok {
		t.Errorf("memory driver returned %T", b)
	}

	b, err = OpenBackend(ctx, "sqlite", filepath.Join(t.TempDir(), "liftlog.db"), "")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if _, ok := b.(*SQLite); !ok {
		t.Errorf("sqlite driver returned %T", b)
	}

	if _, err := OpenBackend(ctx, "redis", "", ""); err == nil {
		t.Error("expected error for unknown driver")
	}
}
