package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource abstracts the tracker state for MCP tools.
type DataSource interface {
	Weeks() []models.Week
	Workout(id int64) (models.Workout, bool)
	Workouts() []models.Workout
	Templates() []models.Template
	Weights() []models.WeightEntry
	WeightForDate(date string) (models.WeightEntry, bool)
	AddWeight(ctx context.Context, date string, weight float64) error
	Snapshot() models.State
}

// Compile-time check: *storage.Store satisfies DataSource.
var _ DataSource = (*storage.Store)(nil)
