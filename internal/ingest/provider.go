// Package ingest holds what the import providers have in common.
package ingest

// Result summarises one import run.
type Result struct {
	Week             string `json:"week"`
	SessionsReceived int    `json:"sessions_received"`
	WorkoutsInserted int    `json:"workouts_inserted"`
	WorkoutsSkipped  int    `json:"workouts_skipped"`
	SetsInserted     int    `json:"sets_inserted"`
	WarmupsSkipped   int    `json:"warmups_skipped"`
	DryRun           bool   `json:"dry_run,omitempty"`
	Message          string `json:"message,omitempty"`
}
