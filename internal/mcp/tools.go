package mcp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/calendar"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/progress"
	"github.com/mark3labs/mcp-go/mcp"
)

// dateRange validates optional YYYY-MM-DD bounds. Empty bounds are open.
func dateRange(start, end string) (string, string, error) {
	for _, s := range []string{start, end} {
		if s == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, s); err != nil {
			return "", "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
		}
	}
	return start, end, nil
}

func inRange(date, start, end string) bool {
	if start != "" && models.CompareDates(date, start) < 0 {
		return false
	}
	if end != "" && models.CompareDates(date, end) > 0 {
		return false
	}
	return true
}

// --- Tool definitions ---

var toolListWeeks = mcp.NewTool("list_weeks",
	mcp.WithDescription("List training weeks in creation order with a summary (id, title, date) of each workout they contain."),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout with every exercise and set (weight and reps)."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id as returned by list_weeks")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List workout templates with their exercise lists."),
)

var toolGetWeights = mcp.NewTool("get_weights",
	mcp.WithDescription("Bodyweight entries sorted by date, with the least-squares trend value for each entry."),
	mcp.WithString("start", mcp.Description("First date to include (YYYY-MM-DD). Defaults to the earliest entry.")),
	mcp.WithString("end", mcp.Description("Last date to include (YYYY-MM-DD). Defaults to the latest entry.")),
)

var toolLogWeight = mcp.NewTool("log_weight",
	mcp.WithDescription("Record bodyweight for a date, replacing any existing entry for that date."),
	mcp.WithString("date", mcp.Required(), mcp.Description("Date (YYYY-MM-DD)")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Bodyweight, must be positive")),
)

var toolGetOneRepMaxHistory = mcp.NewTool("get_one_rep_max_history",
	mcp.WithDescription("Estimated one-rep-max (Epley) per workout for an exercise, matched case-insensitively, with a trend line."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (e.g. 'Bench Press')")),
)

var toolGetCalendarMonth = mcp.NewTool("get_calendar_month",
	mcp.WithDescription("Calendar grid for a month marking days with a workout and past days without one."),
	mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
)

// --- Tool handlers ---

type workoutSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

type weekSummary struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Workouts []workoutSummary `json:"workouts"`
}

func (h *handlers) listWeeks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weeks := h.ds.Weeks()
	out := make([]weekSummary, 0, len(weeks))
	for _, wk := range weeks {
		s := weekSummary{ID: wk.ID, Name: wk.Name, Workouts: []workoutSummary{}}
		for _, id := range wk.WorkoutIDs {
			w, ok := h.ds.Workout(id)
			if !ok {
				continue
			}
			s.Workouts = append(s.Workouts, workoutSummary{ID: w.ID, Title: w.Title, Date: w.Date})
		}
		out = append(out, s)
	}
	return jsonResult(out)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return mcp.NewToolResultError("invalid workout id: " + raw), nil
	}
	w, ok := h.ds.Workout(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("workout %d not found", id)), nil
	}
	return jsonResult(w)
}

func (h *handlers) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.ds.Templates())
}

type weightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Trend  float64 `json:"trend,omitempty"`
}

func (h *handlers) getWeights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := dateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var entries []models.WeightEntry
	for _, e := range h.ds.Weights() {
		if inRange(e.Date, start, end) {
			entries = append(entries, e)
		}
	}

	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.Weight
	}
	trend, _ := progress.TrendLine(values)

	out := make([]weightPoint, len(entries))
	for i, e := range entries {
		out[i] = weightPoint{Date: e.Date, Weight: e.Weight}
		if trend != nil {
			out[i].Trend = trend[i]
		}
	}
	return jsonResult(out)
}

func (h *handlers) logWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date parameter is required"), nil
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date)), nil
	}
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	if weight <= 0 {
		return mcp.NewToolResultError("weight must be positive"), nil
	}

	if err := h.ds.AddWeight(ctx, date, weight); err != nil {
		h.log.Error("mcp log_weight", "error", err)
		return mcp.NewToolResultError("saving weight failed: " + err.Error()), nil
	}
	h.log.Info("mcp log_weight", "date", date, "weight", weight)
	return jsonResult(models.WeightEntry{Date: date, Weight: weight})
}

type oneRepMaxHistory struct {
	Exercise string           `json:"exercise"`
	Points   []progress.Point `json:"points"`
	Trend    []float64        `json:"trend,omitempty"`
	Best     float64          `json:"best"`
}

func (h *handlers) getOneRepMaxHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	points := progress.History(h.ds.Workouts(), name)
	out := oneRepMaxHistory{Exercise: name, Points: points}
	if out.Points == nil {
		out.Points = []progress.Point{}
	}
	out.Trend, _ = progress.TrendLine(progress.Values(points))
	for _, p := range points {
		out.Best = max(out.Best, p.Value)
	}
	return jsonResult(out)
}

func (h *handlers) getCalendarMonth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := h.now()
	cursor := calendar.StartOfMonth(now)
	if raw := req.GetString("month", ""); raw != "" {
		t, err := time.ParseInLocation("2006-01", raw, now.Location())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid month %q, want YYYY-MM", raw)), nil
		}
		cursor = t
	}
	grid := calendar.Month(cursor, now.Format(models.DateLayout), h.ds.Workouts())
	return jsonResult(grid)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
