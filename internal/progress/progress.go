// Package progress holds the arithmetic behind the trend charts: the
// least-squares trend line and estimated one-rep-max history.
package progress

import (
	"math"
	"slices"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// Point is one charted value for a date.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// TrendLine fits y = slope*i + intercept over (index, value) pairs by
// ordinary least squares and returns the fitted value at every index.
// Indices are positions in the slice, so gaps between dates are ignored.
// It returns false when fewer than two values are given or when the fit
// overflows to a non-finite value.
func TrendLine(values []float64) ([]float64, bool) {
	n := float64(len(values))
	if len(values) < 2 {
		return nil, false
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	fitted := make([]float64, len(values))
	for i := range values {
		fitted[i] = slope*float64(i) + intercept
		if !finite(fitted[i]) {
			return nil, false
		}
	}
	return fitted, true
}

// OneRepMax estimates a single-repetition max with the Epley formula.
// A single rep is taken at face value.
func OneRepMax(weight, reps float64) float64 {
	if reps == 1 {
		return weight
	}
	return weight * (1 + reps/30)
}

// BestOneRepMax returns the largest estimate across sets, or 0 for none.
// Estimates that overflow are ignored.
func BestOneRepMax(sets []models.Set) float64 {
	var best float64
	for _, s := range sets {
		if est := OneRepMax(s.Weight, s.Reps); finite(est) && est > best {
			best = est
		}
	}
	return best
}

// History builds one point per workout containing an exercise named
// exerciseName (case-insensitive). The point holds the workout's best set
// estimate. Workouts whose best estimate is not positive are skipped.
// Points are ordered by date, ties keeping workout order.
func History(workouts []models.Workout, exerciseName string) []Point {
	var points []Point
	for _, w := range workouts {
		idx := slices.IndexFunc(w.Exercises, func(ex models.Exercise) bool {
			return strings.EqualFold(ex.Name, exerciseName)
		})
		if idx < 0 {
			continue
		}
		if best := BestOneRepMax(w.Exercises[idx].Sets); best > 0 {
			points = append(points, Point{Date: w.Date, Value: best})
		}
	}
	slices.SortStableFunc(points, func(a, b Point) int {
		return models.CompareDates(a.Date, b.Date)
	})
	return points
}

// WithProvisional returns history unchanged unless it is empty, in which
// case the unsaved sets of the exercise being edited contribute a single
// point dated at the editor's date, so a first attempt still charts.
func WithProvisional(history []Point, current models.Exercise, date string) []Point {
	if len(history) > 0 {
		return history
	}
	if best := BestOneRepMax(current.Sets); best > 0 {
		return []Point{{Date: date, Value: best}}
	}
	return history
}

// Values extracts the numeric series from points.
func Values(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// Labels extracts the date labels from points.
func Labels(points []Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Date
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
