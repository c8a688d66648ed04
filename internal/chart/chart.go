// Package chart builds line-chart configurations in the shape Chart.js
// accepts. Rendering happens in the browser.
package chart

import (
	"math"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/progress"
)

const (
	seriesColor = "#bb86fc"
	trendColor  = "#03dac6"
	gridColor   = "#333"
	textColor   = "#e0e0e0"
)

// Config is a complete line chart definition.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
	Tension     float64   `json:"tension,omitempty"`
	Fill        bool      `json:"fill"`
	BorderDash  []int     `json:"borderDash,omitempty"`
	PointRadius *int      `json:"pointRadius,omitempty"`
}

type Options struct {
	Responsive          bool            `json:"responsive"`
	MaintainAspectRatio bool            `json:"maintainAspectRatio"`
	Scales              map[string]Axis `json:"scales"`
	Plugins             Plugins         `json:"plugins"`
}

type Axis struct {
	Grid  Color `json:"grid"`
	Ticks Color `json:"ticks"`
}

type Color struct {
	Color string `json:"color"`
}

type Plugins struct {
	Legend Legend `json:"legend"`
}

type Legend struct {
	Labels Color `json:"labels"`
}

// Line builds a chart of values with a dashed least-squares trend line
// added when there are at least two values. Points whose value is NaN or
// infinite are dropped since they cannot be encoded as JSON.
func Line(label string, labels []string, values []float64) Config {
	labels, values = finitePoints(labels, values)
	datasets := []Dataset{{
		Label:       label,
		Data:        values,
		BorderColor: seriesColor,
		Tension:     0.1,
	}}
	if trend, ok := progress.TrendLine(values); ok {
		zero := 0
		datasets = append(datasets, Dataset{
			Label:       "Trend",
			Data:        trend,
			BorderColor: trendColor,
			BorderDash:  []int{5, 5},
			PointRadius: &zero,
		})
	}

	axis := Axis{Grid: Color{gridColor}, Ticks: Color{textColor}}
	return Config{
		Type: "line",
		Data: Data{Labels: labels, Datasets: datasets},
		Options: Options{
			Responsive:          true,
			MaintainAspectRatio: false,
			Scales:              map[string]Axis{"x": axis, "y": axis},
			Plugins:             Plugins{Legend: Legend{Labels: Color{textColor}}},
		},
	}
}

func finitePoints(labels []string, values []float64) ([]string, []float64) {
	keptLabels := make([]string, 0, len(labels))
	keptValues := make([]float64, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if i < len(labels) {
			keptLabels = append(keptLabels, labels[i])
		}
		keptValues = append(keptValues, v)
	}
	return keptLabels, keptValues
}

// Weight charts bodyweight over time. It returns nil when there are no entries.
func Weight(entries []models.WeightEntry) *Config {
	if len(entries) == 0 {
		return nil
	}
	labels := make([]string, len(entries))
	values := make([]float64, len(entries))
	for i, e := range entries {
		labels[i] = e.Date
		values[i] = e.Weight
	}
	c := Line("Weight", labels, values)
	return &c
}

// OneRepMax charts an estimated 1RM history. It returns nil when there are no points.
func OneRepMax(points []progress.Point) *Config {
	if len(points) == 0 {
		return nil
	}
	c := Line("Estimated 1RM", progress.Labels(points), progress.Values(points))
	return &c
}
