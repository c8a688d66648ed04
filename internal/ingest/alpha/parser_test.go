package alpha

import (
	"strings"
	"testing"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;0,5

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 16:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseSessions is the end-to-end happy path: two sessions, exercise
// headers with and without equipment modifiers, warmups and working sets.
func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	s1 := sessions[0]
	if s1.Duration != "1:02 hr" || s1.Date.Format("2006-01-02 15:04") != "2026-02-19 04:54" {
		t.Errorf("s1 = %q %v", s1.Duration, s1.Date)
	}
	if s1.Title() != "Legs" {
		t.Errorf("s1.Title() = %q, want Legs", s1.Title())
	}

	exercises := []struct {
		name, equipment string
		target, sets    int
	}{
		{"Hack Squats", "Machine", 8, 5},
		{"Sumo Squats", "Smith machine", 10, 3},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 4},
		{"Reverse Lunges", "Dumbbells", 10, 3},
		{"Hanging Leg Raises", "Bodyweight", 12, 2},
	}
	if len(s1.Exercises) != len(exercises) {
		t.Fatalf("s1 exercises = %d, want %d", len(s1.Exercises), len(exercises))
	}
	for i, want := range exercises {
		got := s1.Exercises[i]
		if got.Name != want.name || got.Equipment != want.equipment || got.TargetReps != want.target || len(got.Sets) != want.sets {
			t.Errorf("exercise %d = %q/%q target %d sets %d, want %+v", i, got.Name, got.Equipment, got.TargetReps, len(got.Sets), want)
		}
	}

	if got := s1.Exercises[4].Sets[1].RIR; got != 0.5 {
		t.Errorf("fractional RIR = %v, want 0.5", got)
	}
	if s2 := sessions[1]; s2.Title() != "Push" || s2.Date.Hour() != 16 {
		t.Errorf("s2 = %q at %v", s2.Title(), s2.Date)
	}
}

// TestParseWeight covers decimal commas and bodyweight-plus notation.
func TestParseWeight(t *testing.T) {
	tests := []struct {
		in     string
		weight float64
		bw     bool
	}{
		{"102,5", 102.5, false},
		{"115", 115, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{" 7,5 ", 7.5, false},
	}
	for _, tt := range tests {
		w, bw := parseWeight(tt.in)
		if w != tt.weight || bw != tt.bw {
			t.Errorf("parseWeight(%q) = %v, %v; want %v, %v", tt.in, w, bw, tt.weight, tt.bw)
		}
	}
}

// TestWarmupParsing verifies warmups split on <br> and are flagged.
func TestWarmupParsing(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · +0 kg · 7 reps")
	if len(sets) != 2 {
		t.Fatalf("warmup sets = %d, want 2", len(sets))
	}
	if sets[0].WeightKg != 37.5 || sets[0].Reps != 9 || !sets[0].IsWarmup {
		t.Errorf("wu1 = %+v", sets[0])
	}
	if !sets[1].IsBodyweightPlus || sets[1].WeightKg != 0 {
		t.Errorf("wu2 = %+v", sets[1])
	}
}

// TestEmptyInput verifies that empty input returns no sessions without error.
func TestEmptyInput(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestParseStructureErrors verifies orphan exercise and set lines are rejected.
func TestParseStructureErrors(t *testing.T) {
	inputs := map[string]string{
		"exercise without session": `"1. Bench Press · Barbell · 6 reps"`,
		"set without exercise":     "\"Push\";\"2026-02-17 5:04 h\";\"1:00 hr\"\n1;100;5;1",
	}
	for name, in := range inputs {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
