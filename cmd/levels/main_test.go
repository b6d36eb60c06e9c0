package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

const testPack = `Test Pack

; 1
#####
#@$.#
#####

; 2
######
#@-$.#
######
`

func writePack(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("Failed to write pack: %v", err)
	}
	return path
}

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(context.Background(), append([]string{"levels"}, args...))
	return out.String(), err
}

func TestValidatePack(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantValid  bool
		wantLevels int
		wantErr    error
	}{
		{name: "valid", text: testPack, wantValid: true, wantLevels: 2},
		{name: "no pusher", text: "#####\n#-$.#\n#####\n", wantErr: engine.ErrNoPusher},
		{name: "empty", text: "just a title\n", wantErr: engine.ErrEmptyCollection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validatePack(writePack(t, "pack.txt", tt.text))
			if result.Valid() != tt.wantValid {
				t.Fatalf("Expected valid=%v, got %v (%v)", tt.wantValid, result.Valid(), result.Err)
			}
			if result.File != "pack.txt" {
				t.Errorf("Expected file name pack.txt, got %s", result.File)
			}
			if tt.wantValid && result.Levels != tt.wantLevels {
				t.Errorf("Expected %d levels, got %d", tt.wantLevels, result.Levels)
			}
			if tt.wantErr != nil && !errors.Is(result.Err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, result.Err)
			}
		})
	}
}

func TestValidatePack_MissingFile(t *testing.T) {
	result := validatePack(filepath.Join(t.TempDir(), "missing.txt"))
	if result.Valid() {
		t.Error("Expected missing file to be invalid")
	}
}

func TestValidateCommand(t *testing.T) {
	good := writePack(t, "good.txt", testPack)
	bad := writePack(t, "bad.txt", "#####\n#-$.#\n#####\n")

	out, err := run(t, "validate", good)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "good.txt: 2 levels (Test Pack)") {
		t.Errorf("Unexpected output: %s", out)
	}

	out, err = run(t, "validate", good, bad)
	if !errors.Is(err, errInvalidPacks) {
		t.Errorf("Expected errInvalidPacks, got %v", err)
	}
	if !strings.Contains(out, "1 of 2 packs valid") {
		t.Errorf("Unexpected output: %s", out)
	}

	if _, err := run(t, "validate"); err == nil {
		t.Error("Expected error without files")
	}
}

func TestAnalyzeLevel(t *testing.T) {
	level, err := engine.ParseLevelText("######\n#----#\n#-#@-#\n#-$*-#\n#-.*-#\n#----#\n######")
	if err != nil {
		t.Fatalf("Failed to parse level: %v", err)
	}

	report := analyzeLevel(4, level)
	want := LevelReport{Number: 4, Width: 6, Height: 7, Boxes: 3, Goals: 3, BoxesOnGoals: 2}
	if report != want {
		t.Errorf("Expected %+v, got %+v", want, report)
	}
	if !strings.Contains(report.String(), "Level 4: 6x7, 3 boxes, 3 goals, 2 already placed") {
		t.Errorf("Unexpected report: %s", report)
	}
}

func TestLevelReport_Warnings(t *testing.T) {
	report := LevelReport{Number: 1, Boxes: 2, Goals: 1}
	if !strings.Contains(report.String(), "counts differ") {
		t.Errorf("Expected count warning, got %s", report)
	}

	report = LevelReport{Number: 1, Boxes: 1, Goals: 1, BoxesOnGoals: 1, Solved: true}
	if !strings.Contains(report.String(), "solved as given") {
		t.Errorf("Expected solved note, got %s", report)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	path := writePack(t, "pack.txt", testPack)

	out, err := run(t, "analyze", path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"=== Analyzing pack.txt ===", "Title: Test Pack", "Levels: 2", "Level 2: 6x3"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output: %s", want, out)
		}
	}
}

func TestSolveLevel(t *testing.T) {
	pack, err := engine.NewCollection(testPack)
	if err != nil {
		t.Fatalf("Failed to parse pack: %v", err)
	}

	solution, err := solveLevel(context.Background(), pack, 2, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := engine.FormatMoves(solution); got != "rr" {
		t.Errorf("Expected rr, got %s", got)
	}

	if _, err := solveLevel(context.Background(), pack, 3, 0); !errors.Is(err, engine.ErrLevelOutOfRange) {
		t.Errorf("Expected ErrLevelOutOfRange, got %v", err)
	}
}

func TestSolveCommand(t *testing.T) {
	path := writePack(t, "pack.txt", testPack)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "first level by default", args: []string{"solve", path}, want: "Level 1: 1 moves\nr\n"},
		{name: "explicit level", args: []string{"solve", path, "2"}, want: "Level 2: 2 moves\nrr\n"},
		{name: "state limit", args: []string{"solve", "--max-states", "1", path, "2"}, wantErr: true},
		{name: "bad level number", args: []string{"solve", path, "two"}, wantErr: true},
		{name: "missing file", args: []string{"solve"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got output %s", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if out != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, out)
			}
		})
	}
}

func TestWriteSolution_AlreadySolved(t *testing.T) {
	var out bytes.Buffer
	writeSolution(&out, 3, []engine.Direction{})
	if out.String() != "Level 3 is already solved\n" {
		t.Errorf("Unexpected output: %q", out.String())
	}
}
