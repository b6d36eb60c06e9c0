package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestIsPuzzleLine(t *testing.T) {
	tests := []struct {
		line     string
		expected bool
	}{
		{"#####", true},
		{"#@$.#", true},
		{"--#-#", true},
		{"", false},
		{"Level 1", false},
		{"; only one # here", false},
		{"; two ## here", true},
	}

	for _, tt := range tests {
		if got := IsPuzzleLine(tt.line); got != tt.expected {
			t.Errorf("IsPuzzleLine(%q) = %v, expected %v", tt.line, got, tt.expected)
		}
	}
}

func TestParseRow_SymbolTable(t *testing.T) {
	tests := []struct {
		symbol   string
		kind     TileKind
		occupant Occupant
	}{
		{"#", Floor, Wall},
		{"p", Floor, Pusher},
		{"@", Floor, Pusher},
		{"P", Goal, Pusher},
		{"+", Goal, Pusher},
		{"b", Floor, Box},
		{"$", Floor, Box},
		{"B", Goal, Box},
		{"*", Goal, Box},
		{".", Goal, None},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			// Prefix a wall so the row is inside
			row := ParseRow("#" + tt.symbol)
			if len(row) != 2 {
				t.Fatalf("Expected 2 tiles, got %d", len(row))
			}
			if row[1].Kind != tt.kind || row[1].Occupant != tt.occupant {
				t.Errorf("Symbol %q parsed as %s/%s, expected %s/%s",
					tt.symbol, row[1].Kind, row[1].Occupant, tt.kind, tt.occupant)
			}
		})
	}
}

func TestParseRow_InsideFlag(t *testing.T) {
	row := ParseRow("-_#-_#-")
	expected := []TileKind{Outside, Outside, Floor, Floor, Floor, Floor, Floor}

	if len(row) != len(expected) {
		t.Fatalf("Expected %d tiles, got %d", len(expected), len(row))
	}
	for i, kind := range expected {
		if row[i].Kind != kind {
			t.Errorf("Tile %d: expected kind %s, got %s", i, kind, row[i].Kind)
		}
	}
	if row[6].Occupant != None {
		t.Errorf("Trailing '-' after a wall should be empty floor, got %s", row[6].Occupant)
	}
}

func TestParseRow_DropsUnknownCharacters(t *testing.T) {
	row := ParseRow("# @x$ .#\t")
	if len(row) != 5 {
		t.Fatalf("Expected unknown characters to be dropped, got %d tiles", len(row))
	}
	if row[1].Occupant != Pusher || row[2].Occupant != Box || row[3].Kind != Goal {
		t.Errorf("Unexpected row layout: %+v", row)
	}
}

func TestParseLevel_Width(t *testing.T) {
	level, err := ParseLevel([]string{
		"####",
		"#@$.###",
		"#######",
	})
	if err != nil {
		t.Fatalf("Failed to parse level: %v", err)
	}
	if level.Width() != 7 {
		t.Errorf("Expected width 7, got %d", level.Width())
	}
	if level.Height() != 3 {
		t.Errorf("Expected height 3, got %d", level.Height())
	}
}

func TestParseLevel_BoxCountMatchesSymbols(t *testing.T) {
	lines := []string{
		"--#######",
		"--#-b-B-#",
		"###-$*--#",
		"#@------#",
		"##.-.-.##",
		"-#######-",
	}
	level, err := ParseLevel(lines)
	if err != nil {
		t.Fatalf("Failed to parse level: %v", err)
	}

	symbols := 0
	for _, line := range lines {
		symbols += strings.Count(line, "$") + strings.Count(line, "b") +
			strings.Count(line, "B") + strings.Count(line, "*")
	}
	if got := len(level.Boxes()); got != symbols {
		t.Errorf("Expected %d boxes, got %d", symbols, got)
	}
}

func TestParseLevel_Validation(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected error
	}{
		{"empty", nil, ErrEmptyLevel},
		{"no pusher", []string{"#$.#"}, ErrNoPusher},
		{"two pushers", []string{"#@-@#"}, ErrMultiplePushers},
		{"pusher and pusher on goal", []string{"#@-+#"}, ErrMultiplePushers},
		{"interior opens onto padding", []string{
			"####",
			"#@-#",
			"#--#",
			"--##",
		}, ErrUnbounded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLevel(tt.lines)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("Expected ErrInvalidLevel, got %v", err)
			}
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestParseLevel_PaddingBehindWallsIsValid(t *testing.T) {
	_, err := ParseLevel([]string{
		"--####",
		"--#@-#",
		"###$-#",
		"#.---#",
		"######",
	})
	if err != nil {
		t.Errorf("Padding outside closed walls should be valid, got %v", err)
	}
}

func TestParseLevelText_RoundTrip(t *testing.T) {
	text := "--#####\n###-.-#\n#-$*@-#\n#-----#\n#######"
	level, err := ParseLevelText(text)
	if err != nil {
		t.Fatalf("Failed to parse level: %v", err)
	}
	if level.String() != text {
		t.Errorf("Round trip mismatch:\n%s\n---\n%s", text, level.String())
	}

	again, err := ParseLevelText(level.String())
	if err != nil {
		t.Fatalf("Failed to reparse level: %v", err)
	}
	if again.String() != level.String() {
		t.Error("Rendering should be stable across reparse")
	}
}
