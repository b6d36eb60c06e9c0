package engine

import (
	"fmt"
	"strings"
)

// IsPuzzleLine reports whether a line belongs to a puzzle block.
// Titles, comments and blank separators have fewer than two '#'.
func IsPuzzleLine(line string) bool {
	return strings.Count(line, "#") >= 2
}

// ParseRow classifies each character of a puzzle line into a tile.
// Unrecognized characters are dropped and do not widen the row.
func ParseRow(line string) []Tile {
	row := make([]Tile, 0, len(line))
	inside := false
	for _, char := range line {
		switch char {
		case '#':
			row = append(row, Tile{Kind: Floor, Occupant: Wall})
			inside = true
		case 'p', '@':
			row = append(row, Tile{Kind: Floor, Occupant: Pusher})
		case 'P', '+':
			row = append(row, Tile{Kind: Goal, Occupant: Pusher})
		case 'b', '$':
			row = append(row, Tile{Kind: Floor, Occupant: Box})
		case 'B', '*':
			row = append(row, Tile{Kind: Goal, Occupant: Box})
		case '.':
			row = append(row, Tile{Kind: Goal, Occupant: None})
		case '-', '_':
			if inside {
				row = append(row, Tile{Kind: Floor, Occupant: None})
			} else {
				row = append(row, Tile{Kind: Outside, Occupant: None})
			}
		}
	}
	return row
}

// ParseLevel builds a validated level from one block of puzzle lines
func ParseLevel(lines []string) (*Level, error) {
	level := &Level{}
	for _, line := range lines {
		row := ParseRow(line)
		if len(row) > level.width {
			level.width = len(row)
		}
		level.data = append(level.data, row)
	}

	if err := level.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	return level, nil
}

// ParseLevelText splits text on newlines and parses it as a single block
func ParseLevelText(text string) (*Level, error) {
	return ParseLevel(strings.Split(strings.TrimRight(text, "\n"), "\n"))
}

// validate checks the pusher uniqueness and border invariants the simulator relies on
func (l *Level) validate() error {
	if len(l.data) == 0 {
		return ErrEmptyLevel
	}

	pushers := l.filter(func(t Tile) bool { return t.Occupant == Pusher })
	switch {
	case len(pushers) == 0:
		return ErrNoPusher
	case len(pushers) > 1:
		return fmt.Errorf("%w: found %d", ErrMultiplePushers, len(pushers))
	}

	// Flood fill over everything the pusher or a box could ever occupy.
	// The grid edge blocks like a wall; reaching padding does not.
	start := pushers[0]
	seen := map[Position]bool{start: true}
	queue := []Position{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			next := p.Step(d)
			tile, ok := l.Tile(next)
			if !ok || tile.Occupant == Wall || seen[next] {
				continue
			}
			if tile.Kind == Outside {
				return fmt.Errorf("%w: open at (%d,%d)", ErrUnbounded, next.X, next.Y)
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return nil
}
