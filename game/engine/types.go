package engine

import (
	"fmt"
	"strings"
)

// TileKind is the static terrain of a grid cell
type TileKind int

const (
	Outside TileKind = iota
	Floor
	Goal
)

// String returns the lowercase name of the kind
func (k TileKind) String() string {
	switch k {
	case Outside:
		return "outside"
	case Floor:
		return "floor"
	case Goal:
		return "goal"
	default:
		return "unknown"
	}
}

// Occupant is what currently sits on a grid cell
type Occupant int

const (
	None Occupant = iota
	Box
	Pusher
	Wall
)

// String returns the lowercase name of the occupant
func (o Occupant) String() string {
	switch o {
	case None:
		return "none"
	case Box:
		return "box"
	case Pusher:
		return "pusher"
	case Wall:
		return "wall"
	default:
		return "unknown"
	}
}

const (
	// MaxBulkMoves caps a single bulk move request
	MaxBulkMoves = 200

	// DefaultSolverStates bounds the solver search when the caller has no opinion
	DefaultSolverStates = 200000
)

// Tile is a single grid cell: terrain plus occupant.
// A Wall occupant always sits on Floor terrain.
type Tile struct {
	Kind     TileKind `json:"kind"`
	Occupant Occupant `json:"occupant"`
}

// Walkable reports whether the tile is playable terrain that is not a wall
func (t Tile) Walkable() bool {
	return t.Kind != Outside && t.Occupant != Wall
}

// Symbol returns the canonical level-file character for the tile
func (t Tile) Symbol() byte {
	switch t.Occupant {
	case Wall:
		return '#'
	case Pusher:
		if t.Kind == Goal {
			return '+'
		}
		return '@'
	case Box:
		if t.Kind == Goal {
			return '*'
		}
		return '$'
	}
	if t.Kind == Goal {
		return '.'
	}
	return '-'
}

// Position represents x,y coordinates; y is the row, x the column
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the adjacent position one tile in direction d
func (p Position) Step(d Direction) Position {
	switch d {
	case Up:
		return Position{X: p.X, Y: p.Y - 1}
	case Right:
		return Position{X: p.X + 1, Y: p.Y}
	case Down:
		return Position{X: p.X, Y: p.Y + 1}
	case Left:
		return Position{X: p.X - 1, Y: p.Y}
	}
	return p
}

// Direction is one of the four move directions
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions lists every direction in clockwise order starting at Up
var Directions = []Direction{Up, Right, Down, Left}

// String returns the lowercase direction name
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Letter returns the LURD notation letter for the direction
func (d Direction) Letter() byte {
	switch d {
	case Up:
		return 'u'
	case Right:
		return 'r'
	case Down:
		return 'd'
	default:
		return 'l'
	}
}

// ParseDirection accepts up/right/down/left or the LURD letters, case-insensitive
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "right", "r":
		return Right, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// ParseMoves splits a LURD string such as "rrdl" into directions
func ParseMoves(lurd string) ([]Direction, error) {
	dirs := make([]Direction, 0, len(lurd))
	for _, r := range lurd {
		d, err := ParseDirection(string(r))
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

// FormatMoves renders directions in LURD notation
func FormatMoves(dirs []Direction) string {
	b := make([]byte, len(dirs))
	for i, d := range dirs {
		b[i] = d.Letter()
	}
	return string(b)
}

// GameState is a JSON snapshot of a play session
type GameState struct {
	Rows       []string   `json:"rows"`
	Walls      []Position `json:"walls"`
	Floors     []Position `json:"floors"`
	Goals      []Position `json:"goals"`
	Boxes      []Position `json:"boxes"`
	Pusher     Position   `json:"pusher"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	LevelIndex int        `json:"level_index"`
	LevelCount int        `json:"level_count"`
	Moves      int        `json:"moves"`
	Pushes     int        `json:"pushes"`
	Solved     bool       `json:"solved"`
	Message    string     `json:"message"`

	// PossibleMoves is a decision aid and not required by the rules
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// MoveOutcome describes the result of a single move request
type MoveOutcome struct {
	Direction string   `json:"direction"`
	Success   bool     `json:"success"`
	Pushed    bool     `json:"pushed"`
	From      Position `json:"from"`
	To        Position `json:"to"`
	Solved    bool     `json:"solved"`
	Message   string   `json:"message"`
}
