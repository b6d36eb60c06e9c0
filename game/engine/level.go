package engine

import (
	"fmt"
	"strings"
)

// Level owns one puzzle grid. Levels built by ParseLevel hold exactly one
// pusher; the only mutation is MovePusher.
type Level struct {
	data  [][]Tile
	width int
}

// Width returns the longest row length
func (l *Level) Width() int {
	return l.width
}

// Height returns the number of rows
func (l *Level) Height() int {
	return len(l.data)
}

// Tile returns the tile at p, or false when p is off the grid
func (l *Level) Tile(p Position) (Tile, bool) {
	if p.Y < 0 || p.Y >= len(l.data) {
		return Tile{}, false
	}
	row := l.data[p.Y]
	if p.X < 0 || p.X >= len(row) {
		return Tile{}, false
	}
	return row[p.X], true
}

// Walls returns every wall position in row-major order
func (l *Level) Walls() []Position {
	return l.filter(func(t Tile) bool { return t.Occupant == Wall })
}

// Floors returns every walkable position, floor and goal terrain alike
func (l *Level) Floors() []Position {
	return l.filter(Tile.Walkable)
}

// Goals returns every goal position
func (l *Level) Goals() []Position {
	return l.filter(func(t Tile) bool { return t.Kind == Goal })
}

// Boxes returns every box position
func (l *Level) Boxes() []Position {
	return l.filter(func(t Tile) bool { return t.Occupant == Box })
}

// Pusher returns the pusher position, or (-1,-1) on a zero Level
func (l *Level) Pusher() Position {
	for y, row := range l.data {
		for x, tile := range row {
			if tile.Occupant == Pusher {
				return Position{X: x, Y: y}
			}
		}
	}
	return Position{X: -1, Y: -1}
}

// IsSolved reports whether every goal holds a box
func (l *Level) IsSolved() bool {
	goals := 0
	for _, row := range l.data {
		for _, tile := range row {
			if tile.Kind != Goal {
				continue
			}
			goals++
			if tile.Occupant != Box {
				return false
			}
		}
	}
	return goals > 0
}

// MovePusher moves the pusher one step, pushing a box if one is in the way.
// It returns the new pusher position, or false when the move is blocked, in
// which case the grid is untouched. Off-grid and padding tiles block.
func (l *Level) MovePusher(d Direction) (Position, bool) {
	pusher := l.Pusher()
	dest := pusher.Step(d)

	switch l.occupantAt(dest) {
	case None:
		l.set(dest, Pusher)
		l.set(pusher, None)
		return dest, true

	case Box:
		boxDest := dest.Step(d)
		if l.occupantAt(boxDest) != None {
			return pusher, false
		}
		l.set(boxDest, Box)
		l.set(dest, Pusher)
		l.set(pusher, None)
		return dest, true
	}

	return pusher, false
}

// CanMove reports whether MovePusher(d) would succeed, without mutating
func (l *Level) CanMove(d Direction) bool {
	dest := l.Pusher().Step(d)
	switch l.occupantAt(dest) {
	case None:
		return true
	case Box:
		return l.occupantAt(dest.Step(d)) == None
	}
	return false
}

// WouldPush reports whether moving in d would push a box
func (l *Level) WouldPush(d Direction) bool {
	return l.CanMove(d) && l.occupantAt(l.Pusher().Step(d)) == Box
}

// Clone returns a deep copy of the level
func (l *Level) Clone() *Level {
	data := make([][]Tile, len(l.data))
	for y, row := range l.data {
		data[y] = append([]Tile(nil), row...)
	}
	return &Level{data: data, width: l.width}
}

// Rows renders each grid row back to level-file symbols
func (l *Level) Rows() []string {
	rows := make([]string, len(l.data))
	for y, row := range l.data {
		b := make([]byte, len(row))
		for x, tile := range row {
			b[x] = tile.Symbol()
		}
		rows[y] = string(b)
	}
	return rows
}

// String renders the level as level-file text. It parses back to an equal
// level unless a piece has left a tile that lies before its row's first wall.
func (l *Level) String() string {
	return strings.Join(l.Rows(), "\n")
}

// placePieces returns a copy of l with the pusher and boxes where rows show
// them. Rows must come from Rows on a level with the same terrain.
func (l *Level) placePieces(rows []string) (*Level, error) {
	var pushers, boxes []Position
	for y, line := range rows {
		for x, tile := range ParseRow(line) {
			switch tile.Occupant {
			case Pusher:
				pushers = append(pushers, Position{X: x, Y: y})
			case Box:
				boxes = append(boxes, Position{X: x, Y: y})
			}
		}
	}
	if len(pushers) != 1 {
		return nil, fmt.Errorf("%w: %d pushers", ErrBoardMismatch, len(pushers))
	}
	if want := len(l.Boxes()); len(boxes) != want {
		return nil, fmt.Errorf("%w: %d boxes, level has %d", ErrBoardMismatch, len(boxes), want)
	}

	placed := l.Clone()
	for y, row := range placed.data {
		for x, tile := range row {
			if tile.Occupant == Box || tile.Occupant == Pusher {
				placed.data[y][x].Occupant = None
			}
		}
	}

	put := func(p Position, o Occupant) error {
		tile, ok := placed.Tile(p)
		if !ok || !tile.Walkable() || tile.Occupant != None {
			return fmt.Errorf("%w: no free floor at (%d,%d)", ErrBoardMismatch, p.X, p.Y)
		}
		placed.set(p, o)
		return nil
	}
	for _, b := range boxes {
		if err := put(b, Box); err != nil {
			return nil, err
		}
	}
	if err := put(pushers[0], Pusher); err != nil {
		return nil, err
	}
	return placed, nil
}

// occupantAt treats off-grid and padding positions as walls
func (l *Level) occupantAt(p Position) Occupant {
	tile, ok := l.Tile(p)
	if !ok || tile.Kind == Outside {
		return Wall
	}
	return tile.Occupant
}

func (l *Level) set(p Position, o Occupant) {
	l.data[p.Y][p.X].Occupant = o
}

func (l *Level) filter(f func(Tile) bool) []Position {
	var positions []Position
	for y, row := range l.data {
		for x, tile := range row {
			if f(tile) {
				positions = append(positions, Position{X: x, Y: y})
			}
		}
	}
	return positions
}
