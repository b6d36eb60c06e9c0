package engine

import (
	"errors"
	"fmt"
)

const (
	msgWelcome = "Level %d of %d. Push every box onto a goal."
	msgMoved   = "Moved %s"
	msgPushed  = "Pushed box %s"
	msgBlocked = "Can't move %s: %s at (%d,%d)"
	msgSolved  = "Level %d solved in %d moves and %d pushes!"
	msgReset   = "Level %d restarted"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	IsSolved() bool
	GetPusherPosition() Position

	// Movement operations
	Move(direction string) MoveOutcome
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Level selection
	LevelIndex() int
	LevelCount() int
	NextLevel() error
	SelectLevel(index int) error
}

// GameEngine plays through one collection, one level at a time
type GameEngine struct {
	pack    *Collection
	index   int
	level   *Level
	moves   int
	pushes  int
	message string
}

// NewEngine creates a game engine positioned on the first level of pack
func NewEngine(pack *Collection) (*GameEngine, error) {
	if pack == nil || pack.Len() == 0 {
		return nil, ErrEmptyCollection
	}

	e := &GameEngine{pack: pack}
	if err := e.SelectLevel(0); err != nil {
		return nil, err
	}
	return e, nil
}

// Pack returns the collection the engine plays
func (e *GameEngine) Pack() *Collection {
	return e.pack
}

// Level returns the live level. Callers must not mutate it.
func (e *GameEngine) Level() *Level {
	return e.level
}

// GetState returns a fresh snapshot of the current level
func (e *GameEngine) GetState() *GameState {
	return &GameState{
		Rows:          e.level.Rows(),
		Walls:         e.level.Walls(),
		Floors:        e.level.Floors(),
		Goals:         e.level.Goals(),
		Boxes:         e.level.Boxes(),
		Pusher:        e.level.Pusher(),
		Width:         e.level.Width(),
		Height:        e.level.Height(),
		LevelIndex:    e.index,
		LevelCount:    e.pack.Len(),
		Moves:         e.moves,
		Pushes:        e.pushes,
		Solved:        e.level.IsSolved(),
		Message:       e.message,
		PossibleMoves: e.GetPossibleMoves(),
	}
}

// Restore rebuilds a persisted session. Terrain and walls come from the pack;
// rows only place the pusher and the boxes.
func (e *GameEngine) Restore(index int, rows []string, moves, pushes int) error {
	if err := e.SelectLevel(index); err != nil {
		return err
	}
	if len(rows) > 0 {
		level, err := e.level.placePieces(rows)
		if err != nil {
			return fmt.Errorf("failed to restore level %d: %w", index, err)
		}
		e.level = level
	}
	e.moves = moves
	e.pushes = pushes
	return nil
}

// Reset restarts the current level from the pristine pack
func (e *GameEngine) Reset() *GameState {
	e.level, _ = e.pack.Level(e.index)
	e.moves = 0
	e.pushes = 0
	e.message = fmt.Sprintf(msgReset, e.index+1)
	return e.GetState()
}

// IsSolved returns whether every goal on the current level holds a box
func (e *GameEngine) IsSolved() bool {
	return e.level.IsSolved()
}

// GetPusherPosition returns the current pusher position
func (e *GameEngine) GetPusherPosition() Position {
	return e.level.Pusher()
}

// Moves returns the number of successful moves on the current level
func (e *GameEngine) Moves() int {
	return e.moves
}

// Pushes returns the number of box pushes on the current level
func (e *GameEngine) Pushes() int {
	return e.pushes
}

// Move attempts to move the pusher in the specified direction
func (e *GameEngine) Move(direction string) MoveOutcome {
	from := e.level.Pusher()
	outcome := MoveOutcome{Direction: direction, From: from, To: from}

	d, err := ParseDirection(direction)
	if err != nil {
		outcome.Message = err.Error()
		e.message = outcome.Message
		return outcome
	}
	outcome.Direction = d.String()

	pushed := e.level.WouldPush(d)
	to, ok := e.level.MovePusher(d)
	if !ok {
		outcome.Message = e.blockedMessage(from, d)
		e.message = outcome.Message
		return outcome
	}

	e.moves++
	outcome.Success = true
	outcome.To = to
	outcome.Pushed = pushed
	outcome.Message = fmt.Sprintf(msgMoved, d)
	if pushed {
		e.pushes++
		outcome.Message = fmt.Sprintf(msgPushed, d)
	}

	if e.level.IsSolved() {
		outcome.Solved = true
		outcome.Message = fmt.Sprintf(msgSolved, e.index+1, e.moves, e.pushes)
	}
	e.message = outcome.Message
	return outcome
}

// BulkMove executes moves in order, stopping at the first blocked move or
// once the level is solved
func (e *GameEngine) BulkMove(moves []string) []MoveOutcome {
	if len(moves) > MaxBulkMoves {
		moves = moves[:MaxBulkMoves]
	}

	results := make([]MoveOutcome, 0, len(moves))
	for _, direction := range moves {
		if e.IsSolved() {
			break
		}
		outcome := e.Move(direction)
		results = append(results, outcome)
		if !outcome.Success {
			break
		}
	}
	return results
}

// CanMove checks if the pusher can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	d, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	return e.level.CanMove(d)
}

// GetPossibleMoves returns all directions the pusher can currently take
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, d := range Directions {
		if e.level.CanMove(d) {
			possible = append(possible, d.String())
		}
	}
	return possible
}

// LevelIndex returns the 0-based index of the current level
func (e *GameEngine) LevelIndex() int {
	return e.index
}

// LevelCount returns the number of levels in the pack
func (e *GameEngine) LevelCount() int {
	return e.pack.Len()
}

// NextLevel advances to the following level
func (e *GameEngine) NextLevel() error {
	if e.index+1 >= e.pack.Len() {
		return ErrLastLevel
	}
	return e.SelectLevel(e.index + 1)
}

// SelectLevel jumps to level index and resets counters
func (e *GameEngine) SelectLevel(index int) error {
	level, err := e.pack.Level(index)
	if err != nil {
		return err
	}
	e.index = index
	e.level = level
	e.moves = 0
	e.pushes = 0
	e.message = fmt.Sprintf(msgWelcome, index+1, e.pack.Len())
	return nil
}

func (e *GameEngine) blockedMessage(from Position, d Direction) string {
	dest := from.Step(d)
	what := "boundary"
	if tile, ok := e.level.Tile(dest); ok {
		switch {
		case tile.Kind == Outside:
			what = "outside"
		case tile.Occupant == Box:
			if behind, ok := e.level.Tile(dest.Step(d)); ok && behind.Occupant == Box {
				what = "box behind box"
			} else {
				what = "box against wall"
			}
		default:
			what = tile.Occupant.String()
		}
	}
	return fmt.Sprintf(msgBlocked, d, what, dest.X, dest.Y)
}

// IsInvalidLevel reports whether err came from level validation
func IsInvalidLevel(err error) bool {
	return errors.Is(err, ErrInvalidLevel)
}
