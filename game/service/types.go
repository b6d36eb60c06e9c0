package service

import (
	"time"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	PackID         string            `json:"pack_id"`
	PackName       string            `json:"pack_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool               `json:"success"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
	Step      engine.MoveOutcome `json:"step"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked|invalid_direction|solved
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos    engine.Position `json:"start_pos"`
	EndPos      engine.Position `json:"end_pos"`
	PushesDelta int             `json:"pushes_delta"`

	// Per-step trace (only for this call)
	Steps []engine.MoveOutcome `json:"steps,omitempty"`

	Solved        bool     `json:"solved"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// Event types
const (
	EventMove    = "move"
	EventPush    = "push"
	EventBlocked = "blocked"
	EventSolved  = "solved"
	EventReset   = "reset"
	EventLevel   = "level"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position"`
}

// HintResult is a solver answer for the current level position
type HintResult struct {
	Solvable bool   `json:"solvable"`
	Next     string `json:"next,omitempty"`     // first direction to play
	Solution string `json:"solution,omitempty"` // full LURD sequence
	Length   int    `json:"length"`
	Message  string `json:"message"`
}

// PackInfo provides information about a level pack
type PackInfo struct {
	Filename string `json:"filename"`
	PackID   string `json:"pack_id"` // The identifier to use for session creation
	Name     string `json:"name"`    // Display name, the pack title when present
	Levels   int    `json:"levels"`
	Boxes    int    `json:"boxes"`
}
