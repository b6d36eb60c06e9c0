package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/telemetry"
)

// Bulk move stop codes
const (
	StopBlocked          = "blocked"
	StopInvalidDirection = "invalid_direction"
	StopSolved           = "solved"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions     SessionManager
	packs        PackManager
	tracer       trace.Tracer
	solverStates int
	mu           sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, packs PackManager) GameService {
	return &gameServiceImpl{
		sessions:     sessions,
		packs:        packs,
		tracer:       telemetry.Tracer("service"),
		solverStates: engine.DefaultSolverStates,
	}
}

// CreateSession creates a new game session on packID, or the default pack
func (s *gameServiceImpl) CreateSession(ctx context.Context, packID string) (*SessionInfo, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateSession",
		trace.WithAttributes(attribute.String("pack.id", packID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var pack *engine.Collection
	var err error
	if packID != "" {
		pack, err = s.packs.LoadPack(packID)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrPackNotFound) {
				if available, listErr := s.packs.ListPacks(); listErr == nil && len(available) > 0 {
					var ids []string
					for _, p := range available {
						ids = append(ids, p.PackID)
					}
					err = fmt.Errorf("%w: '%s'. Available packs: %v", ErrPackNotFound, packID, ids)
				}
			}
			return nil, fail(span, err)
		}
	} else {
		packID, pack = s.packs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", packID, pack)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to create session: %w", err))
	}
	span.SetAttributes(attribute.String("session.id", session.ID))

	return sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	_, span := s.startSpan(ctx, "DeleteSession", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fail(span, err)
	}
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	_, span := s.startSpan(ctx, "Move", sessionID)
	defer span.End()
	span.SetAttributes(attribute.String("move.direction", direction))

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, newEvent(EventReset, "Level reset to initial state", sess.Engine.GetPusherPosition()))
	}

	outcome := sess.Engine.Move(direction)
	events = append(events, outcomeEvents(outcome)...)
	state := sess.Engine.GetState()

	span.SetAttributes(
		attribute.Bool("move.success", outcome.Success),
		attribute.Bool("move.pushed", outcome.Pushed),
		attribute.Bool("level.solved", state.Solved),
	)
	log.Printf("[MOVE] session=%s dir=%s ok=%t push=%t pos=(%d,%d) moves=%d",
		sess.ID, outcome.Direction, outcome.Success, outcome.Pushed, outcome.To.X, outcome.To.Y, state.Moves)

	s.autoSave(sessionID, "move")

	return &MoveResult{
		Success:   outcome.Success,
		GameState: state,
		Message:   outcome.Message,
		Events:    events,
		Step:      outcome,
	}, nil
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	_, span := s.startSpan(ctx, "BulkMove", sessionID)
	defer span.End()
	span.SetAttributes(attribute.Int("move.requested", len(moves)))

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, newEvent(EventReset, "Level reset to initial state", sess.Engine.GetPusherPosition()))
	}

	result.StartPos = sess.Engine.GetPusherPosition()
	startPushes := sess.Engine.Pushes()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	if sess.Engine.IsSolved() && len(moves) > 0 {
		result.StoppedReason = "level already solved"
		result.StopReasonCode = StopSolved
		result.StoppedOnMove = 1
	}

	steps := sess.Engine.BulkMove(moves)
	for i, step := range steps {
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, outcomeEvents(step)...)

		if !step.Success {
			result.Success = false
			result.StoppedOnMove = i + 1
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, step.Message)
			result.StopReasonCode = StopBlocked
			if _, err := engine.ParseDirection(moves[i]); err != nil {
				result.StopReasonCode = StopInvalidDirection
			}
			break
		}

		result.MovesExecuted++
		if step.Solved && i+1 < len(moves) {
			result.StoppedOnMove = i + 1
			result.StoppedReason = fmt.Sprintf("level solved on move %d", i+1)
			result.StopReasonCode = StopSolved
		}
	}

	state := sess.Engine.GetState()
	result.GameState = state
	result.EndPos = state.Pusher
	result.PushesDelta = state.Pushes - startPushes
	result.Solved = state.Solved
	result.Message = state.Message
	result.PossibleMoves = state.PossibleMoves

	span.SetAttributes(
		attribute.Int("move.executed", result.MovesExecuted),
		attribute.String("move.stop_reason", result.StopReasonCode),
		attribute.Bool("level.solved", state.Solved),
	)
	log.Printf("[BULK] session=%s requested=%d executed=%d stop=%s solved=%t",
		sess.ID, result.RequestedMoves, result.MovesExecuted, result.StopReasonCode, state.Solved)

	s.autoSave(sessionID, "bulk moves")

	return result, nil
}

// Reset restarts the current level
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	_, span := s.startSpan(ctx, "Reset", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}

	state := sess.Engine.Reset()
	s.autoSave(sessionID, "reset")
	return state, nil
}

// NextLevel advances the session to the following level of its pack
func (s *gameServiceImpl) NextLevel(ctx context.Context, sessionID string) (*engine.GameState, error) {
	_, span := s.startSpan(ctx, "NextLevel", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}

	if err := sess.Engine.NextLevel(); err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("level.index", sess.Engine.LevelIndex()))

	s.autoSave(sessionID, "level change")
	return sess.Engine.GetState(), nil
}

// SelectLevel jumps to a level by 0-based index
func (s *gameServiceImpl) SelectLevel(ctx context.Context, sessionID string, index int) (*engine.GameState, error) {
	_, span := s.startSpan(ctx, "SelectLevel", sessionID)
	defer span.End()
	span.SetAttributes(attribute.Int("level.index", index))

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}

	if err := sess.Engine.SelectLevel(index); err != nil {
		return nil, fail(span, err)
	}

	s.autoSave(sessionID, "level change")
	return sess.Engine.GetState(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// Hint solves the current position and returns the shortest continuation
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	ctx, span := s.startSpan(ctx, "Hint", sessionID)
	defer span.End()

	s.mu.Lock()
	sess, err := s.getSession(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, fail(span, err)
	}
	level := sess.Engine.Level().Clone()
	s.mu.Unlock()

	// The search runs on a copy, outside the lock
	path, err := engine.Solve(ctx, level, s.solverStates)
	switch {
	case errors.Is(err, engine.ErrNoSolution):
		return &HintResult{Message: "No solution from here. Reset the level to try again."}, nil
	case errors.Is(err, engine.ErrSearchLimit):
		return &HintResult{Message: "Search limit reached; this position is too large to solve quickly."}, nil
	case err != nil:
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.Int("hint.length", len(path)))

	hint := &HintResult{
		Solvable: true,
		Solution: engine.FormatMoves(path),
		Length:   len(path),
	}
	if len(path) == 0 {
		hint.Message = "Level already solved"
		return hint, nil
	}
	hint.Next = path[0].String()
	hint.Message = fmt.Sprintf("Solvable in %d moves; try %s next", len(path), hint.Next)
	return hint, nil
}

// ListPacks returns the available level packs
func (s *gameServiceImpl) ListPacks(ctx context.Context) ([]*PackInfo, error) {
	return s.packs.ListPacks()
}

// LoadPack loads a level pack by id
func (s *gameServiceImpl) LoadPack(ctx context.Context, packID string) (*engine.Collection, error) {
	return s.packs.LoadPack(packID)
}

// SavePack validates and stores a level pack
func (s *gameServiceImpl) SavePack(ctx context.Context, packID, text string) (*PackInfo, error) {
	_, span := s.tracer.Start(ctx, "service.SavePack",
		trace.WithAttributes(attribute.String("pack.id", packID)))
	defer span.End()

	info, err := s.packs.SavePack(packID, text)
	if err != nil {
		return nil, fail(span, err)
	}
	return info, nil
}

// getSession looks up a session and touches its access time. Callers hold
// the write lock on s.mu.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSessionNotFound, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// autoSave persists a session after a mutation; failures are logged only
func (s *gameServiceImpl) autoSave(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", sessionID, after, err)
	}
}

func (s *gameServiceImpl) startSpan(ctx context.Context, op, sessionID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "service."+op,
		trace.WithAttributes(attribute.String("session.id", sessionID)))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func sessionInfo(sess *Session) *SessionInfo {
	name := sess.Engine.Pack().Title
	if name == "" {
		name = sess.PackID
	}
	return &SessionInfo{
		ID:             sess.ID,
		PackID:         sess.PackID,
		PackName:       name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
	}
}

func newEvent(kind, message string, pos engine.Position) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		Timestamp: time.Now(),
		Position:  pos,
	}
}

// outcomeEvents turns one move outcome into the events it produced
func outcomeEvents(o engine.MoveOutcome) []GameEvent {
	if !o.Success {
		return []GameEvent{newEvent(EventBlocked, o.Message, o.From)}
	}

	kind := EventMove
	message := fmt.Sprintf("Moved %s to (%d,%d)", o.Direction, o.To.X, o.To.Y)
	if o.Pushed {
		kind = EventPush
		message = fmt.Sprintf("Pushed box %s from (%d,%d)", o.Direction, o.To.X, o.To.Y)
	}
	events := []GameEvent{newEvent(kind, message, o.To)}

	if o.Solved {
		events = append(events, newEvent(EventSolved, o.Message, o.To))
	}
	return events
}
