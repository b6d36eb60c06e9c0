package session

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session: enough to rebuild the
// engine from its pack plus the live board
type PersistedSessionData struct {
	ID             string    `json:"id"`
	PackID         string    `json:"pack_id"`
	LevelIndex     int       `json:"level_index"`
	Rows           []string  `json:"rows"`
	Moves          int       `json:"moves"`
	Pushes         int       `json:"pushes"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

func newPersistedData(session *service.Session) PersistedSessionData {
	eng := session.Engine
	return PersistedSessionData{
		ID:             session.ID,
		PackID:         session.PackID,
		LevelIndex:     eng.LevelIndex(),
		Rows:           eng.Level().Rows(),
		Moves:          eng.Moves(),
		Pushes:         eng.Pushes(),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
	}
}

// restore rebuilds a live session, loading the pack through packs
func (d PersistedSessionData) restore(packs service.PackManager) (*service.Session, error) {
	pack, err := packs.LoadPack(d.PackID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pack '%s': %w", d.PackID, err)
	}

	gameEngine, err := engine.NewEngine(pack)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	if err := gameEngine.Restore(d.LevelIndex, d.Rows, d.Moves, d.Pushes); err != nil {
		return nil, fmt.Errorf("failed to restore game state: %w", err)
	}

	return &service.Session{
		ID:             d.ID,
		PackID:         d.PackID,
		Engine:         gameEngine,
		CreatedAt:      d.CreatedAt,
		LastAccessedAt: d.LastAccessedAt,
	}, nil
}
