package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

const (
	maxIDAttempts   = 16
	maxSessionIDLen = 64
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager keeps live sessions in memory and mirrors them to an optional
// store. Session IDs are case-insensitive: every ID is stored in its
// lowercase form, and that form is the key in memory and in the store.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*service.Session
	persistence SessionPersistence

	now   func() time.Time
	newID func() string
}

// NewManager creates a session manager that keeps sessions in memory only
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		now:      time.Now,
		newID:    randomSessionID,
	}
}

// NewManagerWithPersistence creates a session manager backed by persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	m := NewManager()
	m.persistence = persistence
	return m
}

// sessionKey is the canonical form of a session ID
func sessionKey(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// validSessionID accepts IDs that are safe as file names and table keys
func validSessionID(key string) bool {
	if key == "" || len(key) > maxSessionIDLen {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// randomSessionID returns 4 hex characters
func randomSessionID() string {
	b := make([]byte, 2)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Create starts a session playing pack. An empty id asks for a generated one.
func (m *Manager) Create(id, packID string, pack *engine.Collection) (*service.Session, error) {
	eng, err := engine.NewEngine(pack)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(id)
	if key == "" {
		if key, err = m.freeKey(); err != nil {
			return nil, err
		}
	} else if !validSessionID(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	} else if m.taken(key) {
		return nil, ErrSessionAlreadyExists
	}

	now := m.now()
	session := &service.Session{
		ID:             key,
		PackID:         packID,
		Engine:         eng,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key] = session
	m.persist(session, "create")

	return session, nil
}

// freeKey draws generated IDs until one is unused. Callers hold m.mu.
func (m *Manager) freeKey() (string, error) {
	for range maxIDAttempts {
		if key := m.newID(); !m.taken(key) {
			return key, nil
		}
	}
	return "", fmt.Errorf("no free session ID after %d attempts", maxIDAttempts)
}

// taken reports whether key names a live or stored session. Callers hold m.mu.
func (m *Manager) taken(key string) bool {
	if _, ok := m.sessions[key]; ok {
		return true
	}
	return m.persistence != nil && m.persistence.Exists(key)
}

// Get returns a live session, loading it from the store on first use
func (m *Manager) Get(id string) (*service.Session, error) {
	key := sessionKey(id)

	m.mu.RLock()
	session, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok {
		return session, nil
	}

	if m.persistence == nil || !validSessionID(key) || !m.persistence.Exists(key) {
		return nil, ErrSessionNotFound
	}
	loaded, err := m.persistence.Load(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded or created it meanwhile
	if session, ok := m.sessions[key]; ok {
		return session, nil
	}
	m.sessions[key] = loaded
	return loaded, nil
}

// GetOrCreate returns the session named id, creating it when unknown
func (m *Manager) GetOrCreate(id, packID string, pack *engine.Collection) (*service.Session, error) {
	session, err := m.Get(id)
	if !errors.Is(err, ErrSessionNotFound) {
		return session, err
	}

	session, err = m.Create(id, packID, pack)
	if errors.Is(err, ErrSessionAlreadyExists) {
		// Lost a race with another creator
		return m.Get(id)
	}
	return session, err
}

// List returns the live sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Delete removes a session from memory and from the store
func (m *Manager) Delete(id string) error {
	key := sessionKey(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, live := m.sessions[key]
	delete(m.sessions, key)

	if m.persistence == nil || !m.persistence.Exists(key) {
		if !live {
			return ErrSessionNotFound
		}
		return nil
	}
	if err := m.persistence.Delete(key); err != nil {
		return fmt.Errorf("failed to delete persisted session: %w", err)
	}
	return nil
}

// DeleteFromMemory drops a live session and leaves the store alone
func (m *Manager) DeleteFromMemory(id string) error {
	key := sessionKey(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed touches a live session's access time. The new time
// reaches the store with the session's next save.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionKey(id)]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = m.now()
	return nil
}

// Save writes a live session to the store
func (m *Manager) Save(id string) error {
	m.mu.RLock()
	session, ok := m.sessions[sessionKey(id)]
	m.mu.RUnlock()

	if !ok {
		return ErrSessionNotFound
	}
	if m.persistence == nil {
		return nil
	}
	return m.persistence.Save(session)
}

// CleanupExpiredSessions removes sessions idle for longer than maxAge, from
// memory and from the store, and reports how many went.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	var expired []string
	for key, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, key)
			expired = append(expired, key)
		}
	}
	m.mu.Unlock()

	if m.persistence != nil {
		for _, key := range expired {
			if err := m.persistence.Delete(key); err != nil {
				log.Printf("Warning: Failed to delete expired session %s: %v", key, err)
			}
		}
	}
	return len(expired)
}

// LoadPersistedSessions brings every stored session into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loaded := 0
	for _, id := range ids {
		key := sessionKey(id)

		m.mu.RLock()
		_, live := m.sessions[key]
		m.mu.RUnlock()
		if live {
			continue
		}

		session, err := m.persistence.Load(key)
		if err != nil {
			log.Printf("Warning: Failed to load persisted session %s: %v", key, err)
			continue
		}

		m.mu.Lock()
		if _, live := m.sessions[key]; !live {
			m.sessions[key] = session
			loaded++
		}
		m.mu.Unlock()
	}

	if loaded > 0 {
		log.Printf("Loaded %d persisted sessions from storage", loaded)
	}
	return nil
}

// SaveAllSessions writes every live session to the store
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	failed := 0
	for _, session := range m.List() {
		if err := m.persistence.Save(session); err != nil {
			log.Printf("Warning: Failed to save session %s: %v", session.ID, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}

// persist saves session when a store is configured. Failures are logged
// and leave the live session in place.
func (m *Manager) persist(session *service.Session, after string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(session); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", session.ID, after, err)
	}
}
