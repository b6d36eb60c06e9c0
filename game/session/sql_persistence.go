package session

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite"

	"github.com/wricardo/mcp-training/sokoban/game/service"
)

// Supported SQL dialects
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// SQLPersistence implements SessionPersistence on database/sql.
// Queries are written with ? placeholders and rebound for postgres.
type SQLPersistence struct {
	db      *sql.DB
	dialect string
	packs   service.PackManager
}

// NewSQLPersistence opens a session store. dsn is a file path for sqlite and
// a connection string for postgres.
func NewSQLPersistence(dialect, dsn string, packs service.PackManager) (*SQLPersistence, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("unsupported session store dialect: %s", dialect)
	}

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == DialectSQLite {
		// Enable WAL mode for better concurrency
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	} else if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLPersistence{db: db, dialect: dialect, packs: packs}
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection
func (s *SQLPersistence) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLPersistence) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			pack_id TEXT NOT NULL,
			level_index INTEGER NOT NULL,
			board TEXT NOT NULL,
			moves INTEGER NOT NULL DEFAULT 0,
			pushes INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			last_accessed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_accessed ON sessions(last_accessed_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Save upserts a session row
func (s *SQLPersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	data := newPersistedData(session)

	query := `INSERT INTO sessions (
		id, pack_id, level_index, board, moves, pushes, created_at, last_accessed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		pack_id = excluded.pack_id,
		level_index = excluded.level_index,
		board = excluded.board,
		moves = excluded.moves,
		pushes = excluded.pushes,
		last_accessed_at = excluded.last_accessed_at`

	_, err := s.db.Exec(s.rebind(query),
		sessionKey(data.ID), data.PackID, data.LevelIndex,
		strings.Join(data.Rows, "\n"), data.Moves, data.Pushes,
		formatTime(data.CreatedAt), formatTime(data.LastAccessedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads a session row and rebuilds its engine
func (s *SQLPersistence) Load(id string) (*service.Session, error) {
	query := `SELECT id, pack_id, level_index, board, moves, pushes, created_at, last_accessed_at
		FROM sessions WHERE id = ?`

	var data PersistedSessionData
	var board, createdAt, accessedAt string
	err := s.db.QueryRow(s.rebind(query), sessionKey(id)).Scan(
		&data.ID, &data.PackID, &data.LevelIndex, &board,
		&data.Moves, &data.Pushes, &createdAt, &accessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if board != "" {
		data.Rows = strings.Split(board, "\n")
	}
	if data.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at for session %s: %w", id, err)
	}
	if data.LastAccessedAt, err = parseTime(accessedAt); err != nil {
		return nil, fmt.Errorf("bad last_accessed_at for session %s: %w", id, err)
	}

	return data.restore(s.packs)
}

// Delete removes a session row
func (s *SQLPersistence) Delete(id string) error {
	res, err := s.db.Exec(s.rebind(`DELETE FROM sessions WHERE id = ?`), sessionKey(id))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (s *SQLPersistence) ListAll() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (s *SQLPersistence) Exists(id string) bool {
	var one int
	err := s.db.QueryRow(s.rebind(`SELECT 1 FROM sessions WHERE id = ?`), sessionKey(id)).Scan(&one)
	return err == nil
}

// rebind rewrites ? placeholders to $N for postgres
func (s *SQLPersistence) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
