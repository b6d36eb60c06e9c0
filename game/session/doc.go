// Package session provides session management for the Sokoban server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Concurrent access control
//   - Session cleanup and expiration
//   - Persistence to JSON files or a SQL database (sqlite, postgres)
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Session represents an individual game session with its own engine instance
// and metadata like creation time and last access time.
//
// SessionPersistence stores the pack id, level index, live board rows and
// counters. FilePersistence writes one JSON file per session; SQLPersistence
// keeps one row per session and rebuilds the engine from its pack on load.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters drawn from crypto/rand and checked
// against both live and stored sessions. IDs are case-insensitive: the
// manager and every store key sessions by the lowercase ID.
//
// Concurrency:
//
// The session manager is thread-safe and supports concurrent operations.
// Multiple goroutines can safely create, retrieve, and modify different
// sessions simultaneously. Internal locking ensures data consistency.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new session
//	sess, err := manager.Create("", "microban", pack)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// List all active sessions
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions can be explicitly deleted or may expire based on inactivity.
// Expired sessions are removed from the store as well, so they are not
// loaded again on the next lookup.
package session
