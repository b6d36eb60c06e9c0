package session

import (
	"testing"
	"time"

	"github.com/wricardo/mcp-training/sokoban/game/config"
)

func TestManagerWithPersistence(t *testing.T) {
	packs, err := config.NewManager("")
	if err != nil {
		t.Fatalf("Failed to create pack manager: %v", err)
	}
	packID, pack := packs.GetDefault()

	backends := []struct {
		name string
		open func(t *testing.T) SessionPersistence
	}{
		{name: "file", open: func(t *testing.T) SessionPersistence {
			fp, err := NewFilePersistence(t.TempDir(), packs)
			if err != nil {
				t.Fatalf("Failed to create file persistence: %v", err)
			}
			return fp
		}},
		{name: "sqlite", open: func(t *testing.T) SessionPersistence {
			return newSQLitePersistence(t, packs)
		}},
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			t.Run("restart resumes the board", func(t *testing.T) {
				store := backend.open(t)
				manager := NewManagerWithPersistence(store)

				session, err := manager.Create("Resume", packID, pack)
				if err != nil {
					t.Fatalf("Failed to create session: %v", err)
				}
				if !store.Exists("resume") {
					t.Fatal("Expected the session to be saved on create")
				}

				if !session.Engine.Move("right").Success {
					t.Fatal("Expected move to succeed")
				}
				if err := manager.Save(session.ID); err != nil {
					t.Fatalf("Failed to save session: %v", err)
				}

				restarted := NewManagerWithPersistence(store)
				loaded, err := restarted.Get("RESUME")
				if err != nil {
					t.Fatalf("Failed to load session after restart: %v", err)
				}
				if loaded.ID != "resume" {
					t.Errorf("Expected id resume, got %s", loaded.ID)
				}
				if loaded.Engine.Moves() != 1 || !loaded.Engine.IsSolved() {
					t.Error("Expected move counter and solved board to survive the restart")
				}
				if again, _ := restarted.Get("resume"); again != loaded {
					t.Error("Expected the loaded session to stay cached")
				}
			})

			t.Run("create refuses an id held only by the store", func(t *testing.T) {
				store := backend.open(t)
				if _, err := NewManagerWithPersistence(store).Create("held", packID, pack); err != nil {
					t.Fatal(err)
				}

				if _, err := NewManagerWithPersistence(store).Create("HELD", packID, pack); err != ErrSessionAlreadyExists {
					t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
				}
			})

			t.Run("delete removes the stored copy", func(t *testing.T) {
				store := backend.open(t)
				manager := NewManagerWithPersistence(store)
				if _, err := manager.Create("gone", packID, pack); err != nil {
					t.Fatal(err)
				}

				if err := manager.Delete("GONE"); err != nil {
					t.Fatalf("Failed to delete session: %v", err)
				}
				if store.Exists("gone") {
					t.Error("Expected the stored copy to be removed")
				}
				if _, err := NewManagerWithPersistence(store).Get("gone"); err != ErrSessionNotFound {
					t.Errorf("Expected ErrSessionNotFound after restart, got %v", err)
				}
			})

			t.Run("expired sessions do not come back", func(t *testing.T) {
				store := backend.open(t)
				manager := NewManagerWithPersistence(store)
				clock := time.Now()
				manager.now = func() time.Time { return clock }

				if _, err := manager.Create("stale", packID, pack); err != nil {
					t.Fatal(err)
				}
				clock = clock.Add(48 * time.Hour)

				if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed != 1 {
					t.Fatalf("Expected 1 session removed, got %d", removed)
				}
				if _, err := manager.Get("stale"); err != ErrSessionNotFound {
					t.Errorf("Expected ErrSessionNotFound, got %v", err)
				}
			})

			t.Run("startup loads every stored session", func(t *testing.T) {
				store := backend.open(t)
				first := NewManagerWithPersistence(store)
				ids := []string{"startup1", "startup2", "startup3"}
				for _, id := range ids {
					if _, err := first.Create(id, packID, pack); err != nil {
						t.Fatalf("Failed to create session %s: %v", id, err)
					}
				}

				restarted := NewManagerWithPersistence(store)
				if err := restarted.LoadPersistedSessions(); err != nil {
					t.Fatalf("Failed to load persisted sessions: %v", err)
				}
				if restarted.Count() != len(ids) {
					t.Errorf("Expected %d sessions, got %d", len(ids), restarted.Count())
				}
				for _, id := range ids {
					if _, err := restarted.Get(id); err != nil {
						t.Errorf("Expected %s to be live: %v", id, err)
					}
				}
			})
		})
	}
}
