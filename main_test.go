package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/wricardo/mcp-training/sokoban/game/config"
	"github.com/wricardo/mcp-training/sokoban/game/session"
	"github.com/wricardo/mcp-training/sokoban/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Sokoban Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}

	if *host == "" {
		t.Error("Host should have a default value")
	}

	if *levelsDir == "" {
		t.Error("Levels directory should have a default value")
	}

	if *store == "" {
		t.Error("Store should have a default value")
	}
}

func TestApplyEnvDefaults(t *testing.T) {
	newFlagSet := func() *flag.FlagSet {
		fs := flag.NewFlagSet("sokoban", flag.ContinueOnError)
		fs.String("levels-dir", "levels", "")
		fs.String("store", StoreFile, "")
		fs.String("store-dsn", "", "")
		return fs
	}

	tests := []struct {
		name string
		env  string
		args []string
		want map[string]string
	}{
		{
			name: "no environment keeps defaults",
			want: map[string]string{"levels-dir": "levels", "store": StoreFile, "store-dsn": ""},
		},
		{
			name: "dotenv values fill unset flags",
			env:  "LEVELS_DIR=packs\nSESSION_STORE=sqlite\nSESSION_STORE_DSN=game.db\n",
			want: map[string]string{"levels-dir": "packs", "store": StoreSQLite, "store-dsn": "game.db"},
		},
		{
			name: "command line wins over dotenv",
			env:  "LEVELS_DIR=packs\nSESSION_STORE=sqlite\n",
			args: []string{"-store", "memory"},
			want: map[string]string{"levels-dir": "packs", "store": StoreMemory, "store-dsn": ""},
		},
		{
			name: "explicit default still wins",
			env:  "SESSION_STORE=postgres\n",
			args: []string{"-store", StoreFile},
			want: map[string]string{"levels-dir": "levels", "store": StoreFile, "store-dsn": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envFallbacks {
				t.Setenv(key, "")
				os.Unsetenv(key)
			}
			if tt.env != "" {
				path := filepath.Join(t.TempDir(), ".env")
				if err := os.WriteFile(path, []byte(tt.env), 0644); err != nil {
					t.Fatal(err)
				}
				if err := godotenv.Load(path); err != nil {
					t.Fatalf("Failed to load .env: %v", err)
				}
			}

			fs := newFlagSet()
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Failed to parse flags: %v", err)
			}
			if err := applyEnvDefaults(fs); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			for name, want := range tt.want {
				if got := fs.Lookup(name).Value.String(); got != want {
					t.Errorf("Expected %s=%q, got %q", name, want, got)
				}
			}
		})
	}
}

// withFlags points the package-level flags at a temporary setup for one test.
func withFlags(t *testing.T, dir, kind, dsn string) {
	t.Helper()
	origDir, origStore, origDSN := *levelsDir, *store, *storeDSN
	*levelsDir, *store, *storeDSN = dir, kind, dsn
	t.Cleanup(func() {
		*levelsDir, *store, *storeDSN = origDir, origStore, origDSN
	})
}

func TestInitializeServices(t *testing.T) {
	withFlags(t, "levels", StoreMemory, "")

	svc, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	if svc.game == nil {
		t.Fatal("Expected game service to be initialized")
	}
	if svc.persistence != nil {
		t.Error("Expected no persistence for the memory store")
	}

	info, err := svc.game.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.PackID != config.DefaultPackID {
		t.Errorf("Expected default pack, got %s", info.PackID)
	}
}

func TestInitializeServices_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "sessions.db")
	withFlags(t, "", StoreSQLite, dsn)

	svc, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	if svc.closer == nil {
		t.Error("Expected the sqlite store to be closable")
	}
	if _, err := os.Stat(dsn); err != nil {
		t.Errorf("Expected database file at %s: %v", dsn, err)
	}
}

func TestInitializeServices_InvalidLevelsDir(t *testing.T) {
	// A regular file where a directory is expected
	path := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	withFlags(t, path, StoreMemory, "")

	if _, err := initializeServices(); err == nil {
		t.Error("Expected error for a levels path that is not a directory")
	}
}

func TestNewPersistence(t *testing.T) {
	packs, err := config.NewManager("")
	if err != nil {
		t.Fatalf("Failed to create pack manager: %v", err)
	}
	dir := t.TempDir()

	tests := []struct {
		name    string
		kind    string
		dsn     string
		wantNil bool
		wantErr bool
	}{
		{name: "memory", kind: StoreMemory, wantNil: true},
		{name: "file", kind: StoreFile, dsn: filepath.Join(dir, "sessions")},
		{name: "sqlite", kind: StoreSQLite, dsn: filepath.Join(dir, "store.db")},
		{name: "postgres without dsn", kind: StorePostgres, wantErr: true},
		{name: "unknown", kind: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newPersistence(tt.kind, tt.dsn, packs)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if (p == nil) != tt.wantNil {
				t.Errorf("Expected nil persistence %v, got %v", tt.wantNil, p)
			}
			if closer, ok := p.(io.Closer); ok {
				closer.Close()
			}
		})
	}
}

func TestSyncWithStore(t *testing.T) {
	packs, err := config.NewManager("")
	if err != nil {
		t.Fatalf("Failed to create pack manager: %v", err)
	}
	dir := t.TempDir()
	fp, err := session.NewFilePersistence(dir, packs)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	manager := session.NewManagerWithPersistence(fp)

	_, pack := packs.GetDefault()
	kept, err := manager.Create("", config.DefaultPackID, pack)
	if err != nil {
		t.Fatal(err)
	}
	gone, err := manager.Create("", config.DefaultPackID, pack)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(dir, gone.ID+".json")); err != nil {
		t.Fatalf("Failed to remove session file: %v", err)
	}

	if pruned := syncWithStore(manager, fp); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := manager.Get(kept.ID); err != nil {
		t.Errorf("Expected %s to survive the sync: %v", kept.ID, err)
	}
	if _, err := manager.Get(gone.ID); err == nil {
		t.Errorf("Expected %s to be pruned", gone.ID)
	}
}

func TestAPIAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	if !apiAvailable(healthy.URL) {
		t.Error("Expected healthy server to be available")
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	if apiAvailable(broken.URL) {
		t.Error("Expected failing server to be unavailable")
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	if apiAvailable(closed.URL) {
		t.Error("Expected closed server to be unavailable")
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://127.0.0.1:1"))

	t.Run("rejects GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rec.Code)
		}
	})

	t.Run("initialize", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON response, got %s", ct)
		}
		if !strings.Contains(rec.Body.String(), "Sokoban") {
			t.Errorf("Expected server name in response, got %s", rec.Body.String())
		}
	})
}
