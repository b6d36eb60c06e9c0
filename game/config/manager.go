package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

// DefaultPackID names the pack compiled into the binary
const DefaultPackID = "default"

const packExt = ".txt"

//go:embed packs/default.txt
var defaultPackText string

var (
	ErrPackNotFound = service.ErrPackNotFound
	ErrInvalidPack  = service.ErrInvalidPack
	ErrNoLevelsDir  = errors.New("no levels directory configured")
)

// Manager handles level pack loading and caching
type Manager struct {
	levelsDir   string
	defaultID   string
	defaultPack *engine.Collection
	packs       map[string]*engine.Collection
	mu          sync.RWMutex
}

// NewManager creates a new pack manager. levelsDir may be empty or missing,
// in which case only the embedded pack is available.
func NewManager(levelsDir string) (*Manager, error) {
	if levelsDir != "" {
		if info, err := os.Stat(levelsDir); err == nil && !info.IsDir() {
			return nil, fmt.Errorf("levels path is not a directory: %s", levelsDir)
		}
	}

	m := &Manager{
		levelsDir: levelsDir,
		defaultID: DefaultPackID,
		packs:     make(map[string]*engine.Collection),
	}

	if err := m.loadDefaultPack(); err != nil {
		return nil, fmt.Errorf("failed to load default pack: %w", err)
	}

	return m, nil
}

// LoadPack loads a pack by name; the .txt suffix is optional
func (m *Manager) LoadPack(name string) (*engine.Collection, error) {
	name = strings.TrimSuffix(name, packExt)
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrPackNotFound, name)
	}

	m.mu.RLock()
	// Check cache first
	if pack, exists := m.packs[name]; exists {
		m.mu.RUnlock()
		return pack, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if pack, exists := m.packs[name]; exists {
		return pack, nil
	}

	pack, err := m.readPack(name)
	if err != nil {
		return nil, err
	}

	m.packs[name] = pack
	return pack, nil
}

// ListPacks returns information about all available packs
func (m *Manager) ListPacks() ([]*service.PackInfo, error) {
	var packs []*service.PackInfo
	seen := make(map[string]bool)

	if m.levelsDir != "" {
		entries, err := os.ReadDir(m.levelsDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read levels directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), packExt) {
				continue
			}

			id := strings.TrimSuffix(entry.Name(), packExt)
			pack, err := m.LoadPack(id)
			if err != nil {
				log.Printf("Warning: skipping level pack %s: %v", entry.Name(), err)
				continue
			}

			packs = append(packs, packInfo(entry.Name(), id, pack))
			seen[id] = true
		}
	}

	if !seen[DefaultPackID] {
		pack, err := m.LoadPack(DefaultPackID)
		if err == nil {
			packs = append([]*service.PackInfo{packInfo("", DefaultPackID, pack)}, packs...)
		}
	}

	return packs, nil
}

// GetDefault returns the default pack and its identifier
func (m *Manager) GetDefault() (string, *engine.Collection) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID, m.defaultPack
}

// SetDefault sets the default pack by name
func (m *Manager) SetDefault(name string) error {
	pack, err := m.LoadPack(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = strings.TrimSuffix(name, packExt)
	m.defaultPack = pack
	return nil
}

// RefreshCache drops every cached pack and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.packs = make(map[string]*engine.Collection)
	m.mu.Unlock()

	return m.loadDefaultPack()
}

// SavePack validates text as a pack and writes it to the levels directory
func (m *Manager) SavePack(name, text string) (*service.PackInfo, error) {
	name = strings.TrimSuffix(name, packExt)
	if !validName(name) {
		return nil, fmt.Errorf("%w: bad pack name %q", ErrInvalidPack, name)
	}
	if m.levelsDir == "" {
		return nil, ErrNoLevelsDir
	}

	// Validate pack before saving
	pack, err := engine.NewCollection(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPack, err)
	}
	if pack.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPack, engine.ErrEmptyCollection)
	}

	if err := os.MkdirAll(m.levelsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create levels directory: %w", err)
	}

	filename := name + packExt
	if err := os.WriteFile(filepath.Join(m.levelsDir, filename), []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("failed to write pack file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.packs[name] = pack
	m.mu.Unlock()

	return packInfo(filename, name, pack), nil
}

// Count returns the number of cached packs
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.packs)
}

// loadDefaultPack resolves the current default id, falling back to the
// embedded pack when the file is gone
func (m *Manager) loadDefaultPack() error {
	m.mu.RLock()
	id := m.defaultID
	m.mu.RUnlock()

	pack, err := m.LoadPack(id)
	if err != nil {
		if id == DefaultPackID {
			return err
		}
		log.Printf("Warning: default pack %s unavailable, using %s: %v", id, DefaultPackID, err)
		id = DefaultPackID
		if pack, err = m.LoadPack(id); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.defaultID = id
	m.defaultPack = pack
	m.mu.Unlock()
	return nil
}

// readPack parses a pack file, or the embedded pack for DefaultPackID when no
// file overrides it. Callers hold the write lock.
func (m *Manager) readPack(name string) (*engine.Collection, error) {
	var data []byte
	var err error
	if m.levelsDir != "" {
		data, err = os.ReadFile(filepath.Join(m.levelsDir, name+packExt))
	} else {
		err = os.ErrNotExist
	}

	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read pack file: %w", err)
		}
		if name != DefaultPackID {
			return nil, fmt.Errorf("%w: %s", ErrPackNotFound, name)
		}
		data = []byte(defaultPackText)
	}

	pack, err := engine.NewCollection(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPack, err)
	}
	if pack.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no levels", ErrInvalidPack, name)
	}
	return pack, nil
}

func packInfo(filename, id string, pack *engine.Collection) *service.PackInfo {
	info := &service.PackInfo{
		Filename: filename,
		PackID:   id,
		Name:     pack.Title,
		Levels:   pack.Len(),
	}
	if info.Name == "" {
		info.Name = id
	}
	for _, level := range pack.All() {
		info.Boxes += len(level.Boxes())
	}
	return info
}

// validName rejects names that would escape the levels directory
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}
