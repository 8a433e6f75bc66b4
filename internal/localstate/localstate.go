// Package localstate is a small file-backed key-value store holding JSON values, used for
// client-side preferences and the offline task cache.
package localstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"tasknest/internal/models"
)

// Well-known keys.
const (
	KeyTasks       = "tasks"
	KeyBoards      = "boards"
	KeyDarkMode    = "darkMode"
	KeySidebarOpen = "sidebarOpen"
)

// Store keeps every key in a single JSON object on disk.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// Open returns a store backed by path. The file is created on first write.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// load reads the raw entries. A missing or unreadable file yields an empty map.
func (s *Store) load() map[string]json.RawMessage {
	entries := map[string]json.RawMessage{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("local state unreadable", slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("local state corrupt, starting empty", slog.String("path", s.path), slog.String("error", err.Error()))
		return map[string]json.RawMessage{}
	}
	return entries
}

// Raw returns the stored JSON of key and whether it exists.
func (s *Store) Raw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.load()[key]
	return v, ok
}

// Set stores v under key, replacing the file atomically.
func (s *Store) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries[key] = data
	return s.write(entries)
}

// Delete removes key.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.write(entries)
}

func (s *Store) write(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Get decodes key into a T, returning fallback when the key is missing or its JSON
// does not decode.
func Get[T any](s *Store, key string, fallback T) T {
	raw, ok := s.Raw(key)
	if !ok {
		return fallback
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("local state value corrupt", slog.String("key", key), slog.String("error", err.Error()))
		return fallback
	}
	return v
}

// Preferences are the persisted UI settings.
type Preferences struct {
	DarkMode    bool `json:"darkMode"`
	SidebarOpen bool `json:"sidebarOpen"`
}

// DefaultPreferences has the sidebar open and dark mode off.
func DefaultPreferences() Preferences {
	return Preferences{DarkMode: false, SidebarOpen: true}
}

// Preferences loads the UI settings, key by key, with defaults for anything missing.
func (s *Store) Preferences() Preferences {
	def := DefaultPreferences()
	return Preferences{
		DarkMode:    Get(s, KeyDarkMode, def.DarkMode),
		SidebarOpen: Get(s, KeySidebarOpen, def.SidebarOpen),
	}
}

// SavePreferences stores both UI settings.
func (s *Store) SavePreferences(p Preferences) error {
	if err := s.Set(KeyDarkMode, p.DarkMode); err != nil {
		return err
	}
	return s.Set(KeySidebarOpen, p.SidebarOpen)
}

// Tasks loads the cached task collection, empty when missing or corrupt.
func (s *Store) Tasks() []models.Task {
	return Get(s, KeyTasks, []models.Task{})
}

// SaveTasks replaces the cached task collection.
func (s *Store) SaveTasks(tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return s.Set(KeyTasks, tasks)
}

// Boards loads the cached boards, empty when missing or corrupt.
func (s *Store) Boards() []models.Board {
	return Get(s, KeyBoards, []models.Board{})
}

// SaveBoards replaces the cached boards.
func (s *Store) SaveBoards(boards []models.Board) error {
	if boards == nil {
		boards = []models.Board{}
	}
	return s.Set(KeyBoards, boards)
}
