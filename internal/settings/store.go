package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys for the persisted forwarding defaults. The names match what the web
// control stores in browser localStorage.
const (
	KeyJobID  = "jobId"
	KeyCookie = "cookieId"
)

// Store is a small file-backed key-value store for forwarding defaults:
// loaded once at startup, written back on every change.
type Store struct {
	mu   sync.RWMutex
	path string
	vals map[string]string
}

// NewStore constructs a Store persisted at path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		vals: make(map[string]string),
	}
}

// Load reads the settings file if it exists. A missing file is not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings file: %w", err)
	}

	vals := make(map[string]string)
	if err := json.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("parse settings file: %w", err)
	}
	s.vals = vals
	return nil
}

// Get returns the stored value for key, or empty string.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vals[key]
}

// Set stores a value and writes the file back.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = value
	return s.saveLocked()
}

// SetDefault stores a value only if the key is currently unset.
func (s *Store) SetDefault(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vals[key]; ok || value == "" {
		return nil
	}
	s.vals[key] = value
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir settings dir: %w", err)
	}
	data, err := json.MarshalIndent(s.vals, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	// Session cookies land in this file; keep it owner-only.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
