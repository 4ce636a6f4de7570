package session

import (
	"sync"
	"time"

	"finsight/domain/finance"
	"finsight/internal/errors"
)

// DefaultKey is the fixed key under which the uploaded table is published.
const DefaultKey = "uploaded_data"

// Snapshot is one published table together with where it came from.
// Snapshots are never mutated after publication; a new upload replaces the whole value.
type Snapshot struct {
	ID       string         `json:"id"`
	Filename string         `json:"filename"`
	Table    *finance.Table `json:"-"`
	LoadedAt time.Time      `json:"loaded_at"`
	// Recorded is set when the upload has a row in the upload history
	Recorded bool `json:"recorded"`
}

// Store holds application state shared by every page.
// The loader is the single writer; pages only read.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Snapshot
	version uint64
}

// NewStore creates an empty state store
func NewStore() *Store {
	return &Store{entries: make(map[string]*Snapshot)}
}

// Replace publishes snap under key, discarding the previous value wholesale.
func (s *Store) Replace(key string, snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = snap
	s.version++
}

// Get returns the snapshot under key
func (s *Store) Get(key string) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.entries[key]
	return snap, ok
}

// Current returns the snapshot under DefaultKey, NO_DATA when nothing has been uploaded.
func (s *Store) Current() (*Snapshot, error) {
	snap, ok := s.Get(DefaultKey)
	if !ok || snap == nil || snap.Table == nil {
		return nil, errors.NoData("upload a CSV file to begin")
	}
	return snap, nil
}

// Clear removes the snapshot under key
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	s.version++
}

// Version increases on every write
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
