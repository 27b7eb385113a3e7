package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/logger"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

// ManifestStore is an in-memory implementation of driven.ManifestStore.
// It is the backing for tests and for headless runs without a data dir;
// the sqlite store embeds it and adds persistence.
type ManifestStore struct {
	mu        sync.RWMutex
	entries   map[string]domain.ManifestEntry
	listeners map[int]driven.ManifestListener
	nextID    int

	// persist, when set, is called under the write lock after every
	// mutation with the full entry map. Errors are logged and swallowed:
	// the in-memory view stays authoritative.
	persist func(map[string]domain.ManifestEntry) error
}

// NewManifestStore creates an empty in-memory manifest store.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{
		entries:   make(map[string]domain.ManifestEntry),
		listeners: make(map[int]driven.ManifestListener),
	}
}

// NewManifestStoreWith creates a store preloaded with entries and a persist
// hook. Used by durable implementations layering on top of this one.
func NewManifestStoreWith(entries map[string]domain.ManifestEntry, persist func(map[string]domain.ManifestEntry) error) *ManifestStore {
	s := NewManifestStore()
	for key, entry := range entries {
		s.entries[key] = entry
	}
	s.persist = persist
	return s
}

// GetAll returns all entries sorted by recency, newest first.
func (s *ManifestStore) GetAll(_ context.Context) []domain.ManifestEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Get returns the entry for a key, or nil.
func (s *ManifestStore) Get(_ context.Context, key string) *domain.ManifestEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	return &entry
}

// Upsert replaces the entry for its key and notifies subscribers.
func (s *ManifestStore) Upsert(_ context.Context, entry domain.ManifestEntry) {
	s.mu.Lock()
	s.entries[entry.Key] = entry
	s.persistLocked()
	snapshot, listeners := s.notifySetLocked()
	s.mu.Unlock()

	emit(snapshot, listeners)
}

// UpdateCredit patches the credit line of an existing entry.
func (s *ManifestStore) UpdateCredit(_ context.Context, key, credit string) {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	entry.Credit = credit
	entry.UpdatedAt = time.Now()
	s.entries[key] = entry
	s.persistLocked()
	snapshot, listeners := s.notifySetLocked()
	s.mu.Unlock()

	emit(snapshot, listeners)
}

// ToggleLock patches the lock flag of an existing entry.
func (s *ManifestStore) ToggleLock(_ context.Context, key string, locked bool) {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	entry.Locked = locked
	entry.UpdatedAt = time.Now()
	s.entries[key] = entry
	s.persistLocked()
	snapshot, listeners := s.notifySetLocked()
	s.mu.Unlock()

	emit(snapshot, listeners)
}

// Clear drops all entries, or only those of the given scope.
func (s *ManifestStore) Clear(_ context.Context, scope domain.Scope) {
	s.mu.Lock()
	if scope == "" {
		s.entries = make(map[string]domain.ManifestEntry)
	} else {
		for key, entry := range s.entries {
			if entry.Scope == scope {
				delete(s.entries, key)
			}
		}
	}
	s.persistLocked()
	snapshot, listeners := s.notifySetLocked()
	s.mu.Unlock()

	emit(snapshot, listeners)
}

// Replace swaps the entire manifest contents atomically.
func (s *ManifestStore) Replace(_ context.Context, entries []domain.ManifestEntry) {
	s.mu.Lock()
	next := make(map[string]domain.ManifestEntry, len(entries))
	for _, entry := range entries {
		next[entry.Key] = entry
	}
	s.entries = next
	s.persistLocked()
	snapshot, listeners := s.notifySetLocked()
	s.mu.Unlock()

	emit(snapshot, listeners)
}

// Subscribe registers a listener and replays the current snapshot to it.
func (s *ManifestStore) Subscribe(listener driven.ManifestListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	emit(snapshot, []driven.ManifestListener{listener})

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotLocked copies entries sorted newest-first. Caller holds a lock.
func (s *ManifestStore) snapshotLocked() []domain.ManifestEntry {
	entries := make([]domain.ManifestEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries
}

func (s *ManifestStore) persistLocked() {
	if s.persist == nil {
		return
	}
	if err := s.persist(s.entries); err != nil {
		logger.Warn("manifest persistence failed, in-memory state remains authoritative: %v", err)
	}
}

// notifySetLocked captures the snapshot and listener set under the lock so
// emission can happen outside it.
func (s *ManifestStore) notifySetLocked() ([]domain.ManifestEntry, []driven.ManifestListener) {
	listeners := make([]driven.ManifestListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return s.snapshotLocked(), listeners
}

// emit delivers a snapshot to listeners, containing any panic so one bad
// subscriber cannot take down a mutation.
func emit(snapshot []domain.ManifestEntry, listeners []driven.ManifestListener) {
	for _, listener := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Warn("manifest listener panicked: %v", r)
				}
			}()
			listener(snapshot)
		}()
	}
}
