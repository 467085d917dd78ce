// Package store keeps a list of records under one named slot. Every
// mutation re-serialises the whole list and writes it back with the slot
// version it was read at, so concurrent writers cannot overwrite each other.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"jobcard-backend/internal/metrics"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateID     = errors.New("duplicate record id")
	ErrVersionConflict = errors.New("slot was modified by another writer")
)

// Record is anything the store can hold.
type Record interface {
	RecordID() string
}

// Slot persists one JSON payload per key together with a version. Load of
// a missing key returns a nil payload and version 0. Save must fail with
// ErrVersionConflict when the stored version differs from expected.
type Slot interface {
	Load(ctx context.Context, key string) ([]byte, int64, error)
	Save(ctx context.Context, key string, payload []byte, expected int64) (int64, error)
}

type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionReplaced Action = "replaced"
	ActionCleared  Action = "cleared"
)

// Change describes one committed mutation.
type Change struct {
	Slot    string `json:"slot"`
	Action  Action `json:"action"`
	ID      string `json:"id,omitempty"`
	Version int64  `json:"version"`
}

type Store[T Record] struct {
	mu      sync.RWMutex
	slot    Slot
	key     string
	items   []T
	version int64
	loaded  bool

	hookMu sync.RWMutex
	hooks  []func(Change)
}

func New[T Record](slot Slot, key string) *Store[T] {
	return &Store[T]{slot: slot, key: key}
}

func (s *Store[T]) Key() string {
	return s.key
}

// OnChange registers fn to run after every committed mutation.
func (s *Store[T]) OnChange(fn func(Change)) {
	s.hookMu.Lock()
	s.hooks = append(s.hooks, fn)
	s.hookMu.Unlock()
}

// Load reads the slot once. Later calls are no-ops; use Refresh to re-read.
func (s *Store[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	return s.reload(ctx)
}

// Refresh re-reads the slot, picking up writes from other processes.
func (s *Store[T]) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *Store[T]) reload(ctx context.Context) error {
	payload, version, err := s.slot.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load slot %s: %w", s.key, err)
	}
	items := []T{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &items); err != nil {
			// keep the version so the next write replaces the bad payload
			log.Printf("[Store] slot %s holds unreadable data (version %d), starting empty: %v", s.key, version, err)
			items = []T{}
		}
	}
	s.items = items
	s.version = version
	s.loaded = true
	metrics.RecordsGauge.WithLabelValues(s.key).Set(float64(len(items)))
	return nil
}

func (s *Store[T]) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// List returns a copy of every record in stored order.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := s.Load(ctx); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return cloneOf(s.items[i]), nil
	}
	return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Create appends item. Its id must not already be present.
func (s *Store[T]) Create(ctx context.Context, item T) ([]T, error) {
	return s.mutate(ctx, ActionCreated, item.RecordID(), func(items []T) ([]T, error) {
		for _, have := range items {
			if have.RecordID() == item.RecordID() {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateID, item.RecordID())
			}
		}
		return append(items, item), nil
	})
}

// Update replaces the record with the same id, keeping its position.
func (s *Store[T]) Update(ctx context.Context, item T) ([]T, error) {
	id := item.RecordID()
	return s.mutate(ctx, ActionUpdated, id, func(items []T) ([]T, error) {
		for i := range items {
			if items[i].RecordID() == id {
				items[i] = item
				return items, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
}

// Modify applies fn to a copy of the record with id and stores the result.
// If fn fails nothing is written.
func (s *Store[T]) Modify(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var out T
	_, err := s.mutate(ctx, ActionUpdated, id, func(items []T) ([]T, error) {
		for i := range items {
			if items[i].RecordID() != id {
				continue
			}
			rec := cloneOf(items[i])
			if err := fn(&rec); err != nil {
				return nil, err
			}
			items[i] = rec
			out = cloneOf(rec)
			return items, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	return out, err
}

// Delete removes exactly the record with id.
func (s *Store[T]) Delete(ctx context.Context, id string) ([]T, error) {
	return s.mutate(ctx, ActionDeleted, id, func(items []T) ([]T, error) {
		for i := range items {
			if items[i].RecordID() == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
}

// ReplaceAll swaps the whole list. Ids must be unique.
func (s *Store[T]) ReplaceAll(ctx context.Context, items []T) ([]T, error) {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.RecordID()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, it.RecordID())
		}
		seen[it.RecordID()] = true
	}
	return s.mutate(ctx, ActionReplaced, "", func([]T) ([]T, error) {
		return append([]T{}, items...), nil
	})
}

func (s *Store[T]) Clear(ctx context.Context) error {
	_, err := s.mutate(ctx, ActionCleared, "", func([]T) ([]T, error) {
		return []T{}, nil
	})
	return err
}

// mutate runs fn on a private copy of the list and persists the result.
// On a version conflict the cache is reloaded and ErrVersionConflict
// returned; the caller decides whether to retry.
func (s *Store[T]) mutate(ctx context.Context, action Action, id string, fn func([]T) ([]T, error)) ([]T, error) {
	s.mu.Lock()
	if !s.loaded {
		if err := s.reload(ctx); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	next, err := fn(s.snapshot())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	payload, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("encode slot %s: %w", s.key, err)
	}
	version, err := s.slot.Save(ctx, s.key, payload, s.version)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			metrics.StoreConflictsTotal.WithLabelValues(s.key).Inc()
			log.Printf("[Store] version conflict on slot %s at version %d, reloading", s.key, s.version)
			if rerr := s.reload(ctx); rerr != nil {
				log.Printf("[Store] reload after conflict failed for slot %s: %v", s.key, rerr)
			}
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("save slot %s: %w", s.key, err)
	}
	s.items = next
	s.version = version
	snap := s.snapshot()
	s.mu.Unlock()

	metrics.StoreWritesTotal.WithLabelValues(s.key, string(action)).Inc()
	metrics.RecordsGauge.WithLabelValues(s.key).Set(float64(len(snap)))
	s.notify(Change{Slot: s.key, Action: action, ID: id, Version: version})
	return snap, nil
}

func (s *Store[T]) notify(c Change) {
	s.hookMu.RLock()
	hooks := append([]func(Change){}, s.hooks...)
	s.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(c)
	}
}

func (s *Store[T]) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].RecordID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) snapshot() []T {
	out := make([]T, len(s.items))
	for i, it := range s.items {
		out[i] = cloneOf(it)
	}
	return out
}

func cloneOf[T Record](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}

// MemorySlot is a Slot kept in process memory.
type MemorySlot struct {
	mu    sync.Mutex
	slots map[string]memoryEntry
}

type memoryEntry struct {
	payload []byte
	version int64
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{slots: make(map[string]memoryEntry)}
}

func (m *MemorySlot) Load(_ context.Context, key string) ([]byte, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.slots[key]
	if !ok {
		return nil, 0, nil
	}
	return append([]byte(nil), e.payload...), e.version, nil
}

func (m *MemorySlot) Save(_ context.Context, key string, payload []byte, expected int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.slots[key]
	if e.version != expected {
		return 0, ErrVersionConflict
	}
	next := memoryEntry{payload: append([]byte(nil), payload...), version: e.version + 1}
	m.slots[key] = next
	return next.version, nil
}
