package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by stores when no live record exists for an id.
var ErrNotFound = errors.New("session record not found")

// Store persists opaque session records with an expiry.
type Store interface {
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Load(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Migrator is implemented by stores that own schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Purger is implemented by stores that do not expire records on their own.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps records in process. Used in development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.entries[id] = memoryEntry{data: buf, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	return e.data, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Purge(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many records are held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
