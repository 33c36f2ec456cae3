package journal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps the journal in process. Used when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = 1000
	}

	return &MemoryStore{
		entries: make([]Entry, 0),
		max:     max,
	}
}

func (s *MemoryStore) Record(ctx context.Context, entry Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.entries = append(s.entries, entry)
	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}

	return entry, nil
}

func (s *MemoryStore) Latest(ctx context.Context, plugin, addr string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.Plugin == plugin && e.Addr == addr {
			return e, nil
		}
	}

	return Entry{}, ErrNotFound
}

// List returns the newest entries first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = DefaultLimit
	}

	entries := make([]Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, s.entries[i])
	}

	return entries, nil
}
