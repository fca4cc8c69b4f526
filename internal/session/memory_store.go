package session

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
)

// MemoryStore is the single-process fallback used when Redis is unavailable.
// Entries expire ttl after their last write or read.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memEntry
}

type memEntry struct {
	draft   booking.Draft
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]memEntry{}}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (booking.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok || s.now().After(e.expires) {
		delete(s.entries, sessionID)
		return booking.EmptyDraft{}, nil
	}
	e.expires = s.now().Add(s.ttl)
	s.entries[sessionID] = e
	return e.draft, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, d booking.Draft) error {
	if d == nil {
		d = booking.EmptyDraft{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.entries[sessionID] = memEntry{draft: d, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	return s.Save(ctx, sessionID, booking.EmptyDraft{})
}

// sweep drops expired entries; callers hold mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
}
