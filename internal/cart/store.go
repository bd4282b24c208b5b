package cart

import (
	"context"
	"sync"
	"time"
)

// Store persists one cart per session id. Load returns an empty cart for
// unknown or expired sessions.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	cart      *Cart
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore keeps carts in process memory. Entries expire after ttl
// without a save.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *memoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return NewCart(), nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, sessionID)
		return NewCart(), nil
	}
	return e.cart.Clone(), nil
}

func (s *memoryStore) Save(_ context.Context, sessionID string, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)
	s.entries[sessionID] = memoryEntry{cart: c.Clone(), expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// evictExpired must be called with mu held.
func (s *memoryStore) evictExpired(now time.Time) {
	for sid, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, sid)
		}
	}
}
