package session

import (
	"context"
	"sync"
	"time"

	"github.com/jmadden/clubhouse/internal/domain"
)

type memoryEntry struct {
	userID    int64
	expiresAt time.Time
}

// MemoryStore is the process-local backing. Identities live only as long
// as the process, which is the documented limitation of this design.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	tok, err := newOpaqueToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tok] = memoryEntry{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	return tok, nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (int64, error) {
	s.mu.RLock()
	entry, ok := s.entries[token]
	s.mu.RUnlock()

	if !ok {
		return 0, domain.ErrSessionInvalid()
	}
	if time.Now().After(entry.expiresAt) {
		_ = s.Destroy(ctx, token)
		return 0, domain.ErrSessionInvalid()
	}
	return entry.userID, nil
}

func (s *MemoryStore) Destroy(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token) // idempotent
	return nil
}
