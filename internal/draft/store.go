package draft

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix is the fixed storage key under which a session's draft lives.
const KeyPrefix = "fitsho-active-workout"

// Store is session-scoped key/value storage. Values expire with the session.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set writes value under key and refreshes the session expiry.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Claim takes an exclusive claim on key that lapses after ttl. ok is false
	// while another caller holds an unexpired claim. release gives the claim up
	// and is a no-op once the claim has lapsed or been taken by someone else.
	Claim(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

type memoryClaim struct {
	token     string
	expiresAt time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store with per-key expiry.
// It backs local development runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	claims  map[string]memoryClaim
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore whose entries live for ttl after their last write.
// A non-positive ttl keeps entries until deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		claims:  make(map[string]memoryClaim),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{value: append([]byte(nil), value...)}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if held, ok := s.claims[key]; ok && now.Before(held.expiresAt) {
		return nil, false, nil
	}
	token := uuid.NewString()
	s.claims[key] = memoryClaim{token: token, expiresAt: now.Add(ttl)}

	release := func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if held, ok := s.claims[key]; ok && held.token == token {
			delete(s.claims, key)
		}
		return nil
	}
	return release, true, nil
}
