// Package memory provides in-process adapters for the apikey-service
// ports, used by tests and the in-memory module wiring.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"cpindex/contexts/identity-access/apikey-service/domain/entities"
	domainerrors "cpindex/contexts/identity-access/apikey-service/domain/errors"
	"cpindex/contexts/identity-access/apikey-service/ports"
)

// SystemClock returns wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// UUIDGenerator mints random UUID strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type window struct {
	count     int64
	expiresAt time.Time
}

// Store keeps credentials and window counters in process memory. It
// implements both CredentialRepository and RateLimitStore.
type Store struct {
	mu      sync.Mutex
	keys    map[string]entities.APIKey
	windows map[string]window
	now     func() time.Time
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock injects the time source so tests can advance it.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		keys:    make(map[string]entities.APIKey),
		windows: make(map[string]window),
		now:     now,
	}
}

func (s *Store) FindActiveByKey(_ context.Context, key string) (entities.APIKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	credential, ok := s.keys[key]
	if !ok || !credential.IsActive {
		return entities.APIKey{}, false, nil
	}
	return credential, true, nil
}

func (s *Store) FindByOwner(_ context.Context, owner string) (entities.APIKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, credential := range s.keys {
		if credential.Owner == owner && credential.IsActive {
			return credential, true, nil
		}
	}
	return entities.APIKey{}, false, nil
}

func (s *Store) ReplaceForOwner(_ context.Context, key entities.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for existing, credential := range s.keys {
		if credential.Owner == key.Owner {
			delete(s.keys, existing)
		}
	}
	s.keys[key.Key] = key
	return nil
}

func (s *Store) TouchLastUsed(_ context.Context, key string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	credential, ok := s.keys[key]
	if !ok {
		return domainerrors.ErrKeyNotFound
	}
	credential.LastUsed = &now
	s.keys[key] = credential
	return nil
}

// IncrWindow performs the whole increment-arm-readback sequence under
// one lock acquisition so concurrent callers observe a single window.
func (s *Store) IncrWindow(_ context.Context, key string, windowSize time.Duration) (ports.WindowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		w = window{count: 0, expiresAt: now.Add(windowSize)}
	}
	w.count++
	s.windows[key] = w

	return ports.WindowState{Count: w.count, TTL: w.expiresAt.Sub(now)}, nil
}

func (s *Store) Peek(_ context.Context, key string) (ports.WindowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		return ports.WindowState{}, nil
	}
	return ports.WindowState{Count: w.count, TTL: w.expiresAt.Sub(now)}, nil
}
