package ports

import (
	"context"
	"time"

	"cpindex/contexts/identity-access/apikey-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for key minting.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// CredentialRepository persists issued API keys.
type CredentialRepository interface {
	FindActiveByKey(ctx context.Context, key string) (entities.APIKey, bool, error)
	FindByOwner(ctx context.Context, owner string) (entities.APIKey, bool, error)
	// ReplaceForOwner removes the owner's existing keys and inserts the
	// new one in a single transaction.
	ReplaceForOwner(ctx context.Context, key entities.APIKey) error
	TouchLastUsed(ctx context.Context, key string, now time.Time) error
}

// WindowState is a fixed-window counter readback: the post-operation
// count and the window's remaining time-to-live (0 when no window is
// armed).
type WindowState struct {
	Count int64
	TTL   time.Duration
}

// RateLimitStore provides the shared window counters. IncrWindow must be
// a single atomic step against the backing store: increment, arm the
// window expiry iff this was the first increment, and read the remaining
// TTL back. A client-side check-then-act would let concurrent requests
// re-arm the window or under-count.
type RateLimitStore interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (WindowState, error)
	// Peek reads the current count and TTL without mutating the window.
	Peek(ctx context.Context, key string) (WindowState, error)
}
