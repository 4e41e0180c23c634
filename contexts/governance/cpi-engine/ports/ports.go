package ports

import (
	"context"
	"time"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
)

// SnapshotStore reads the externally produced delegate snapshots. The
// engine never writes this data.
type SnapshotStore interface {
	// ListSnapshotDates returns the distinct snapshot dates in ascending
	// YYYY-MM-DD order.
	ListSnapshotDates(ctx context.Context) ([]string, error)
	DelegatesForDate(ctx context.Context, date string) ([]entities.DelegateSnapshot, error)
}

// HistoricStore owns the persisted per-date index series.
type HistoricStore interface {
	ByDate(ctx context.Context, date string) (entities.DateResult, error)
	List(ctx context.Context) ([]entities.DateResult, error)
	Upsert(ctx context.Context, result entities.DateResult) error
}

// DelegationSource resolves live delegation state for simulated shifts.
// Voting powers are returned as wei-denominated decimal strings.
type DelegationSource interface {
	CurrentDelegate(ctx context.Context, delegator string) (string, error)
	VotingPower(ctx context.Context, address string) (string, error)
}

// DatesCache and DelegatesCache memoize the expensive snapshot lookups for
// a computation run. Misses must always be recomputable from the store.
type DatesCache interface {
	Get(key string) ([]string, bool)
	Set(key string, value []string, ttl time.Duration)
}

type DelegatesCache interface {
	Get(key string) ([]entities.DelegateSnapshot, bool)
	Set(key string, value []entities.DelegateSnapshot, ttl time.Duration)
}
