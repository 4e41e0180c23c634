package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
	domainerrors "cpindex/contexts/governance/cpi-engine/domain/errors"
)

// Store is an in-memory adapter implementing the snapshot, historic, and
// delegation-source ports. It is intended for tests and local wiring.
type Store struct {
	mu sync.RWMutex

	snapshots map[string][]entities.DelegateSnapshot
	historic  map[string]entities.DateResult
	delegates map[string]string
	powers    map[string]string
}

func NewStore() *Store {
	return &Store{
		snapshots: make(map[string][]entities.DelegateSnapshot),
		historic:  make(map[string]entities.DateResult),
		delegates: make(map[string]string),
		powers:    make(map[string]string),
	}
}

// SetSnapshot seeds one date's delegate records.
func (s *Store) SetSnapshot(date string, records []entities.DelegateSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]entities.DelegateSnapshot, 0, len(records))
	for _, record := range records {
		copied = append(copied, record.Clone())
	}
	s.snapshots[strings.TrimSpace(date)] = copied
}

// SetCurrentDelegate seeds live delegation state for simulated shifts.
func (s *Store) SetCurrentDelegate(delegator string, delegate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegates[strings.ToLower(strings.TrimSpace(delegator))] = delegate
}

// SetVotingPower seeds an address's live wei-denominated balance.
func (s *Store) SetVotingPower(address string, wei string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.powers[strings.ToLower(strings.TrimSpace(address))] = wei
}

func (s *Store) ListSnapshotDates(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.snapshots))
	for date := range s.snapshots {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *Store) DelegatesForDate(_ context.Context, date string) ([]entities.DelegateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.snapshots[strings.TrimSpace(date)]
	copied := make([]entities.DelegateSnapshot, 0, len(records))
	for _, record := range records {
		copied = append(copied, record.Clone())
	}
	return copied, nil
}

func (s *Store) ByDate(_ context.Context, date string) (entities.DateResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.historic[strings.TrimSpace(date)]
	if !ok {
		return entities.DateResult{}, domainerrors.ErrDateNotFound
	}
	return result, nil
}

func (s *Store) List(_ context.Context) ([]entities.DateResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]entities.DateResult, 0, len(s.historic))
	for _, result := range s.historic {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Date > results[j].Date
	})
	return results, nil
}

func (s *Store) Upsert(_ context.Context, result entities.DateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historic[result.Date] = result
	return nil
}

func (s *Store) CurrentDelegate(_ context.Context, delegator string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	delegate, ok := s.delegates[strings.ToLower(strings.TrimSpace(delegator))]
	if !ok {
		return "", domainerrors.ErrDelegateNotFound
	}
	return delegate, nil
}

func (s *Store) VotingPower(_ context.Context, address string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wei, ok := s.powers[strings.ToLower(strings.TrimSpace(address))]
	if !ok {
		return "0", nil
	}
	return wei, nil
}
