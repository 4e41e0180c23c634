package registry

import (
	"fmt"
	"sort"
	"time"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
)

// Registry is the single versioned source of council structure: seat-key
// mappings, historically-effective activity windows, and per-epoch base
// percentage tables. Built once at process start, immutable thereafter.
type Registry struct {
	mappings       []entities.CouncilMapping
	windows        []entities.ActivityWindow
	epochs         map[string]entities.Epoch
	defaultEpochID string
	seatToCouncil  map[string]string
}

func New(
	mappings []entities.CouncilMapping,
	windows []entities.ActivityWindow,
	epochs []entities.Epoch,
	defaultEpochID string,
) (*Registry, error) {
	seatToCouncil := make(map[string]string)
	for _, mapping := range mappings {
		for _, seat := range mapping.SeatKeys {
			if owner, exists := seatToCouncil[seat]; exists {
				return nil, fmt.Errorf("seat key %q mapped to both %q and %q", seat, owner, mapping.DisplayName)
			}
			seatToCouncil[seat] = mapping.DisplayName
		}
	}

	for i := 1; i < len(windows); i++ {
		if windows[i].StartDate <= windows[i-1].EndDate {
			return nil, fmt.Errorf("activity windows overlap at %q", windows[i].StartDate)
		}
	}

	byID := make(map[string]entities.Epoch, len(epochs))
	for _, epoch := range epochs {
		byID[epoch.ID] = epoch
	}
	if _, ok := byID[defaultEpochID]; !ok {
		return nil, fmt.Errorf("default epoch %q is not registered", defaultEpochID)
	}

	return &Registry{
		mappings:       mappings,
		windows:        windows,
		epochs:         byID,
		defaultEpochID: defaultEpochID,
		seatToCouncil:  seatToCouncil,
	}, nil
}

// NormalizeDate collapses an instant to its UTC calendar date. Callers
// must normalize before window lookup to avoid timezone-induced off-by-one
// membership.
func NormalizeDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ResolveActiveSeats returns the active seat keys of the first window
// containing the date, or an empty set when no window matches. No match is
// a valid degenerate state, not an error.
func (r *Registry) ResolveActiveSeats(date string) []string {
	for _, window := range r.windows {
		if window.Contains(date) {
			return append([]string(nil), window.ActiveSeats...)
		}
	}
	return []string{}
}

// DisplayNameForSeat reverse-maps a seat key to its council identity.
// Unknown seats report false; their influence is excluded, not an error.
func (r *Registry) DisplayNameForSeat(seat string) (string, bool) {
	name, ok := r.seatToCouncil[seat]
	return name, ok
}

// MappingForCouncil looks up the seat keys registered for a display name.
func (r *Registry) MappingForCouncil(displayName string) (entities.CouncilMapping, bool) {
	for _, mapping := range r.mappings {
		if mapping.DisplayName == displayName {
			return mapping, true
		}
	}
	return entities.CouncilMapping{}, false
}

// CouncilActive reports whether any of the council's seats intersects the
// active set. Unregistered councils are never active.
func (r *Registry) CouncilActive(displayName string, activeSeats []string) bool {
	mapping, ok := r.MappingForCouncil(displayName)
	if !ok {
		return false
	}
	for _, seat := range mapping.SeatKeys {
		for _, active := range activeSeats {
			if seat == active {
				return true
			}
		}
	}
	return false
}

// Epoch resolves a versioned percentage table; empty id selects the
// default epoch.
func (r *Registry) Epoch(id string) (entities.Epoch, bool) {
	if id == "" {
		id = r.defaultEpochID
	}
	epoch, ok := r.epochs[id]
	return epoch, ok
}

// EpochIDs lists registered epochs in stable order.
func (r *Registry) EpochIDs() []string {
	ids := make([]string, 0, len(r.epochs))
	for id := range r.epochs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
