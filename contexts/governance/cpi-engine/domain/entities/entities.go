package entities

// DelegateSnapshot is one delegate's voting-power record for one snapshot
// date. VotingPower maps seat keys (plus the raw "vp" balance) to their
// upstream string encoding; values are coerced leniently at aggregation
// time, never at read time.
type DelegateSnapshot struct {
	DelegateID  string
	VotingPower map[string]string
}

// Clone returns a deep copy so simulated rewrites never touch the stored
// snapshot.
func (d DelegateSnapshot) Clone() DelegateSnapshot {
	power := make(map[string]string, len(d.VotingPower))
	for seat, value := range d.VotingPower {
		power[seat] = value
	}
	return DelegateSnapshot{
		DelegateID:  d.DelegateID,
		VotingPower: power,
	}
}

// CouncilMapping ties a human council identity to the seat keys it has
// held across governance seasons. Seat keys are globally unique across
// mappings.
type CouncilMapping struct {
	DisplayName string
	SeatKeys    []string
}

// ActivityWindow declares which seat keys were active over an inclusive
// calendar-date range. Dates are YYYY-MM-DD strings compared
// lexicographically.
type ActivityWindow struct {
	StartDate   string
	EndDate     string
	ActiveSeats []string
}

// Contains reports whether the window covers the given calendar date.
func (w ActivityWindow) Contains(date string) bool {
	return date >= w.StartDate && date <= w.EndDate
}

// Epoch is one versioned base-percentage table. The tables are governance
// constants, supplied as configuration rather than derived state.
type Epoch struct {
	ID              string
	BasePercentages map[string]float64
}

// Redistribution is the outcome of reallocating inactive councils' weight
// across the active set. Redistributed holds entries for active councils
// only; an absent key means weight zero downstream.
type Redistribution struct {
	Active              float64
	Inactive            float64
	Redistributed       map[string]float64
	OriginalPercentages map[string]float64
}

// DateResult is the externally observable per-date record.
type DateResult struct {
	Date                string
	CPI                 float64
	ActiveCouncils      []string
	CouncilPercentages  Redistribution
	ActiveRedistributed map[string]float64
	Filename            string
}

// AddressUpdate records one hypothetical voting-power substitution applied
// by the simulated-delegation series.
type AddressUpdate struct {
	Address        string
	NewVotingPower string
}
