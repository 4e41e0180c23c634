package cpi

import (
	"github.com/shopspring/decimal"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
	"cpindex/contexts/governance/cpi-engine/domain/registry"
)

// ParseVotingPower leniently coerces an upstream string-encoded voting
// power to a float, rounded to 10 decimal places to suppress noise from
// string-encoded values. Absent or unparsable input collapses to 0; this
// never errors.
func ParseVotingPower(raw string) float64 {
	if raw == "" {
		return 0
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	result, _ := value.Round(10).Float64()
	return result
}

// Compute returns the date's concentration index: for each delegate, sum
// weighted voting power over the active seats, square the resulting
// influence, and sum the squares across delegates.
//
// A seat whose council has no redistributed entry weighs 0 (inactive
// councils are absent keys). A seat with no registered council weighs 0.
// A delegate missing a seat contributes 0 for that seat. An empty
// delegate list yields exactly 0.
func Compute(
	delegates []entities.DelegateSnapshot,
	activeSeats []string,
	redistributed map[string]float64,
	reg *registry.Registry,
) float64 {
	if len(delegates) == 0 {
		return 0
	}

	var sum float64
	for _, delegate := range delegates {
		var influence float64
		for _, seat := range activeSeats {
			var power float64
			if raw, ok := delegate.VotingPower[seat]; ok {
				power = ParseVotingPower(raw)
			}

			var percentage float64
			if name, ok := reg.DisplayNameForSeat(seat); ok {
				percentage = redistributed[name]
			}

			influence += power * percentage / 100
		}
		sum += influence * influence
	}
	return sum
}
