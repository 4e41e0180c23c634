package cpi

import (
	"math"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
	"cpindex/contexts/governance/cpi-engine/domain/registry"
)

// Redistribute reallocates inactive councils' base percentage evenly
// across the councils whose seats intersect activeSeats.
//
// Councils named in the base table but absent from the registry are
// skipped entirely (neither active nor inactive); that behavior is locked
// in because changing it changes historical index values. Inactive
// councils get no entry in Redistributed — absent key reads as weight 0
// downstream. Totals are rounded to 2 decimals for reporting only; the
// bonus uses the unrounded sums.
func Redistribute(
	activeSeats []string,
	basePercentages map[string]float64,
	reg *registry.Registry,
) entities.Redistribution {
	var activeTotal, inactiveTotal float64
	activeBase := make(map[string]float64)
	original := make(map[string]float64)

	for council, percent := range basePercentages {
		if _, ok := reg.MappingForCouncil(council); !ok {
			continue
		}
		original[council] = percent
		if reg.CouncilActive(council, activeSeats) {
			activeTotal += percent
			activeBase[council] = percent
		} else {
			inactiveTotal += percent
		}
	}

	var bonus float64
	if len(activeBase) > 0 {
		bonus = inactiveTotal / float64(len(activeBase))
	}

	redistributed := make(map[string]float64, len(activeBase))
	for council, base := range activeBase {
		redistributed[council] = round2(base + bonus)
	}

	return entities.Redistribution{
		Active:              round2(activeTotal),
		Inactive:            round2(inactiveTotal),
		Redistributed:       redistributed,
		OriginalPercentages: original,
	}
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
