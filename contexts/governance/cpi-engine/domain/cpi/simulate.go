package cpi

import (
	"strconv"
	"strings"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
)

// rawPowerKey holds a delegate's absolute voting power; proportionalKey is
// its share of the total, recomputed after a simulated shift.
const (
	rawPowerKey     = "vp"
	proportionalKey = "th_vp"
)

// ShiftDelegation applies hypothetical voting-power substitutions to a
// copied delegate list and renormalizes every delegate's proportional
// power against the new total. The input slice is never mutated.
//
// Addresses referenced by an update but absent from the snapshot are
// synthesized as zero-power placeholder records before renormalization so
// the total and per-delegate shares stay consistent.
func ShiftDelegation(
	delegates []entities.DelegateSnapshot,
	updates []entities.AddressUpdate,
) []entities.DelegateSnapshot {
	shifted := make([]entities.DelegateSnapshot, 0, len(delegates)+len(updates))
	index := make(map[string]int, len(delegates))
	for _, delegate := range delegates {
		copied := delegate.Clone()
		index[strings.ToLower(copied.DelegateID)] = len(shifted)
		shifted = append(shifted, copied)
	}

	for _, update := range updates {
		address := strings.ToLower(update.Address)
		pos, ok := index[address]
		if !ok {
			index[address] = len(shifted)
			shifted = append(shifted, entities.DelegateSnapshot{
				DelegateID:  address,
				VotingPower: map[string]string{},
			})
			pos = index[address]
		}
		shifted[pos].VotingPower[rawPowerKey] = update.NewVotingPower
	}

	var total float64
	for _, delegate := range shifted {
		total += ParseVotingPower(delegate.VotingPower[rawPowerKey])
	}

	for _, delegate := range shifted {
		var share float64
		if total != 0 {
			share = ParseVotingPower(delegate.VotingPower[rawPowerKey]) * 100 / total
		}
		delegate.VotingPower[proportionalKey] = strconv.FormatFloat(share, 'f', -1, 64)
	}
	return shifted
}
