package cpi

import (
	"testing"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
)

func TestShiftDelegationRenormalizes(t *testing.T) {
	delegates := []entities.DelegateSnapshot{
		{DelegateID: "0xAAA", VotingPower: map[string]string{"vp": "60", "th_vp": "60"}},
		{DelegateID: "0xBBB", VotingPower: map[string]string{"vp": "40", "th_vp": "40"}},
	}

	shifted := ShiftDelegation(delegates, []entities.AddressUpdate{
		{Address: "0xAAA", NewVotingPower: "20"},
		{Address: "0xBBB", NewVotingPower: "80"},
	})

	if len(shifted) != 2 {
		t.Fatalf("expected 2 delegates, got %d", len(shifted))
	}
	if got := shifted[0].VotingPower["th_vp"]; got != "20" {
		t.Fatalf("expected 0xAAA share 20, got %s", got)
	}
	if got := shifted[1].VotingPower["th_vp"]; got != "80" {
		t.Fatalf("expected 0xBBB share 80, got %s", got)
	}
}

func TestShiftDelegationSynthesizesPlaceholder(t *testing.T) {
	delegates := []entities.DelegateSnapshot{
		{DelegateID: "0xAAA", VotingPower: map[string]string{"vp": "100"}},
	}

	shifted := ShiftDelegation(delegates, []entities.AddressUpdate{
		{Address: "0xNEW", NewVotingPower: "100"},
	})

	if len(shifted) != 2 {
		t.Fatalf("expected placeholder to be added, got %d records", len(shifted))
	}
	placeholder := shifted[1]
	if placeholder.DelegateID != "0xnew" {
		t.Fatalf("expected lowercased placeholder id, got %s", placeholder.DelegateID)
	}
	if got := placeholder.VotingPower["th_vp"]; got != "50" {
		t.Fatalf("expected placeholder share 50, got %s", got)
	}
	if got := shifted[0].VotingPower["th_vp"]; got != "50" {
		t.Fatalf("expected existing delegate share 50, got %s", got)
	}
}

func TestShiftDelegationRenormalizesUntouchedDelegates(t *testing.T) {
	delegates := []entities.DelegateSnapshot{
		{DelegateID: "0xAAA", VotingPower: map[string]string{"vp": "50"}},
		{DelegateID: "0xBBB", VotingPower: map[string]string{"vp": "50"}},
	}

	shifted := ShiftDelegation(delegates, []entities.AddressUpdate{
		{Address: "0xAAA", NewVotingPower: "150"},
	})

	// Total becomes 200; the untouched delegate's share must be recomputed,
	// not left stale or undefined.
	if got := shifted[1].VotingPower["th_vp"]; got != "25" {
		t.Fatalf("expected untouched delegate share 25, got %s", got)
	}
	if got := shifted[0].VotingPower["th_vp"]; got != "75" {
		t.Fatalf("expected updated delegate share 75, got %s", got)
	}
}

func TestShiftDelegationZeroTotal(t *testing.T) {
	shifted := ShiftDelegation(nil, []entities.AddressUpdate{
		{Address: "0xAAA", NewVotingPower: "0"},
	})
	if got := shifted[0].VotingPower["th_vp"]; got != "0" {
		t.Fatalf("expected share 0 with zero total, got %s", got)
	}
}

func TestShiftDelegationDoesNotMutateInput(t *testing.T) {
	delegates := []entities.DelegateSnapshot{
		{DelegateID: "0xAAA", VotingPower: map[string]string{"vp": "60", "th_vp": "60"}},
	}

	_ = ShiftDelegation(delegates, []entities.AddressUpdate{
		{Address: "0xAAA", NewVotingPower: "10"},
	})

	if delegates[0].VotingPower["vp"] != "60" || delegates[0].VotingPower["th_vp"] != "60" {
		t.Fatalf("input snapshot was mutated: %v", delegates[0].VotingPower)
	}
}
