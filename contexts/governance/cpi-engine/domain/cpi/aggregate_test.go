package cpi

import (
	"math"
	"testing"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
)

func TestParseVotingPower(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"", 0},
		{"not-a-number", 0},
		{"0", 0},
		{"100", 100},
		{"1234.5", 1234.5},
		{"-42.5", -42.5},
		{"0.12345678901234", 0.123456789},
	}
	for _, tc := range cases {
		if got := ParseVotingPower(tc.raw); got != tc.want {
			t.Fatalf("ParseVotingPower(%q) = %f, want %f", tc.raw, got, tc.want)
		}
	}
}

func TestComputeEmptyDelegates(t *testing.T) {
	reg := testRegistry(t)
	if got := Compute(nil, []string{"alpha_s1"}, map[string]float64{"Alpha": 100}, reg); got != 0 {
		t.Fatalf("expected 0 for empty delegate list, got %f", got)
	}
}

func TestComputeSingleDelegate(t *testing.T) {
	reg := testRegistry(t)

	delegates := []entities.DelegateSnapshot{
		{DelegateID: "0xabc", VotingPower: map[string]string{"alpha_s1": "100"}},
	}
	// influence = 100 * 50 / 100 = 50; index = 50^2.
	got := Compute(delegates, []string{"alpha_s1"}, map[string]float64{"Alpha": 50}, reg)
	if got != 2500 {
		t.Fatalf("expected 2500, got %f", got)
	}
}

func TestComputeSumsSquaredInfluence(t *testing.T) {
	reg := testRegistry(t)

	delegates := []entities.DelegateSnapshot{
		{DelegateID: "0xabc", VotingPower: map[string]string{"alpha_s1": "100", "beta_s2": "10"}},
		{DelegateID: "0xdef", VotingPower: map[string]string{"alpha_s1": "20"}},
	}
	redistributed := map[string]float64{"Alpha": 50, "Beta": 50}

	// 0xabc: 100*0.5 + 10*0.5 = 55; 0xdef: 20*0.5 = 10.
	want := 55.0*55.0 + 10.0*10.0
	got := Compute(delegates, []string{"alpha_s1", "beta_s2"}, redistributed, reg)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestComputeIgnoresUnweightedSeats(t *testing.T) {
	reg := testRegistry(t)

	delegates := []entities.DelegateSnapshot{
		{DelegateID: "0xabc", VotingPower: map[string]string{
			"alpha_s1": "100",
			"gamma_s1": "999",
		}},
	}
	// gamma_s1's council has no redistributed entry, so it weighs 0.
	got := Compute(delegates, []string{"alpha_s1", "gamma_s1"}, map[string]float64{"Alpha": 50}, reg)
	if got != 2500 {
		t.Fatalf("expected gamma seat to contribute 0, got %f", got)
	}
}

func TestComputeMissingSeatAndBadPower(t *testing.T) {
	reg := testRegistry(t)

	delegates := []entities.DelegateSnapshot{
		{DelegateID: "0xabc", VotingPower: map[string]string{"beta_s2": "garbage"}},
		{DelegateID: "0xdef", VotingPower: map[string]string{}},
	}
	got := Compute(delegates, []string{"alpha_s1", "beta_s2"}, map[string]float64{"Alpha": 50, "Beta": 50}, reg)
	if got != 0 {
		t.Fatalf("expected 0 when powers are absent or unparsable, got %f", got)
	}
}
