package registry

import (
	"testing"
	"time"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
)

func TestResolveActiveSeatsOutsideWindows(t *testing.T) {
	reg := Default()

	for _, date := range []string{"2020-01-01", "2022-05-25", "2025-07-24", "2099-12-31"} {
		seats := reg.ResolveActiveSeats(date)
		if len(seats) != 0 {
			t.Fatalf("expected no active seats for %s, got %v", date, seats)
		}
	}
}

func TestResolveActiveSeatsWindowBounds(t *testing.T) {
	reg := Default()

	first := reg.ResolveActiveSeats("2022-05-26")
	if len(first) != 2 {
		t.Fatalf("expected 2 active seats at first window start, got %v", first)
	}
	last := reg.ResolveActiveSeats("2025-07-23")
	if len(last) != 7 {
		t.Fatalf("expected 7 active seats at last window end, got %v", last)
	}

	mid := reg.ResolveActiveSeats("2024-01-04")
	found := false
	for _, seat := range mid {
		if seat == "sc_vp_s5" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sc_vp_s5 active on 2024-01-04, got %v", mid)
	}
}

func TestResolveActiveSeatsReturnsCopy(t *testing.T) {
	reg := Default()

	seats := reg.ResolveActiveSeats("2022-06-01")
	seats[0] = "mutated"
	again := reg.ResolveActiveSeats("2022-06-01")
	if again[0] == "mutated" {
		t.Fatal("registry window leaked through returned slice")
	}
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*3600)
	instant := time.Date(2024, 7, 17, 1, 30, 0, 0, loc)
	if got := NormalizeDate(instant); got != "2024-07-16" {
		t.Fatalf("expected UTC calendar date 2024-07-16, got %s", got)
	}
}

func TestDisplayNameForSeat(t *testing.T) {
	reg := Default()

	name, ok := reg.DisplayNameForSeat("th_vp")
	if !ok || name != "Token House" {
		t.Fatalf("expected Token House, got %q (%v)", name, ok)
	}
	if _, ok := reg.DisplayNameForSeat("unknown_seat"); ok {
		t.Fatal("expected unknown seat to be unmapped")
	}
}

func TestEpochDefaultAndLookup(t *testing.T) {
	reg := Default()

	epoch, ok := reg.Epoch("")
	if !ok || epoch.ID != EpochSeason7 {
		t.Fatalf("expected default epoch %s, got %q (%v)", EpochSeason7, epoch.ID, ok)
	}
	if _, ok := reg.Epoch("season-99"); ok {
		t.Fatal("expected unregistered epoch to miss")
	}
	ids := reg.EpochIDs()
	if len(ids) != 2 || ids[0] != EpochSeason6 || ids[1] != EpochSeason7 {
		t.Fatalf("unexpected epoch ids %v", ids)
	}
}

func TestNewRejectsDuplicateSeatKey(t *testing.T) {
	mappings := []entities.CouncilMapping{
		{DisplayName: "A", SeatKeys: []string{"shared"}},
		{DisplayName: "B", SeatKeys: []string{"shared"}},
	}
	_, err := New(mappings, nil, []entities.Epoch{{ID: "e"}}, "e")
	if err == nil {
		t.Fatal("expected duplicate seat key to be rejected")
	}
}

func TestNewRejectsOverlappingWindows(t *testing.T) {
	windows := []entities.ActivityWindow{
		{StartDate: "2024-01-01", EndDate: "2024-02-01"},
		{StartDate: "2024-02-01", EndDate: "2024-03-01"},
	}
	_, err := New(nil, windows, []entities.Epoch{{ID: "e"}}, "e")
	if err == nil {
		t.Fatal("expected overlapping windows to be rejected")
	}
}

func TestNewRejectsMissingDefaultEpoch(t *testing.T) {
	_, err := New(nil, nil, []entities.Epoch{{ID: "e"}}, "missing")
	if err == nil {
		t.Fatal("expected missing default epoch to be rejected")
	}
}
