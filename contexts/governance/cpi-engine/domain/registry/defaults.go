package registry

import "cpindex/contexts/governance/cpi-engine/domain/entities"

// Epoch identifiers for the shipped base-percentage tables. Season 7 is
// the current table; season 6 is kept for historical re-scoring paths.
const (
	EpochSeason6 = "season-6"
	EpochSeason7 = "season-7"
)

// Default builds the registry with the canonical governance tables: one
// council mapping table, one window table, and the versioned percentage
// epochs. Historical per-epoch numbers must never be edited in place; add
// a new epoch instead.
func Default() *Registry {
	reg, err := New(defaultMappings(), defaultWindows(), defaultEpochs(), EpochSeason7)
	if err != nil {
		panic(err)
	}
	return reg
}

func defaultMappings() []entities.CouncilMapping {
	return []entities.CouncilMapping{
		{
			DisplayName: "Token House",
			SeatKeys:    []string{"th_vp"},
		},
		{
			DisplayName: "Citizen House",
			SeatKeys:    []string{"ch_vp_r2", "ch_vp_r3", "ch_vp_r4", "ch_vp_r5", "ch_vp_r6", "ch_vp_r7"},
		},
		{
			DisplayName: "Grants Council",
			SeatKeys:    []string{"gc_vp_s3", "gc_vp_s4", "gc_vp_s5", "gc_vp_s6", "gc_vp_s7"},
		},
		{
			DisplayName: "Grants Council (Milestone & Metrics Sub-committee)",
			SeatKeys:    []string{"gc_vp_mm_s5", "gc_vp_mm_s6"},
		},
		{
			DisplayName: "Grants Council (Operations Sub-committee)",
			SeatKeys:    []string{"gc_vp_op_s7"},
		},
		{
			DisplayName: "Security Council",
			SeatKeys:    []string{"sc_vp_s5", "sc_vp_s6", "sc_vp_s7"},
		},
		{
			DisplayName: "Code of Conduct Council",
			SeatKeys:    []string{"coc_vp_s5", "coc_vp_s6"},
		},
		{
			DisplayName: "Developer Advisory Board",
			SeatKeys:    []string{"dab_vp_s5", "dab_vp_s6", "dab_vp_s7"},
		},
		{
			DisplayName: "Milestone & Metrics Council",
			SeatKeys:    []string{"mmc_vp_s7"},
		},
	}
}

func defaultWindows() []entities.ActivityWindow {
	return []entities.ActivityWindow{
		{
			StartDate:   "2022-05-26",
			EndDate:     "2023-01-25",
			ActiveSeats: []string{"th_vp", "ch_vp_r2"},
		},
		{
			StartDate:   "2023-01-26",
			EndDate:     "2023-03-30",
			ActiveSeats: []string{"th_vp", "ch_vp_r2", "gc_vp_s3"},
		},
		{
			StartDate:   "2023-03-31",
			EndDate:     "2023-06-07",
			ActiveSeats: []string{"th_vp", "ch_vp_r3", "gc_vp_s3"},
		},
		{
			StartDate:   "2023-06-08",
			EndDate:     "2024-01-03",
			ActiveSeats: []string{"th_vp", "ch_vp_r3", "gc_vp_s4"},
		},
		{
			StartDate:   "2024-01-04",
			EndDate:     "2024-01-11",
			ActiveSeats: []string{"th_vp", "ch_vp_r3", "gc_vp_s5", "gc_vp_mm_s5", "sc_vp_s5", "coc_vp_s5", "dab_vp_s5"},
		},
		{
			StartDate:   "2024-01-12",
			EndDate:     "2024-06-26",
			ActiveSeats: []string{"th_vp", "ch_vp_r4", "gc_vp_s5", "gc_vp_mm_s5", "sc_vp_s5", "coc_vp_s5", "dab_vp_s5"},
		},
		{
			StartDate:   "2024-06-27",
			EndDate:     "2024-07-16",
			ActiveSeats: []string{"th_vp", "ch_vp_r4", "gc_vp_s6", "gc_vp_mm_s6", "sc_vp_s6", "coc_vp_s6", "dab_vp_s6"},
		},
		{
			StartDate:   "2024-07-17",
			EndDate:     "2024-10-21",
			ActiveSeats: []string{"th_vp", "ch_vp_r5", "gc_vp_s6", "gc_vp_mm_s6", "sc_vp_s6", "coc_vp_s6", "dab_vp_s6"},
		},
		{
			StartDate:   "2024-10-22",
			EndDate:     "2025-01-15",
			ActiveSeats: []string{"th_vp", "ch_vp_r6", "gc_vp_s6", "gc_vp_mm_s6", "sc_vp_s6", "coc_vp_s6", "dab_vp_s6"},
		},
		{
			StartDate:   "2025-01-16",
			EndDate:     "2025-07-23",
			ActiveSeats: []string{"th_vp", "ch_vp_r7", "gc_vp_s7", "gc_vp_op_s7", "sc_vp_s7", "dab_vp_s7", "mmc_vp_s7"},
		},
	}
}

func defaultEpochs() []entities.Epoch {
	return []entities.Epoch{
		{
			ID: EpochSeason6,
			BasePercentages: map[string]float64{
				"Token House":    32.33,
				"Citizen House":  34.59,
				"Grants Council": 10.15,
				"Grants Council (Milestone & Metrics Sub-committee)": 2.82,
				"Security Council":        12.78,
				"Code of Conduct Council": 4.32,
				"Developer Advisory Board": 3.01,
			},
		},
		{
			ID: EpochSeason7,
			BasePercentages: map[string]float64{
				"Token House":    33.73,
				"Citizen House":  36.08,
				"Grants Council": 10.59,
				"Grants Council (Operations Sub-committee)": 0.19,
				"Security Council":            13.33,
				"Code of Conduct Council":     0.00,
				"Developer Advisory Board":    3.14,
				"Milestone & Metrics Council": 2.94,
			},
		},
	}
}
