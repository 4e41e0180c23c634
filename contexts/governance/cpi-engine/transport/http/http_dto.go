package http

type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type CouncilPercentagesDTO struct {
	Active              float64            `json:"active"`
	Inactive            float64            `json:"inactive"`
	Redistributed       map[string]float64 `json:"redistributed"`
	OriginalPercentages map[string]float64 `json:"originalPercentages"`
}

type DateResultDTO struct {
	Date                string                `json:"date"`
	CPI                 float64               `json:"cpi"`
	ActiveCouncils      []string              `json:"activeCouncils"`
	CouncilPercentages  CouncilPercentagesDTO `json:"councilPercentages"`
	ActiveRedistributed map[string]float64    `json:"activeRedistributed"`
	Filename            string                `json:"filename"`
}

type SeriesResponse struct {
	Results []DateResultDTO `json:"results"`
}

type AddressUpdateDTO struct {
	Address        string `json:"address"`
	NewVotingPower string `json:"newVotingPower"`
}

type SimulatedSeriesResponse struct {
	Results          []DateResultDTO    `json:"results"`
	UpdatedAddresses []AddressUpdateDTO `json:"updatedAddresses"`
}

type HistoricResponse struct {
	Results []DateResultDTO `json:"results"`
}
