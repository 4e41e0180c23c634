package httpadapter

import (
	"context"
	"log/slog"

	"cpindex/contexts/governance/cpi-engine/application/queries"
	"cpindex/contexts/governance/cpi-engine/domain/entities"
	httptransport "cpindex/contexts/governance/cpi-engine/transport/http"
)

type Handler struct {
	Series    queries.CPISeriesUseCase
	Simulated queries.SimulatedSeriesUseCase
	Historic  queries.HistoricUseCase
	Logger    *slog.Logger
}

func (h Handler) SeriesHandler(ctx context.Context, epochID string) (httptransport.SeriesResponse, error) {
	results, err := h.Series.Series(ctx, epochID)
	if err != nil {
		return httptransport.SeriesResponse{}, err
	}
	return httptransport.SeriesResponse{
		Results: mapDateResults(results),
	}, nil
}

func (h Handler) SimulateHandler(
	ctx context.Context,
	delegatorAddress string,
	toAddress string,
) (httptransport.SimulatedSeriesResponse, error) {
	result, err := h.Simulated.Series(ctx, delegatorAddress, toAddress)
	if err != nil {
		return httptransport.SimulatedSeriesResponse{}, err
	}

	updates := make([]httptransport.AddressUpdateDTO, 0, len(result.UpdatedAddresses))
	for _, update := range result.UpdatedAddresses {
		updates = append(updates, httptransport.AddressUpdateDTO{
			Address:        update.Address,
			NewVotingPower: update.NewVotingPower,
		})
	}
	return httptransport.SimulatedSeriesResponse{
		Results:          mapDateResults(result.Results),
		UpdatedAddresses: updates,
	}, nil
}

func (h Handler) HistoricAllHandler(ctx context.Context) (httptransport.HistoricResponse, error) {
	results, err := h.Historic.All(ctx)
	if err != nil {
		return httptransport.HistoricResponse{}, err
	}
	return httptransport.HistoricResponse{
		Results: mapDateResults(results),
	}, nil
}

func (h Handler) HistoricByDateHandler(ctx context.Context, date string) (httptransport.DateResultDTO, error) {
	result, err := h.Historic.ByDate(ctx, date)
	if err != nil {
		return httptransport.DateResultDTO{}, err
	}
	return mapDateResult(result), nil
}

func mapDateResults(results []entities.DateResult) []httptransport.DateResultDTO {
	mapped := make([]httptransport.DateResultDTO, 0, len(results))
	for _, result := range results {
		mapped = append(mapped, mapDateResult(result))
	}
	return mapped
}

func mapDateResult(result entities.DateResult) httptransport.DateResultDTO {
	return httptransport.DateResultDTO{
		Date:           result.Date,
		CPI:            result.CPI,
		ActiveCouncils: result.ActiveCouncils,
		CouncilPercentages: httptransport.CouncilPercentagesDTO{
			Active:              result.CouncilPercentages.Active,
			Inactive:            result.CouncilPercentages.Inactive,
			Redistributed:       result.CouncilPercentages.Redistributed,
			OriginalPercentages: result.CouncilPercentages.OriginalPercentages,
		},
		ActiveRedistributed: result.ActiveRedistributed,
		Filename:            result.Filename,
	}
}
