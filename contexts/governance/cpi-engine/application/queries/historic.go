package queries

import (
	"context"
	"strings"

	"cpindex/contexts/governance/cpi-engine/domain/entities"
	domainerrors "cpindex/contexts/governance/cpi-engine/domain/errors"
	"cpindex/contexts/governance/cpi-engine/ports"
)

// HistoricUseCase serves the persisted index series.
type HistoricUseCase struct {
	Historic ports.HistoricStore
}

// All returns every persisted record, newest first.
func (uc HistoricUseCase) All(ctx context.Context) ([]entities.DateResult, error) {
	return uc.Historic.List(ctx)
}

// ByDate returns the record for one calendar date.
func (uc HistoricUseCase) ByDate(ctx context.Context, date string) (entities.DateResult, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return entities.DateResult{}, domainerrors.ErrDateNotFound
	}
	return uc.Historic.ByDate(ctx, date)
}
