package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	application "cpindex/contexts/governance/cpi-engine/application"
	"cpindex/contexts/governance/cpi-engine/application/queries"
	domainerrors "cpindex/contexts/governance/cpi-engine/domain/errors"
	"cpindex/contexts/governance/cpi-engine/ports"
)

// HistoricRefresher recomputes the live series and upserts it into the
// persisted historic store. Polled from the worker process.
type HistoricRefresher struct {
	Series   queries.CPISeriesUseCase
	Historic ports.HistoricStore
	Logger   *slog.Logger
}

func (w HistoricRefresher) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)

	results, err := w.Series.Series(ctx, "")
	if err != nil {
		if errors.Is(err, domainerrors.ErrNoSnapshots) {
			logger.Warn("historic refresh skipped, no snapshots",
				"event", "historic_refresh_skipped",
				"module", "governance/cpi-engine",
				"layer", "application",
			)
			return nil
		}
		return fmt.Errorf("compute series for refresh: %w", err)
	}

	for _, result := range results {
		if err := w.Historic.Upsert(ctx, result); err != nil {
			return fmt.Errorf("upsert historic record %s: %w", result.Date, err)
		}
	}

	logger.Info("historic series refreshed",
		"event", "historic_refresh_completed",
		"module", "governance/cpi-engine",
		"layer", "application",
		"records", len(results),
	)
	return nil
}
