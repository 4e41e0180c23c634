package queries

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	application "cpindex/contexts/governance/cpi-engine/application"
	"cpindex/contexts/governance/cpi-engine/domain/cpi"
	"cpindex/contexts/governance/cpi-engine/domain/entities"
	domainerrors "cpindex/contexts/governance/cpi-engine/domain/errors"
	"cpindex/contexts/governance/cpi-engine/domain/registry"
	"cpindex/contexts/governance/cpi-engine/ports"
)

const (
	datesCacheKey       = "uniqueDates"
	delegatesCachePrefx = "delegateData_"
)

// CPISeriesUseCase computes the per-date concentration series for one
// percentage epoch. Per-date computations are independent and fan out on
// a bounded group; only the final assembled sequence is ordered.
type CPISeriesUseCase struct {
	Snapshots ports.SnapshotStore
	Dates     ports.DatesCache
	Delegates ports.DelegatesCache
	Registry  *registry.Registry
	CacheTTL  time.Duration
	FanOut    int
	Logger    *slog.Logger
}

// Series returns the full per-date sequence (minus dates with zero
// delegate records) or an explicit error — never a partial result.
func (uc CPISeriesUseCase) Series(ctx context.Context, epochID string) ([]entities.DateResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	epoch, ok := uc.Registry.Epoch(epochID)
	if !ok {
		return nil, domainerrors.ErrUnknownEpoch
	}

	dates, err := uc.snapshotDates(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		logger.Warn("no snapshot dates in store",
			"event", "cpi_series_no_snapshots",
			"module", "governance/cpi-engine",
			"layer", "application",
		)
		return nil, domainerrors.ErrNoSnapshots
	}

	results := make([]*entities.DateResult, len(dates))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(uc.fanOut())

	for i, date := range dates {
		i, date := i, date
		group.Go(func() error {
			delegates, err := uc.delegatesForDate(groupCtx, date)
			if err != nil {
				return err
			}
			if len(delegates) == 0 {
				// Data-quality guard: dates with no records are dropped
				// from the sequence, not emitted as zero entries.
				logger.Warn("no delegate records for date",
					"event", "cpi_series_empty_date",
					"module", "governance/cpi-engine",
					"layer", "application",
					"date", date,
				)
				return nil
			}
			result := BuildDateResult(uc.Registry, date, delegates, epoch.BasePercentages)
			results[i] = &result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	assembled := make([]entities.DateResult, 0, len(results))
	for _, result := range results {
		if result != nil {
			assembled = append(assembled, *result)
		}
	}
	sort.Slice(assembled, func(i, j int) bool {
		return assembled[i].Date < assembled[j].Date
	})

	logger.Info("cpi series computed",
		"event", "cpi_series_computed",
		"module", "governance/cpi-engine",
		"layer", "application",
		"epoch", epoch.ID,
		"dates", len(dates),
		"results", len(assembled),
	)
	return assembled, nil
}

func (uc CPISeriesUseCase) fanOut() int {
	if uc.FanOut > 0 {
		return uc.FanOut
	}
	return 8
}

func (uc CPISeriesUseCase) snapshotDates(ctx context.Context) ([]string, error) {
	if uc.Dates != nil {
		if cached, ok := uc.Dates.Get(datesCacheKey); ok {
			return cached, nil
		}
	}
	dates, err := uc.Snapshots.ListSnapshotDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshot dates: %w", err)
	}
	if uc.Dates != nil {
		uc.Dates.Set(datesCacheKey, dates, uc.CacheTTL)
	}
	return dates, nil
}

func (uc CPISeriesUseCase) delegatesForDate(ctx context.Context, date string) ([]entities.DelegateSnapshot, error) {
	key := delegatesCachePrefx + date
	if uc.Delegates != nil {
		if cached, ok := uc.Delegates.Get(key); ok {
			return cached, nil
		}
	}
	delegates, err := uc.Snapshots.DelegatesForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("delegates for %s: %w", date, err)
	}
	if uc.Delegates != nil {
		uc.Delegates.Set(key, delegates, uc.CacheTTL)
	}
	return delegates, nil
}

// BuildDateResult runs the resolver → redistribution → aggregation
// pipeline for one date and assembles the externally observable record.
func BuildDateResult(
	reg *registry.Registry,
	date string,
	delegates []entities.DelegateSnapshot,
	basePercentages map[string]float64,
) entities.DateResult {
	activeSeats := reg.ResolveActiveSeats(date)
	redistribution := cpi.Redistribute(activeSeats, basePercentages, reg)
	index := cpi.Compute(delegates, activeSeats, redistribution.Redistributed, reg)

	activeRedistributed := make(map[string]float64, len(redistribution.Redistributed))
	for council, percent := range redistribution.Redistributed {
		if reg.CouncilActive(council, activeSeats) {
			activeRedistributed[council] = percent
		}
	}

	return entities.DateResult{
		Date:                date,
		CPI:                 index,
		ActiveCouncils:      activeSeats,
		CouncilPercentages:  redistribution,
		ActiveRedistributed: activeRedistributed,
		Filename:            date,
	}
}
