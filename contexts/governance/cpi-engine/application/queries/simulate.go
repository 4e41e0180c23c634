package queries

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	application "cpindex/contexts/governance/cpi-engine/application"
	"cpindex/contexts/governance/cpi-engine/domain/cpi"
	"cpindex/contexts/governance/cpi-engine/domain/entities"
	domainerrors "cpindex/contexts/governance/cpi-engine/domain/errors"
	"cpindex/contexts/governance/cpi-engine/domain/registry"
	"cpindex/contexts/governance/cpi-engine/ports"
)

// weiScale converts subgraph wei balances to whole-token units.
var weiScale = decimal.New(1, 18)

// SimulatedSeriesUseCase re-scores the series under a hypothetical
// redelegation: the delegator's power moves from their current delegate to
// a chosen recipient, and every delegate's proportional power is
// renormalized before aggregation. The stored snapshots are never mutated.
type SimulatedSeriesUseCase struct {
	Snapshots  ports.SnapshotStore
	Dates      ports.DatesCache
	Delegates  ports.DelegatesCache
	Delegation ports.DelegationSource
	Registry   *registry.Registry
	CacheTTL   time.Duration
	FanOut     int
	Logger     *slog.Logger
}

// SimulatedSeriesResult carries the re-scored sequence plus the
// substitutions that produced it.
type SimulatedSeriesResult struct {
	Results          []entities.DateResult
	UpdatedAddresses []entities.AddressUpdate
}

func (uc SimulatedSeriesUseCase) Series(
	ctx context.Context,
	delegatorAddress string,
	toAddress string,
) (SimulatedSeriesResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	delegator := strings.ToLower(strings.TrimSpace(delegatorAddress))
	to := strings.ToLower(strings.TrimSpace(toAddress))
	if delegator == "" || to == "" {
		return SimulatedSeriesResult{}, domainerrors.ErrAddressRequired
	}

	updates, err := uc.resolveShift(ctx, delegator, to)
	if err != nil {
		return SimulatedSeriesResult{}, err
	}

	// The simulated endpoint historically scores against the season-6
	// percentage table.
	epoch, ok := uc.Registry.Epoch(registry.EpochSeason6)
	if !ok {
		return SimulatedSeriesResult{}, domainerrors.ErrUnknownEpoch
	}

	dates, err := uc.snapshotDates(ctx)
	if err != nil {
		return SimulatedSeriesResult{}, err
	}
	if len(dates) == 0 {
		return SimulatedSeriesResult{}, domainerrors.ErrNoSnapshots
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
			shifted := cpi.ShiftDelegation(delegates, updates)
			if len(shifted) == 0 {
				return nil
			}
			result := BuildDateResult(uc.Registry, date, shifted, epoch.BasePercentages)
			results[i] = &result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return SimulatedSeriesResult{}, err
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

	logger.Info("simulated cpi series computed",
		"event", "cpi_simulated_series_computed",
		"module", "governance/cpi-engine",
		"layer", "application",
		"delegator", delegator,
		"to", to,
		"results", len(assembled),
	)
	return SimulatedSeriesResult{
		Results:          assembled,
		UpdatedAddresses: updates,
	}, nil
}

// resolveShift computes the two voting-power substitutions: the current
// delegate loses the delegator's power, the recipient gains it.
func (uc SimulatedSeriesUseCase) resolveShift(
	ctx context.Context,
	delegator string,
	to string,
) ([]entities.AddressUpdate, error) {
	from, err := uc.Delegation.CurrentDelegate(ctx, delegator)
	if err != nil {
		return nil, fmt.Errorf("resolve current delegate: %w", err)
	}
	from = strings.ToLower(strings.TrimSpace(from))
	if from == "" {
		return nil, domainerrors.ErrDelegateNotFound
	}

	delegatorPower, err := uc.tokenPower(ctx, delegator)
	if err != nil {
		return nil, err
	}
	fromPower, err := uc.tokenPower(ctx, from)
	if err != nil {
		return nil, err
	}
	toPower, err := uc.tokenPower(ctx, to)
	if err != nil {
		return nil, err
	}

	return []entities.AddressUpdate{
		{Address: from, NewVotingPower: fromPower.Sub(delegatorPower).String()},
		{Address: to, NewVotingPower: toPower.Add(delegatorPower).String()},
	}, nil
}

// tokenPower fetches an address's live voting power and scales the wei
// string down to whole tokens. Unknown addresses read as zero.
func (uc SimulatedSeriesUseCase) tokenPower(ctx context.Context, address string) (decimal.Decimal, error) {
	raw, err := uc.Delegation.VotingPower(ctx, address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("voting power for %s: %w", address, err)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, nil
	}
	return value.Div(weiScale), nil
}

func (uc SimulatedSeriesUseCase) fanOut() int {
	if uc.FanOut > 0 {
		return uc.FanOut
	}
	return 8
}

func (uc SimulatedSeriesUseCase) snapshotDates(ctx context.Context) ([]string, error) {
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

func (uc SimulatedSeriesUseCase) delegatesForDate(ctx context.Context, date string) ([]entities.DelegateSnapshot, error) {
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
