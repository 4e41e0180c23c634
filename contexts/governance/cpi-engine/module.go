package cpiengine

import (
	"log/slog"
	"time"

	httpadapter "cpindex/contexts/governance/cpi-engine/adapters/http"
	"cpindex/contexts/governance/cpi-engine/adapters/memory"
	"cpindex/contexts/governance/cpi-engine/application/queries"
	"cpindex/contexts/governance/cpi-engine/domain/entities"
	"cpindex/contexts/governance/cpi-engine/domain/registry"
	"cpindex/contexts/governance/cpi-engine/ports"
	"cpindex/internal/shared/ttlcache"
)

type Module struct {
	Handler  httpadapter.Handler
	Registry *registry.Registry
	Store    *memory.Store
}

type Dependencies struct {
	Snapshots  ports.SnapshotStore
	Historic   ports.HistoricStore
	Delegation ports.DelegationSource
	Dates      ports.DatesCache
	Delegates  ports.DelegatesCache
	Registry   *registry.Registry
	CacheTTL   time.Duration
	FanOut     int
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	series := queries.CPISeriesUseCase{
		Snapshots: deps.Snapshots,
		Dates:     deps.Dates,
		Delegates: deps.Delegates,
		Registry:  deps.Registry,
		CacheTTL:  deps.CacheTTL,
		FanOut:    deps.FanOut,
		Logger:    deps.Logger,
	}
	simulated := queries.SimulatedSeriesUseCase{
		Snapshots:  deps.Snapshots,
		Dates:      deps.Dates,
		Delegates:  deps.Delegates,
		Delegation: deps.Delegation,
		Registry:   deps.Registry,
		CacheTTL:   deps.CacheTTL,
		FanOut:     deps.FanOut,
		Logger:     deps.Logger,
	}
	historic := queries.HistoricUseCase{
		Historic: deps.Historic,
	}
	return Module{
		Handler: httpadapter.Handler{
			Series:    series,
			Simulated: simulated,
			Historic:  historic,
			Logger:    deps.Logger,
		},
		Registry: deps.Registry,
	}
}

// NewInMemoryModule wires the module against the in-memory store for
// tests and local runs.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Snapshots:  store,
		Historic:   store,
		Delegation: store,
		Dates:      ttlcache.New[[]string](),
		Delegates:  ttlcache.New[[]entities.DelegateSnapshot](),
		Registry:   registry.Default(),
		CacheTTL:   5 * time.Minute,
		FanOut:     4,
		Logger:     logger,
	})
	module.Store = store
	return module
}
