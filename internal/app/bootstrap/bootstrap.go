package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	cpiengine "cpindex/contexts/governance/cpi-engine"
	graphadapter "cpindex/contexts/governance/cpi-engine/adapters/graph"
	mongoadapter "cpindex/contexts/governance/cpi-engine/adapters/mongo"
	cpiworkers "cpindex/contexts/governance/cpi-engine/application/workers"
	cpientities "cpindex/contexts/governance/cpi-engine/domain/entities"
	"cpindex/contexts/governance/cpi-engine/domain/registry"
	apikeyservice "cpindex/contexts/identity-access/apikey-service"
	apikeymemory "cpindex/contexts/identity-access/apikey-service/adapters/memory"
	apikeypostgres "cpindex/contexts/identity-access/apikey-service/adapters/postgres"
	redisadapter "cpindex/contexts/identity-access/apikey-service/adapters/redis"
	"cpindex/internal/platform/config"
	"cpindex/internal/platform/db"
	"cpindex/internal/platform/httpserver"
	"cpindex/internal/shared/ttlcache"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	mongo    *db.Mongo
	postgres *db.Postgres
	redis    *db.Redis
	logger   *slog.Logger
}

type WorkerApp struct {
	mongo           *db.Mongo
	refresher       cpiworkers.HistoricRefresher
	refreshInterval time.Duration
	logger          *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.MongoURI) == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, errors.New("REDIS_ADDR is required")
	}

	mongo, err := db.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		_ = mongo.Close()
		return nil, err
	}

	rdb, err := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		_ = mongo.Close()
		_ = pg.Close()
		return nil, err
	}

	snapshots := mongoadapter.NewRepository(mongo.Database, logger)
	cpiModule := cpiengine.NewModule(cpiengine.Dependencies{
		Snapshots:  snapshots,
		Historic:   snapshots,
		Delegation: graphadapter.NewClient(cfg.GraphURL, logger),
		Dates:      ttlcache.New[[]string](),
		Delegates:  ttlcache.New[[]cpientities.DelegateSnapshot](),
		Registry:   registry.Default(),
		CacheTTL:   cfg.CacheTTL,
		FanOut:     cfg.FanOutLimit,
		Logger:     logger,
	})

	apikeyModule := apikeyservice.NewModule(apikeyservice.Dependencies{
		Credentials: apikeypostgres.NewRepository(pg.DB, logger),
		Windows:     redisadapter.NewStore(rdb.Client, logger),
		Clock:       apikeymemory.SystemClock{},
		IDGen:       apikeymemory.UUIDGenerator{},
		Window:      cfg.RateLimitWindow,
		FailOpen:    cfg.RateLimitFailOpen,
		Logger:      logger,
	})

	server := httpserver.New(cpiModule, apikeyModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		mongo:    mongo,
		postgres: pg,
		redis:    rdb,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.MongoURI) == "" {
		return nil, errors.New("MONGO_URI is required")
	}

	mongo, err := db.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	snapshots := mongoadapter.NewRepository(mongo.Database, logger)
	module := cpiengine.NewModule(cpiengine.Dependencies{
		Snapshots: snapshots,
		Historic:  snapshots,
		Dates:     ttlcache.New[[]string](),
		Delegates: ttlcache.New[[]cpientities.DelegateSnapshot](),
		Registry:  registry.Default(),
		CacheTTL:  cfg.CacheTTL,
		FanOut:    cfg.FanOutLimit,
		Logger:    logger,
	})

	return &WorkerApp{
		mongo: mongo,
		refresher: cpiworkers.HistoricRefresher{
			Series:   module.Handler.Series,
			Historic: snapshots,
			Logger:   logger,
		},
		refreshInterval: cfg.HistoricRefreshInterval,
		logger:          logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	var firstErr error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if a.postgres != nil {
		if err := a.postgres.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"refresh_interval", w.refreshInterval.String(),
	)

	for {
		if err := w.refresher.RunOnce(ctx); err != nil {
			w.logger.Error("historic refresh failed",
				"event", "bootstrap_worker_refresh_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.mongo != nil {
		return w.mongo.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
