package apikeyservice

import (
	"log/slog"
	"time"

	httpadapter "cpindex/contexts/identity-access/apikey-service/adapters/http"
	"cpindex/contexts/identity-access/apikey-service/adapters/memory"
	"cpindex/contexts/identity-access/apikey-service/application/commands"
	"cpindex/contexts/identity-access/apikey-service/application/queries"
	"cpindex/contexts/identity-access/apikey-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Credentials ports.CredentialRepository
	Windows     ports.RateLimitStore
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Window      time.Duration
	FailOpen    bool
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	admit := commands.AdmitUseCase{
		Credentials: deps.Credentials,
		Windows:     deps.Windows,
		Clock:       deps.Clock,
		Window:      deps.Window,
		FailOpen:    deps.FailOpen,
		Logger:      deps.Logger,
	}
	issue := commands.IssueKeyUseCase{
		Credentials: deps.Credentials,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	status := queries.StatusUseCase{
		Windows: deps.Windows,
		Clock:   deps.Clock,
		Window:  deps.Window,
		Logger:  deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Admit:      admit,
			IssueKey:   issue,
			Usage:      queries.UsageUseCase{Status: status},
			KeyByOwner: queries.KeyByOwnerUseCase{Credentials: deps.Credentials},
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store for
// tests and local runs.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Credentials: store,
		Windows:     store,
		Clock:       memory.SystemClock{},
		IDGen:       memory.UUIDGenerator{},
		Window:      60 * time.Second,
		FailOpen:    true,
		Logger:      logger,
	})
	module.Store = store
	return module
}
