package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "cpindex/contexts/identity-access/apikey-service/application"
	"cpindex/contexts/identity-access/apikey-service/domain/entities"
	domainerrors "cpindex/contexts/identity-access/apikey-service/domain/errors"
	"cpindex/contexts/identity-access/apikey-service/ports"
)

// IssueKeyCommand mints a credential for an owner. RateLimit 0 selects
// the default.
type IssueKeyCommand struct {
	Owner     string
	RateLimit int
}

// IssueKeyUseCase mints a fresh key and replaces any existing keys held
// by the same owner, so one owner always has exactly one live credential.
type IssueKeyUseCase struct {
	Credentials ports.CredentialRepository
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func (uc IssueKeyUseCase) Issue(ctx context.Context, cmd IssueKeyCommand) (entities.APIKey, error) {
	logger := application.ResolveLogger(uc.Logger)

	owner := strings.TrimSpace(cmd.Owner)
	if owner == "" {
		return entities.APIKey{}, domainerrors.ErrOwnerRequired
	}

	rateLimit := cmd.RateLimit
	if rateLimit == 0 {
		rateLimit = entities.DefaultRateLimit
	}
	if rateLimit < entities.MinRateLimit || rateLimit > entities.MaxRateLimit {
		return entities.APIKey{}, domainerrors.ErrInvalidRateLimit
	}

	id, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.APIKey{}, fmt.Errorf("generate key id: %w", err)
	}

	credential := entities.APIKey{
		Key:       entities.KeyPrefix + id,
		Owner:     owner,
		RateLimit: rateLimit,
		IsActive:  true,
		CreatedAt: uc.now(),
	}
	if err := uc.Credentials.ReplaceForOwner(ctx, credential); err != nil {
		return entities.APIKey{}, fmt.Errorf("persist credential: %w", err)
	}

	logger.Info("api key issued",
		"event", "apikey_issued",
		"module", "identity-access/apikey-service",
		"layer", "application",
		"owner", owner,
		"rate_limit", rateLimit,
	)
	return credential, nil
}

func (uc IssueKeyUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now()
	}
	return time.Now()
}
