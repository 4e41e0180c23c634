package queries

import (
	"context"
	"log/slog"
	"time"

	application "cpindex/contexts/identity-access/apikey-service/application"
	"cpindex/contexts/identity-access/apikey-service/domain/entities"
	"cpindex/contexts/identity-access/apikey-service/ports"
)

func windowKey(key string) string {
	return "rate-limit:" + key
}

// StatusUseCase reads a credential's remaining quota without consuming
// any of it. Store errors degrade to the optimistic default (full quota)
// rather than failing the caller.
type StatusUseCase struct {
	Windows ports.RateLimitStore
	Clock   ports.Clock
	Window  time.Duration
	Logger  *slog.Logger
}

func (uc StatusUseCase) Status(ctx context.Context, credential entities.APIKey) entities.Decision {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.now()
	window := uc.window()

	state, err := uc.Windows.Peek(ctx, windowKey(credential.Key))
	if err != nil {
		logger.Warn("rate limit status read failed, returning optimistic default",
			"event", "rate_limit_status_failed",
			"module", "identity-access/apikey-service",
			"layer", "application",
			"owner", credential.Owner,
			"error", err.Error(),
		)
		return entities.Decision{
			Allowed:   true,
			Limit:     credential.RateLimit,
			Remaining: credential.RateLimit,
			Reset:     now.Add(window).Unix(),
		}
	}

	ttl := state.TTL
	if ttl <= 0 {
		ttl = window
	}
	remaining := credential.RateLimit - int(state.Count)
	if remaining < 0 {
		remaining = 0
	}
	return entities.Decision{
		Allowed:   remaining > 0,
		Count:     state.Count,
		Limit:     credential.RateLimit,
		Remaining: remaining,
		Reset:     now.Add(ttl).Unix(),
	}
}

func (uc StatusUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now()
	}
	return time.Now()
}

func (uc StatusUseCase) window() time.Duration {
	if uc.Window > 0 {
		return uc.Window
	}
	return 60 * time.Second
}
