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

// windowKey prefixes the shared-store counter key for one credential.
func windowKey(key string) string {
	return "rate-limit:" + key
}

// AdmitResult carries the resolved credential alongside the limiter
// decision so the transport can emit telemetry headers either way.
type AdmitResult struct {
	Key      entities.APIKey
	Decision entities.Decision
}

// AdmitUseCase gates one request: credential lookup, then an atomic
// fixed-window counter check. Unknown or inactive credentials are
// rejected before any counter is touched.
//
// When the window store is unreachable the behavior follows FailOpen:
// admit with optimistic telemetry (availability over strict enforcement)
// or reject with a diagnostic error for test/diagnostic wiring.
type AdmitUseCase struct {
	Credentials ports.CredentialRepository
	Windows     ports.RateLimitStore
	Clock       ports.Clock
	Window      time.Duration
	FailOpen    bool
	Logger      *slog.Logger
}

func (uc AdmitUseCase) Admit(ctx context.Context, rawKey string) (AdmitResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return AdmitResult{}, domainerrors.ErrAPIKeyRequired
	}

	credential, found, err := uc.Credentials.FindActiveByKey(ctx, rawKey)
	if err != nil {
		return AdmitResult{}, fmt.Errorf("lookup credential: %w", err)
	}
	if !found {
		return AdmitResult{}, domainerrors.ErrAPIKeyInvalid
	}

	now := uc.now()
	if err := uc.Credentials.TouchLastUsed(ctx, credential.Key, now); err != nil {
		logger.Warn("last-used touch failed",
			"event", "apikey_touch_failed",
			"module", "identity-access/apikey-service",
			"layer", "application",
			"owner", credential.Owner,
			"error", err.Error(),
		)
	}

	window := uc.window()
	state, err := uc.Windows.IncrWindow(ctx, windowKey(credential.Key), window)
	if err != nil {
		if uc.FailOpen {
			logger.Error("rate limit store unreachable, failing open",
				"event", "rate_limit_fail_open",
				"module", "identity-access/apikey-service",
				"layer", "application",
				"owner", credential.Owner,
				"error", err.Error(),
			)
			return AdmitResult{
				Key: credential,
				Decision: entities.Decision{
					Allowed:   true,
					Limit:     credential.RateLimit,
					Remaining: credential.RateLimit,
					Reset:     now.Add(window).Unix(),
				},
			}, nil
		}
		return AdmitResult{}, fmt.Errorf("%w: %v", domainerrors.ErrLimiterUnavailable, err)
	}

	ttl := state.TTL
	if ttl <= 0 {
		ttl = window
	}
	reset := now.Add(ttl).Unix()

	if state.Count > int64(credential.RateLimit) {
		logger.Warn("rate limit exceeded",
			"event", "rate_limit_exceeded",
			"module", "identity-access/apikey-service",
			"layer", "application",
			"owner", credential.Owner,
			"count", state.Count,
			"limit", credential.RateLimit,
		)
		return AdmitResult{
			Key: credential,
			Decision: entities.Decision{
				Allowed:    false,
				Count:      state.Count,
				Limit:      credential.RateLimit,
				Remaining:  0,
				Reset:      reset,
				RetryAfter: int64(ttl.Seconds()),
			},
		}, nil
	}

	return AdmitResult{
		Key: credential,
		Decision: entities.Decision{
			Allowed:   true,
			Count:     state.Count,
			Limit:     credential.RateLimit,
			Remaining: credential.RateLimit - int(state.Count),
			Reset:     reset,
		},
	}, nil
}

func (uc AdmitUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now()
	}
	return time.Now()
}

func (uc AdmitUseCase) window() time.Duration {
	if uc.Window > 0 {
		return uc.Window
	}
	return 60 * time.Second
}
