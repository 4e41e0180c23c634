// Package redisadapter implements the shared rate-limit window store on
// Redis so every API replica counts against the same fixed window.
package redisadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"cpindex/contexts/identity-access/apikey-service/ports"
)

// incrWindowScript increments the counter, arms the expiry only on the
// first increment of a window, and reads the TTL back in one atomic
// server-side step.
var incrWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

type Store struct {
	client *redis.Client
	logger *slog.Logger
}

func NewStore(client *redis.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		logger: logger,
	}
}

func (s *Store) IncrWindow(ctx context.Context, key string, window time.Duration) (ports.WindowState, error) {
	seconds := int64(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	raw, err := incrWindowScript.Run(ctx, s.client, []string{key}, seconds).Result()
	if err != nil {
		return ports.WindowState{}, s.logError("rate_limit_incr_failed", err)
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return ports.WindowState{}, s.logError("rate_limit_incr_failed",
			fmt.Errorf("unexpected script reply %T", raw))
	}

	count, _ := values[0].(int64)
	ttlSeconds, _ := values[1].(int64)
	state := ports.WindowState{Count: count}
	if ttlSeconds > 0 {
		state.TTL = time.Duration(ttlSeconds) * time.Second
	}
	return state, nil
}

func (s *Store) Peek(ctx context.Context, key string) (ports.WindowState, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return ports.WindowState{}, s.logError("rate_limit_peek_failed", err)
	}

	count, err := getCmd.Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.WindowState{}, nil
		}
		return ports.WindowState{}, s.logError("rate_limit_peek_failed", err)
	}

	state := ports.WindowState{Count: count}
	if ttl := ttlCmd.Val(); ttl > 0 {
		state.TTL = ttl
	}
	return state, nil
}

func (s *Store) logError(event string, err error) error {
	s.logger.Error("rate limit store operation failed",
		"event", event,
		"module", "identity-access/apikey-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	return err
}

var _ ports.RateLimitStore = (*Store)(nil)
