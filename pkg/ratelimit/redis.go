package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"account-service/pkg/clock"
)

// Redis keeps fixed windows in Redis so that every replica shares the budget.
type Redis struct {
	client *redis.Client
	opts   Options
	clock  clock.Clocker
}

func NewRedis(client *redis.Client, opts Options, clk clock.Clocker) *Redis {
	if clk == nil {
		clk = clock.New()
	}
	if opts.Prefix == "" {
		opts.Prefix = "ratelimit:"
	}
	return &Redis{client: client, opts: opts.withDefaults(), clock: clk}
}

func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	fk := r.opts.Prefix + key

	var incr *redis.IntCmd
	var pttl *redis.DurationCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fk)
		pttl = pipe.PTTL(ctx, fk)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	ttl := pttl.Val()
	// a fresh counter has no expiry yet; the first attempt opens the window
	if ttl < 0 {
		if err := r.client.PExpire(ctx, fk, r.opts.Window).Err(); err != nil {
			return Result{}, fmt.Errorf("rate limit expire %s: %w", key, err)
		}
		ttl = r.opts.Window
	}

	return decide(int(incr.Val()), r.opts.MaxAttempts, r.clock.Now().Add(ttl)), nil
}

// Window returns the configured window length.
func (r *Redis) Window() time.Duration {
	return r.opts.Window
}

var (
	_ Limiter = (*Redis)(nil)
	_ Limiter = (*Memory)(nil)
)
