package wire

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"account-service/pkg/clock"
	"account-service/pkg/ratelimit"
	"account-service/pkg/utils"
)

var ErrRedisRequired = errors.New("redis rate-limit driver selected without a redis client")

type limiters struct {
	login ratelimit.Limiter
	otp   ratelimit.Limiter
}

func newLimiters(rdb *redis.Client, config *utils.Config, clk clock.Clocker) (*limiters, error) {
	cfg := config.RateLimit
	loginOpts := ratelimit.Options{Window: cfg.LoginWindow, MaxAttempts: cfg.LoginMax, Prefix: "ratelimit:"}
	otpOpts := ratelimit.Options{Window: cfg.OTPWindow, MaxAttempts: cfg.OTPMax, Prefix: "ratelimit:"}

	switch cfg.Driver {
	case "", "memory":
		return &limiters{
			login: ratelimit.NewMemory(loginOpts, clk),
			otp:   ratelimit.NewMemory(otpOpts, clk),
		}, nil
	case "redis":
		if rdb == nil {
			return nil, ErrRedisRequired
		}
		return &limiters{
			login: ratelimit.NewRedis(rdb, loginOpts, clk),
			otp:   ratelimit.NewRedis(rdb, otpOpts, clk),
		}, nil
	default:
		return nil, fmt.Errorf("unknown rate-limit driver %q", cfg.Driver)
	}
}

func minutes(d time.Duration) int {
	if d <= 0 {
		return int(ratelimit.DefaultWindow / time.Minute)
	}
	return int(d / time.Minute)
}
