package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"account-service/pkg/clock"
	"account-service/pkg/ratelimit"
	"account-service/pkg/utils"
)

// RateLimitMessage is the login 429 text for a window of the given minutes.
func RateLimitMessage(windowMinutes int) string {
	return fmt.Sprintf("Too many login attempts from this IP, please try again after %d minutes.", windowMinutes)
}

// OTPRateLimitMessage is the 429 text for the OTP endpoints.
func OTPRateLimitMessage(windowMinutes int) string {
	return fmt.Sprintf("Too many OTP requests from this IP, please try again after %d minutes.", windowMinutes)
}

// RateLimit counts every request against the client address, namespaced by
// scope. Limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter, scope, message string, clk clock.Clocker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientIP(r)

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error("Rate limiter unavailable, allowing request",
					zap.Error(err),
					zap.String("scope", scope),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retryAfter := int(math.Ceil(res.RetryAfter(clk.Now()).Seconds()))
				h.Set("Retry-After", strconv.Itoa(retryAfter))

				logger.Warn("Rate limit exceeded",
					zap.String("scope", scope),
					zap.String("ip", clientIP(r)),
					zap.Int("retry_after_seconds", retryAfter),
				)
				utils.ResponseTooManyRequests(w, message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. chi's RealIP runs first and
// has already replaced it with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
