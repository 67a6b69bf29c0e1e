package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a fixed-window request limiter backed by Redis, so
// the count holds across instances. Redis being down never blocks traffic:
// the limiter fails open and logs.
type RateLimiter struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRateLimiter creates a rate limiter on the given Redis client.
func NewRateLimiter(client *redis.Client, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{client: client, logger: logger}
}

// Limit allows at most max requests per window per client IP and path. The
// first request of a window creates the counter and sets its expiry.
func (l *RateLimiter) Limit(window time.Duration, max int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}
			key := fmt.Sprintf("ratelimit:%s:%s", r.URL.Path, ip)

			ctx := r.Context()
			count, err := l.client.Incr(ctx, key).Result()
			if err != nil {
				l.logger.Warn("rate limiter unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := l.client.Expire(ctx, key, window).Err(); err != nil {
					l.logger.Warn("failed to set rate limit window", "key", key, "error", err)
				}
			}

			if count > int64(max) {
				ttl, err := l.client.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = window
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
				writeProblem(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
