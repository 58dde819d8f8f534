package middleware

import (
	"log/slog"
	"net/http"

	"medchain/internal/platform/config"
	platformredis "medchain/internal/platform/redis"
	"medchain/pkg/requestcontext"
)

// RequestLimiter applies a fixed-window per-caller request limit backed by
// Redis. Fail-open: when Redis is unreachable the request proceeds, since the
// limiter protects capacity, not correctness.
func RequestLimiter(client *platformredis.Client, cfg config.RateLimit, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			caller := requestcontext.Caller(ctx)
			key := "ratelimit:" + caller.String()
			if caller.IsNil() {
				key = "ratelimit:anon:" + r.RemoteAddr
			}

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(ctx, key, cfg.Window)
			}
			if count > int64(cfg.MaxRequests) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
