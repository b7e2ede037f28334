package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/af-corp/prism-enhance/internal/config"
	"github.com/af-corp/prism-enhance/internal/httputil"
	"github.com/af-corp/prism-enhance/internal/session"
	"github.com/af-corp/prism-enhance/internal/telemetry"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
	headerRetryAfter         = "Retry-After"
)

// Middleware returns chi middleware that enforces the caller's tier limit
// on every request passing through it. limits is a getter so hot reloads
// take effect without rebuilding the middleware chain.
func Middleware(limiter *Limiter, limits func() config.LimitsConfig, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get("X-Request-ID")

			caller, ok := session.CallerFromContext(r.Context())
			if !ok {
				// No resolved caller. Only reachable on routes outside the
				// session.Resolve chain; let those pass unmetered.
				next.ServeHTTP(w, r)
				return
			}

			cfg := limits()
			tier := caller.Tier()
			limit := tier.Limit(cfg)

			decision := limiter.Admit(r.Context(), caller.RateID(), r.URL.Path, limit, cfg.Period)

			w.Header().Set(headerRateLimitLimit, strconv.Itoa(decision.Limit))
			w.Header().Set(headerRateLimitRemaining, strconv.Itoa(decision.Remaining))
			w.Header().Set(headerRateLimitReset, decision.ResetAt.Format(time.RFC3339))

			if !decision.Allowed {
				slog.Warn("rate limit exceeded",
					"request_id", reqID,
					"caller_id", caller.RateID(),
					"tier", tier,
					"path", CanonicalPath(r.URL.Path),
					"limit", limit,
				)
				if metrics != nil {
					metrics.RecordRateLimitHit(string(tier))
				}
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(decision.RetryAfter.Seconds())))
				httputil.WriteRateLimitError(w, reqID,
					fmt.Sprintf("Rate limit exceeded: %d requests per %d seconds", limit, int(cfg.Period.Seconds())))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
