package auth

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/despesas/pkg/debug"
	"github.com/rhuss/despesas/pkg/observability"
	"github.com/rhuss/despesas/pkg/storage"
)

const (
	unauthorizedBody    = `{"code":401,"message":"Unauthorized"}`
	tooManyRequestsBody = `{"code":429,"message":"Rate limit exceeded"}`
	internalErrorBody   = `{"code":500,"message":"Internal server error"}`
)

// Middleware creates HTTP middleware from an AuthChain and optional RateLimiter.
// It checks the bypass list, runs authentication, injects the identity and
// owner scope into the request context, and optionally enforces rate limits.
// A rejected request never reaches next.
func Middleware(chain *AuthChain, limiter RateLimiter, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Authenticate(r.Context(), r)

			if result.Decision != Yes || result.Identity == nil {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				observability.GateDecisionsTotal.WithLabelValues("rejected").Inc()
				writeJSONError(w, http.StatusUnauthorized, unauthorizedBody)
				return
			}

			if result.Identity.ID <= 0 {
				slog.Error("authenticator returned identity without a user id")
				writeJSONError(w, http.StatusInternalServerError, internalErrorBody)
				return
			}

			debug.Log("auth", "authentication succeeded",
				"user_id", result.Identity.ID,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			if limiter != nil {
				if err := limiter.Allow(r.Context(), result.Identity); err != nil {
					slog.Warn("rate limit exceeded",
						"user_id", result.Identity.ID,
						"role", result.Identity.Role,
					)
					observability.RateLimitRejectedTotal.WithLabelValues(string(result.Identity.Role)).Inc()
					writeJSONError(w, http.StatusTooManyRequests, tooManyRequestsBody)
					return
				}
			}

			observability.GateDecisionsTotal.WithLabelValues("allowed").Inc()

			ctx := SetIdentity(r.Context(), result.Identity)
			ctx = storage.SetOwner(ctx, result.Identity.ID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/auth/login", "/healthz", "/metrics"}

func writeJSONError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
