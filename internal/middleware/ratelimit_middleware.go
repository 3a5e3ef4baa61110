package middleware

import (
	"net"
	"net/http"

	"alias_gateway/internal/ratelimit"
	"alias_gateway/internal/utils"
)

// RateLimitMiddleware throttles a route per client address. Keys are the
// remote IP without port; proxies in front of the gateway are expected to
// preserve the client address.
func RateLimitMiddleware(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				key = r.RemoteAddr
			}

			if !limiter.Allow(r.Context(), key) {
				utils.RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
