package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/medba/medba/internal/domain"
	"github.com/medba/medba/internal/ratelimit"
)

// RateLimit gates every request through the shared limiter before any
// handler runs, so denied requests never spawn a fetcher process.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := limiter.Admit(clientKey(r))
			if !decision.Allowed {
				retryAfter := int(decision.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error":%q}`, domain.KindRateLimited.Message())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the client: the first forwarded-for entry when a
// proxy is in front, else the transport-level remote address.
func clientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); strings.TrimSpace(forwarded) != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
