// Package middleware holds chi-compatible HTTP middleware shared across the
// gateway's HTTP front.
package middleware

import (
	"net/http"
	"strings"

	"github.com/harborlabs/boost/internal/httputil"
)

// BearerAuth builds a middleware that accepts any token present in keys.
// An empty key set disables auth entirely (every request passes through),
// matching the gateway's "no API key configured" posture.
func BearerAuth(keys []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			allowed[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				httputil.ErrorWithCode(w, http.StatusForbidden, "missing authorization header")
				return
			}
			if _, ok := allowed[token]; !ok {
				httputil.ErrorWithCode(w, http.StatusForbidden, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(h)
}
