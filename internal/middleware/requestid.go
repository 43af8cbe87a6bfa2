package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/harborlabs/boost/internal/logging"
)

// RequestIDHeader is the header name used to propagate the request id,
// both inbound (if the caller already set one) and outbound.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns an X-Request-ID if the client didn't send one, echoes
// it back on the response, and stashes it on the request context so
// logging.WithContext can tag log lines for the lifetime of the request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := logging.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
