// Package requestid assigns each request a unique ID for log correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"pulseboard/pkg/requestcontext"
)

// Header carries the request ID back to the client for support tickets.
const Header = "X-Request-ID"

// Middleware reuses an inbound request ID when present, otherwise mints one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
