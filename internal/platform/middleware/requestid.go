package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"medchain/pkg/requestcontext"
)

// RequestIDHeader carries the correlation ID on responses and, when a client
// supplies one, on requests.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a correlation ID and echoes it on the
// response. Downstream logging and audit entries carry the same ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request's correlation ID. Kept for handler
// call-site symmetry with the other context accessors.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
