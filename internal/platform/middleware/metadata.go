package middleware

import (
	"net/http"

	"github.com/mssola/useragent"

	"medchain/pkg/requestcontext"
)

// ClientMetadata normalizes the client User-Agent into "Browser/OS" form and
// stores it in the request context. Read-access audit entries carry it so the
// activity feed can show which client platform viewed a record.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.UserAgent()
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		ua := useragent.New(raw)
		name, _ := ua.Browser()
		normalized := name
		if os := ua.OS(); os != "" {
			normalized = name + "/" + os
		}

		ctx := requestcontext.WithUserAgent(r.Context(), normalized)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
