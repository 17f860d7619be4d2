package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"ledger_import/internal/logger"
)

// TokenMiddleware guards routes with one shared API token, taken from the
// Authorization bearer header or the `token` query parameter. An empty
// token disables the check.
func TokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// allow OPTIONS (CORS preflight) to pass through
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			got := bearer(r.Header.Get("Authorization"))
			if got == "" {
				got = r.URL.Query().Get("token")
			}

			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log := logger.Component(r.Context(), "auth")
				log.Warn().
					Str("path", r.URL.Path).
					Str("remote", r.RemoteAddr).
					Msg("rejected request")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearer(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
