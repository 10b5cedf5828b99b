package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/teamdraw/teamdraw-go/internal/api/apierr"
)

// AdminAuth creates middleware requiring the static admin bearer token.
// An empty configured token disables admin access entirely rather than
// allowing unauthenticated requests through.
func AdminAuth(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminToken == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			token := extractToken(r)
			if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the admin token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to query parameter for browser admin views
	return r.URL.Query().Get("admin_token")
}
