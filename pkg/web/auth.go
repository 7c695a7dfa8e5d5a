package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/gocatalog/pkg/auth"
)

// XUserId is the header an upstream gateway uses to forward the authenticated caller.
const XUserId = "X-User-Id"

// HeaderAuth trusts the caller id forwarded by the gateway in the X-User-Id header.
// Requests without the header are rejected with 401.
func HeaderAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(XUserId))
			if userID == "" {
				logger.WarnContext(r.Context(), "Missing caller identity header")
				RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: missing X-User-Id header")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// BearerAuth verifies the JWT in the Authorization header and uses its `sub`
// claim as the caller id. Missing or invalid tokens are rejected with 401.
func BearerAuth(verifier auth.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				RespondError(w, logger, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				RespondError(w, logger, http.StatusUnauthorized, "Bearer token is required")
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "Token verification failed", "error", err)
				RespondError(w, logger, http.StatusUnauthorized, "Invalid token")
				return
			}

			subject, ok := token.Subject()
			if !ok || subject == "" {
				RespondError(w, logger, http.StatusUnauthorized, "Token has no subject")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), subject)))
		})
	}
}
