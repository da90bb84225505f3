package httpserver

import (
	"context"
	"net/http"
	"strings"

	"chatapi/internal/domain"
	"chatapi/internal/security"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// AuthMiddleware validates the Bearer access token and attaches the user to
// the request context. Missing, malformed, expired, and refresh-typed tokens
// are all rejected with 401.
func AuthMiddleware(tokens *security.TokenService, users domain.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "missing or invalid Authorization header"})
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			username, err := tokens.ParseAccess(tokenStr)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid or expired token"})
				return
			}

			user, err := users.GetByUsername(r.Context(), username)
			if err != nil {
				writeError(w, err)
				return
			}
			if user == nil || !user.IsActive {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid or expired token"})
				return
			}

			ctx := WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
