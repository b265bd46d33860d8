package middleware

import (
	"errors"
	"net/http"
	"strings"

	"calculations-api/internal/auth"
	"calculations-api/internal/models"
	"calculations-api/internal/storage"
)

// UserHandler is a protected handler. The resolved user arrives as an explicit
// argument rather than through the request context.
type UserHandler func(w http.ResponseWriter, r *http.Request, user *models.User)

// RequireUser verifies the bearer token, resolves the user it names and hands
// both request and user to next. Missing or invalid tokens and vanished users
// all short-circuit with 401 before any business logic runs.
func RequireUser(tokens *auth.Service, store storage.Store, next UserHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, `{"error": "Authorization header required"}`, http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, `{"error": "Invalid authorization header"}`, http.StatusUnauthorized)
			return
		}

		username, err := tokens.Verify(parts[1])
		if err != nil {
			http.Error(w, `{"error": "Invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		user, err := store.GetUserByUsername(r.Context(), username)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, `{"error": "Invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			http.Error(w, `{"error": "Internal server error"}`, http.StatusInternalServerError)
			return
		}

		next(w, r, user)
	}
}
