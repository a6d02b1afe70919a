package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/equipdesk/backoffice/internal/domain"
)

type contextKey struct{}

// UserFromContext returns the authenticated user, or nil outside an
// authenticated request.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(contextKey{}).(*domain.User)
	return user
}

// Middleware rejects requests without a valid session cookie and puts
// the user on the request context for downstream handlers.
func Middleware(repo *Repository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				writeUnauthorized(w, "authentication required")
				return
			}

			user, err := repo.UserForToken(r.Context(), cookie.Value)
			if err != nil {
				switch {
				case errors.Is(err, ErrSessionExpired):
					writeUnauthorized(w, "session expired")
				case errors.Is(err, ErrInvalidCredentials):
					writeUnauthorized(w, "invalid session")
				default:
					logger.Error("failed to resolve session", "error", err)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, user)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
