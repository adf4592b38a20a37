package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hugh/recipe-api/internal/auth"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Accepted Authorization schemes. "Token" is kept for clients of the
// token-auth style API.
var authSchemes = []string{"Bearer ", "Token "}

// Auth validates the token and checks that its account still exists and is
// active.
func Auth(tokens auth.TokenService, users auth.UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromHeader(r.Header.Get("Authorization"))
			if token == "" {
				handleUnauthorized(w, "Authentication credentials were not provided")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				handleUnauthorized(w, "Invalid or expired token")
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, auth.ErrUserNotFound) {
					handleUnauthorized(w, "User not found")
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
				return
			}
			if !user.IsActive {
				handleUnauthorized(w, "User inactive or deleted")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user.ID)))
		})
	}
}

func tokenFromHeader(header string) string {
	for _, scheme := range authSchemes {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			return strings.TrimSpace(header[len(scheme):])
		}
	}
	return ""
}

func handleUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Helper functions to extract values from context
func GetUserID(ctx context.Context) uint {
	if id, ok := ctx.Value(UserIDKey).(uint); ok {
		return id
	}
	return 0
}

// WithUser returns ctx carrying an authenticated user id, as Auth would set it.
func WithUser(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
