package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/account-be/internal/auth"
	"github.com/hongminglow/account-be/internal/http/respond"
	"github.com/hongminglow/account-be/internal/models"
)

type contextKey string

const userContextKey contextKey = "account-user"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", auth.ErrMissingToken
	}
	return parts[1], nil
}

// Authenticate requires a valid bearer token and attaches the user to the request context.
func Authenticate(authenticator Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}
			user, err := authenticator.Authenticate(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrUserNotFound):
				respond.Error(w, http.StatusUnauthorized, "User not found")
				return
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
				logger.WarnContext(r.Context(), "token validation failed", "error", err, "path", r.URL.Path)
				respond.Error(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			default:
				logger.ErrorContext(r.Context(), "authenticate request", "error", err, "path", r.URL.Path)
				respond.Error(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// AuthorizeAdmin lets the request through only when the authenticated user is an admin.
// It must run after Authenticate.
func AuthorizeAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin {
			respond.Error(w, http.StatusForbidden, "Not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user attached by Authenticate.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}
