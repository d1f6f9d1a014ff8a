package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/auth"
	"github.com/team-calendar/backend/internal/storage/models"
)

// SessionCookie is the cookie carrying the login token for browser clients.
const SessionCookie = "session"

type contextKey int

const (
	userKey contextKey = iota
	tokenKey
)

// Authenticator resolves a login token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid session token and stores the
// user in the request context.
func RequireAuth(authn Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Please log in to access this page.")
				return
			}

			user, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) {
					logger.Error("authenticating request", zap.Error(err))
					WriteError(w, http.StatusInternalServerError, ErrInternalError, "Failed to authenticate")
					return
				}
				WriteError(w, http.StatusUnauthorized, ErrUnauthorized, "Please log in to access this page.")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// CurrentUser returns the authenticated user, or nil outside RequireAuth.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// CurrentToken returns the token the request was authenticated with.
func CurrentToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
