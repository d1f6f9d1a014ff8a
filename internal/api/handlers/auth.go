package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/api/middleware"
	"github.com/team-calendar/backend/internal/auth"
	"github.com/team-calendar/backend/internal/i18n"
	"github.com/team-calendar/backend/internal/storage/models"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,max=64"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse confirms a new account.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func localize(tr *i18n.Translator, r *http.Request, id string) string {
	return tr.Localizer(r.Header.Get("Accept-Language")).Message(id, nil)
}

// Register creates a user account.
func Register(svc *auth.Service, tr *i18n.Translator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Password)
		if errors.Is(err, auth.ErrUsernameTaken) {
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, localize(tr, r, "UsernameTaken"))
			return
		}
		if err != nil {
			logger.Error("registering user", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to register")
			return
		}

		writeJSON(w, http.StatusCreated, RegisterResponse{
			Message: localize(tr, r, "RegisterSuccess"),
			User:    user,
		})
	}
}

// Login checks credentials and issues a token, also set as a cookie.
func Login(svc *auth.Service, tr *i18n.Translator, secureCookie bool, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		session, err := svc.Login(r.Context(), req.Username, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, localize(tr, r, "LoginFailed"))
			return
		}
		if err != nil {
			logger.Error("logging in", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to log in")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    session.Token,
			Path:     "/",
			Expires:  session.ExpiresAt,
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, LoginResponse{
			Message:   localize(tr, r, "LoginSuccess"),
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			User:      session.User,
		})
	}
}

// Logout revokes the current session.
func Logout(svc *auth.Service, tr *i18n.Translator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), middleware.CurrentToken(r.Context())); err != nil {
			logger.Error("logging out", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to log out")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})

		writeJSON(w, http.StatusOK, MessageResponse{Message: localize(tr, r, "LogoutSuccess")})
	}
}
