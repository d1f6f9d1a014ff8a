package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/api/middleware"
	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/storage/models"
)

// Me returns the authenticated user.
func Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, middleware.CurrentUser(r.Context()))
	}
}

// ListUsers returns every user except the viewer, the choices for sharing
// a schedule.
func ListUsers(users *storage.UserRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middleware.CurrentUser(r.Context())

		all, err := users.List(r.Context())
		if err != nil {
			logger.Error("listing users", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query users")
			return
		}

		others := make([]models.User, 0, len(all))
		for _, u := range all {
			if u.ID != viewer.ID {
				others = append(others, u)
			}
		}

		writeJSON(w, http.StatusOK, others)
	}
}
