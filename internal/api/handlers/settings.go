package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/api/middleware"
	"github.com/team-calendar/backend/internal/planner"
	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/websocket"
)

// SettingsRequest updates the planner window.
type SettingsRequest struct {
	StartHour       *int `json:"start_hour" validate:"required,min=0,max=23"`
	EndHour         *int `json:"end_hour" validate:"required,min=1,max=24"`
	IntervalMinutes *int `json:"interval_minutes" validate:"required,min=1"`
}

// SettingsResponse is the effective planner window and its hour rows.
type SettingsResponse struct {
	StartHour       int                 `json:"start_hour"`
	EndHour         int                 `json:"end_hour"`
	IntervalMinutes int                 `json:"interval_minutes"`
	Hours           []planner.HourLabel `json:"hours"`
}

func settingsResponse(s planner.Settings) (SettingsResponse, error) {
	if err := s.Validate(); err != nil {
		return SettingsResponse{}, err
	}
	hours, err := s.Hours()
	if err != nil {
		return SettingsResponse{}, err
	}
	return SettingsResponse{
		StartHour:       s.StartHour,
		EndHour:         s.EndHour,
		IntervalMinutes: s.IntervalMinutes,
		Hours:           hours,
	}, nil
}

// GetSettings returns the planner settings in effect.
func GetSettings(repo *storage.SettingsRepository, defaults planner.Settings, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := repo.GetPlanner(r.Context(), defaults)
		if err != nil {
			logger.Error("loading settings", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query settings")
			return
		}

		resp, err := settingsResponse(s)
		if err != nil {
			logger.Error("stored planner settings are invalid", zap.Any("settings", s), zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Planner is misconfigured")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// UpdateSettings replaces the planner window. A window that would yield no
// hour rows is rejected before anything is stored. Unless editable is set
// the window belongs to the server configuration and every write is refused.
func UpdateSettings(repo *storage.SettingsRepository, events *websocket.EventBroadcaster, editable bool, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !editable {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Planner settings are managed by the server configuration")
			return
		}

		var req SettingsRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		s := planner.Settings{
			StartHour:       *req.StartHour,
			EndHour:         *req.EndHour,
			IntervalMinutes: *req.IntervalMinutes,
		}
		resp, err := settingsResponse(s)
		if err != nil {
			middleware.WriteError(w, http.StatusUnprocessableEntity, middleware.ErrValidation, err.Error())
			return
		}

		if err := repo.SetPlanner(r.Context(), s); err != nil {
			logger.Error("saving settings", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update settings")
			return
		}

		logger.Info("planner settings updated",
			zap.Int("start_hour", s.StartHour),
			zap.Int("end_hour", s.EndHour),
			zap.Int("interval_minutes", s.IntervalMinutes),
		)
		events.BroadcastSettingsUpdated(s)
		writeJSON(w, http.StatusOK, resp)
	}
}
