package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/api/middleware"
	"github.com/team-calendar/backend/internal/booking"
	"github.com/team-calendar/backend/internal/i18n"
	"github.com/team-calendar/backend/internal/planner"
	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/storage/models"
	"github.com/team-calendar/backend/internal/websocket"
)

// ScheduleRequest is the body for creating or updating a schedule. Times
// are RFC 3339, or YYYY-MM-DDTHH:MM in the server's reference time zone.
type ScheduleRequest struct {
	Title          string   `json:"title" validate:"required,max=140"`
	StartTime      string   `json:"start_time" validate:"required"`
	EndTime        string   `json:"end_time" validate:"required"`
	Location       string   `json:"location" validate:"max=140"`
	RoomID         *string  `json:"room_id"`
	ParticipantIDs []string `json:"participant_ids" validate:"dive,required"`
}

// ScheduleDeps groups what the schedule handlers need.
type ScheduleDeps struct {
	Schedules  *storage.ScheduleRepository
	Rooms      *storage.RoomRepository
	Users      *storage.UserRepository
	Events     *websocket.EventBroadcaster
	Conflicts  *booking.ConflictChecker
	Translator *i18n.Translator
	Location   *time.Location
	Logger     *zap.Logger
}

// ScheduleResponse is a saved schedule. RoomConflicts lists other bookings
// of the same room overlapping it; the save is not refused.
type ScheduleResponse struct {
	*models.ScheduleDetail
	RoomConflicts []booking.Conflict `json:"room_conflicts,omitempty"`
}

func (d ScheduleDeps) respond(ctx context.Context, detail *models.ScheduleDetail) ScheduleResponse {
	resp := ScheduleResponse{ScheduleDetail: detail}
	if d.Conflicts == nil {
		return resp
	}

	conflicts, err := d.Conflicts.CheckConflicts(ctx, detail.RoomID, detail.StartTime, detail.EndTime, detail.ID)
	if err != nil {
		d.Logger.Warn("checking room conflicts", zap.String("schedule_id", detail.ID), zap.Error(err))
		return resp
	}
	if len(conflicts) > 0 {
		d.Logger.Info("room double booked",
			zap.String("schedule_id", detail.ID),
			zap.String("room_id", *detail.RoomID),
			zap.Int("conflicts", len(conflicts)),
		)
	}
	resp.RoomConflicts = conflicts
	return resp
}

type requestError struct {
	status  int
	code    string
	message string
}

func (e *requestError) write(w http.ResponseWriter) {
	middleware.WriteError(w, e.status, e.code, e.message)
}

func internalError(message string) *requestError {
	return &requestError{http.StatusInternalServerError, middleware.ErrInternalError, message}
}

// toSchedule validates a request against the stored rooms and users. The
// owner is never listed as a participant.
func (d ScheduleDeps) toSchedule(ctx context.Context, r *http.Request, req ScheduleRequest, ownerID string) (*models.Schedule, *requestError) {
	start, err := parseDateTime(req.StartTime, d.Location)
	if err != nil {
		return nil, &requestError{http.StatusUnprocessableEntity, middleware.ErrValidation, "Invalid start time"}
	}
	end, err := parseDateTime(req.EndTime, d.Location)
	if err != nil {
		return nil, &requestError{http.StatusUnprocessableEntity, middleware.ErrValidation, "Invalid end time"}
	}
	if !end.After(start) {
		return nil, &requestError{http.StatusUnprocessableEntity, middleware.ErrValidation, localize(d.Translator, r, "ScheduleEndBeforeStart")}
	}

	s := &models.Schedule{
		Title:     strings.TrimSpace(req.Title),
		StartTime: start,
		EndTime:   end,
		Location:  strings.TrimSpace(req.Location),
		OwnerID:   ownerID,
	}

	if req.RoomID != nil && *req.RoomID != "" {
		room, err := d.Rooms.GetByID(ctx, *req.RoomID)
		if err != nil {
			d.Logger.Error("getting room", zap.Error(err))
			return nil, internalError("Failed to query room")
		}
		if room == nil {
			return nil, &requestError{http.StatusUnprocessableEntity, middleware.ErrValidation, "Selected room does not exist"}
		}
		s.RoomID = &room.ID
	}

	seen := map[string]bool{ownerID: true}
	ids := []string{}
	for _, id := range req.ParticipantIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	users, err := d.Users.ListByIDs(ctx, ids)
	if err != nil {
		d.Logger.Error("listing participants", zap.Error(err))
		return nil, internalError("Failed to query users")
	}
	if len(users) != len(ids) {
		return nil, &requestError{http.StatusUnprocessableEntity, middleware.ErrValidation, "Unknown participant"}
	}
	s.ParticipantIDs = ids

	return s, nil
}

// loadOwned fetches a schedule the viewer may modify.
func (d ScheduleDeps) loadOwned(ctx context.Context, id, viewerID string) (*models.ScheduleDetail, *requestError) {
	detail, err := d.Schedules.GetByID(ctx, id)
	if err != nil {
		d.Logger.Error("getting schedule", zap.Error(err))
		return nil, internalError("Failed to query schedule")
	}
	if detail == nil {
		return nil, &requestError{http.StatusNotFound, middleware.ErrNotFound, "Schedule not found"}
	}
	if detail.OwnerID != viewerID {
		return nil, &requestError{http.StatusForbidden, middleware.ErrForbidden, "Only the owner can change this schedule"}
	}
	return detail, nil
}

func visibleTo(detail *models.ScheduleDetail, viewerID string) bool {
	if detail.OwnerID == viewerID {
		return true
	}
	for _, id := range detail.ParticipantIDs {
		if id == viewerID {
			return true
		}
	}
	return false
}

// ListSchedules returns the viewer's visible schedules overlapping
// [from, to). Both default to the current week.
func ListSchedules(d ScheduleDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middleware.CurrentUser(r.Context())
		q := r.URL.Query()

		from, to := planner.NewBuilder(planner.DefaultSettings(), planner.WithLocation(d.Location)).WeekRange(time.Now())
		if v := q.Get("from"); v != "" {
			t, err := parseDateTime(v, d.Location)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid from parameter")
				return
			}
			from = t
		}
		if v := q.Get("to"); v != "" {
			t, err := parseDateTime(v, d.Location)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid to parameter")
				return
			}
			to = t
		}
		if !to.After(from) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "to must be after from")
			return
		}

		list, err := d.Schedules.ListVisible(r.Context(), viewer.ID, from, to)
		if err != nil {
			d.Logger.Error("listing schedules", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query schedules")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateSchedule adds a schedule owned by the viewer.
func CreateSchedule(d ScheduleDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		viewer := middleware.CurrentUser(ctx)

		var req ScheduleRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		s, reqErr := d.toSchedule(ctx, r, req, viewer.ID)
		if reqErr != nil {
			reqErr.write(w)
			return
		}

		if err := d.Schedules.Create(ctx, s); err != nil {
			d.Logger.Error("creating schedule", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create schedule")
			return
		}

		detail, err := d.Schedules.GetByID(ctx, s.ID)
		if err != nil || detail == nil {
			d.Logger.Error("reloading schedule", zap.String("schedule_id", s.ID), zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load schedule")
			return
		}

		d.Events.BroadcastScheduleChanged(websocket.TypeScheduleCreated, s)
		writeJSON(w, http.StatusCreated, d.respond(ctx, detail))
	}
}

// GetSchedule returns a schedule the viewer owns or participates in.
func GetSchedule(d ScheduleDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middleware.CurrentUser(r.Context())

		detail, err := d.Schedules.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			d.Logger.Error("getting schedule", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query schedule")
			return
		}
		if detail == nil || !visibleTo(detail, viewer.ID) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Schedule not found")
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// UpdateSchedule replaces a schedule. Only the owner may update it.
func UpdateSchedule(d ScheduleDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		viewer := middleware.CurrentUser(ctx)

		existing, reqErr := d.loadOwned(ctx, mux.Vars(r)["id"], viewer.ID)
		if reqErr != nil {
			reqErr.write(w)
			return
		}

		var req ScheduleRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		s, reqErr := d.toSchedule(ctx, r, req, viewer.ID)
		if reqErr != nil {
			reqErr.write(w)
			return
		}
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt

		err := d.Schedules.Update(ctx, s)
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Schedule not found")
			return
		}
		if err != nil {
			d.Logger.Error("updating schedule", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update schedule")
			return
		}

		detail, err := d.Schedules.GetByID(ctx, s.ID)
		if err != nil || detail == nil {
			d.Logger.Error("reloading schedule", zap.String("schedule_id", s.ID), zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load schedule")
			return
		}

		// Removed participants hear about the change too.
		notified := *s
		notified.ParticipantIDs = append(append([]string{}, existing.ParticipantIDs...), s.ParticipantIDs...)
		d.Events.BroadcastScheduleChanged(websocket.TypeScheduleUpdated, &notified)

		writeJSON(w, http.StatusOK, d.respond(ctx, detail))
	}
}

// DeleteSchedule removes a schedule. Only the owner may delete it.
func DeleteSchedule(d ScheduleDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		viewer := middleware.CurrentUser(ctx)

		existing, reqErr := d.loadOwned(ctx, mux.Vars(r)["id"], viewer.ID)
		if reqErr != nil {
			reqErr.write(w)
			return
		}

		err := d.Schedules.Delete(ctx, existing.ID)
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Schedule not found")
			return
		}
		if err != nil {
			d.Logger.Error("deleting schedule", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete schedule")
			return
		}

		d.Events.BroadcastScheduleChanged(websocket.TypeScheduleDeleted, &existing.Schedule)
		w.WriteHeader(http.StatusNoContent)
	}
}
