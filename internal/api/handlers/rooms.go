package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/api/middleware"
	"github.com/team-calendar/backend/internal/i18n"
	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/storage/models"
	"github.com/team-calendar/backend/internal/websocket"
)

// RoomRequest is the body for creating or updating a room.
type RoomRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

// ListRooms returns all rooms ordered by name.
func ListRooms(rooms *storage.RoomRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := rooms.List(r.Context())
		if err != nil {
			logger.Error("listing rooms", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query rooms")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateRoom adds a room with a unique name.
func CreateRoom(rooms *storage.RoomRepository, events *websocket.EventBroadcaster, tr *i18n.Translator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RoomRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		room := &models.Room{Name: req.Name, Capacity: req.Capacity}
		err := rooms.Create(r.Context(), room)
		if errors.Is(err, storage.ErrConflict) {
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, localize(tr, r, "RoomNameTaken"))
			return
		}
		if err != nil {
			logger.Error("creating room", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create room")
			return
		}

		events.BroadcastRoomChanged(websocket.TypeRoomCreated, room)
		writeJSON(w, http.StatusCreated, room)
	}
}

// GetRoom returns a single room.
func GetRoom(rooms *storage.RoomRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := rooms.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			logger.Error("getting room", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query room")
			return
		}
		if room == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Room not found")
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

// UpdateRoom renames or resizes a room.
func UpdateRoom(rooms *storage.RoomRepository, events *websocket.EventBroadcaster, tr *i18n.Translator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RoomRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		room, err := rooms.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			logger.Error("getting room", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query room")
			return
		}
		if room == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Room not found")
			return
		}

		room.Name = req.Name
		room.Capacity = req.Capacity

		err = rooms.Update(r.Context(), room)
		switch {
		case errors.Is(err, storage.ErrConflict):
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, localize(tr, r, "RoomNameTakenOnEdit"))
			return
		case errors.Is(err, storage.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Room not found")
			return
		case err != nil:
			logger.Error("updating room", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update room")
			return
		}

		events.BroadcastRoomChanged(websocket.TypeRoomUpdated, room)
		writeJSON(w, http.StatusOK, room)
	}
}

// DeleteRoom removes a room that no schedule uses.
func DeleteRoom(rooms *storage.RoomRepository, events *websocket.EventBroadcaster, tr *i18n.Translator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		room, err := rooms.GetByID(ctx, mux.Vars(r)["id"])
		if err != nil {
			logger.Error("getting room", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query room")
			return
		}
		if room == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Room not found")
			return
		}

		inUse, err := rooms.CountSchedules(ctx, room.ID)
		if err != nil {
			logger.Error("counting room schedules", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete room")
			return
		}
		if inUse > 0 {
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, localize(tr, r, "RoomInUse"))
			return
		}

		err = rooms.Delete(ctx, room.ID)
		switch {
		case errors.Is(err, storage.ErrConflict):
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, localize(tr, r, "RoomInUse"))
			return
		case errors.Is(err, storage.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Room not found")
			return
		case err != nil:
			logger.Error("deleting room", zap.Error(err))
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete room")
			return
		}

		events.BroadcastRoomChanged(websocket.TypeRoomDeleted, room)
		w.WriteHeader(http.StatusNoContent)
	}
}
