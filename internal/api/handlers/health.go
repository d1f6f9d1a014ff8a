package handlers

import (
	"net/http"
	"time"

	"github.com/team-calendar/backend/internal/calendar"
	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, HealthResponse{Status: status, DBConnected: dbConnected})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	Version          string     `json:"version"`
	UsersCount       int        `json:"users_count"`
	RoomsCount       int        `json:"rooms_count"`
	SchedulesCount   int        `json:"schedules_count"`
	WebSocketClients int        `json:"websocket_clients"`
	NextSessionPrune *time.Time `json:"next_session_prune,omitempty"`
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, hub *websocket.Hub, scheduler *calendar.Scheduler, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		resp := StatusResponse{Version: version, WebSocketClients: hub.ClientCount()}

		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&resp.UsersCount)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&resp.RoomsCount)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedules").Scan(&resp.SchedulesCount)

		if scheduler != nil {
			resp.NextSessionPrune = scheduler.NextRun()
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
