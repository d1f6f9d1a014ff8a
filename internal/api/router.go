// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/api/handlers"
	"github.com/team-calendar/backend/internal/api/middleware"
	"github.com/team-calendar/backend/internal/auth"
	"github.com/team-calendar/backend/internal/booking"
	"github.com/team-calendar/backend/internal/calendar"
	"github.com/team-calendar/backend/internal/i18n"
	"github.com/team-calendar/backend/internal/planner"
	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/websocket"
)

// Services holds everything the router wires into handlers.
type Services struct {
	DB         *storage.DB
	Users      *storage.UserRepository
	Rooms      *storage.RoomRepository
	Schedules  *storage.ScheduleRepository
	Settings   *storage.SettingsRepository
	Auth       *auth.Service
	Hub        *websocket.Hub
	Events     *websocket.EventBroadcaster
	Translator *i18n.Translator
	Importer   *calendar.Importer
	Scheduler  *calendar.Scheduler

	// Planner is the configured window used until settings are saved.
	Planner          planner.Settings
	Location         *time.Location
	LoginRatePerMin  int
	SecureCookies    bool
	SettingsEditable bool
	StaticDir        string
	Version          string
	Logger           *zap.Logger
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}

	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging(logger))
	r.Use(middleware.ErrorRecovery(logger))

	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.DB, s.Hub, s.Scheduler, s.Version)).Methods("GET")

	// Account endpoints
	limited := api.PathPrefix("/auth").Subrouter()
	limited.Use(middleware.RateLimit(s.LoginRatePerMin, logger))
	limited.HandleFunc("/register", handlers.Register(s.Auth, s.Translator, logger)).Methods("POST")
	limited.HandleFunc("/login", handlers.Login(s.Auth, s.Translator, s.SecureCookies, logger)).Methods("POST")

	private := api.NewRoute().Subrouter()
	private.Use(middleware.RequireAuth(s.Auth, logger))

	private.HandleFunc("/auth/logout", handlers.Logout(s.Auth, s.Translator, logger)).Methods("POST")
	private.HandleFunc("/me", handlers.Me()).Methods("GET")
	private.HandleFunc("/users", handlers.ListUsers(s.Users, logger)).Methods("GET")

	// WebSocket endpoint
	private.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub, logger)).Methods("GET")

	// Room endpoints
	private.HandleFunc("/rooms", handlers.ListRooms(s.Rooms, logger)).Methods("GET")
	private.HandleFunc("/rooms", handlers.CreateRoom(s.Rooms, s.Events, s.Translator, logger)).Methods("POST")
	private.HandleFunc("/rooms/{id}", handlers.GetRoom(s.Rooms, logger)).Methods("GET")
	private.HandleFunc("/rooms/{id}", handlers.UpdateRoom(s.Rooms, s.Events, s.Translator, logger)).Methods("PUT")
	private.HandleFunc("/rooms/{id}", handlers.DeleteRoom(s.Rooms, s.Events, s.Translator, logger)).Methods("DELETE")

	// Schedule endpoints
	sd := handlers.ScheduleDeps{
		Schedules:  s.Schedules,
		Rooms:      s.Rooms,
		Users:      s.Users,
		Events:     s.Events,
		Conflicts:  booking.NewConflictChecker(s.Schedules.ListRoomBookings),
		Translator: s.Translator,
		Location:   loc,
		Logger:     logger,
	}
	private.HandleFunc("/schedules", handlers.ListSchedules(sd)).Methods("GET")
	private.HandleFunc("/schedules", handlers.CreateSchedule(sd)).Methods("POST")
	private.HandleFunc("/schedules/{id}", handlers.GetSchedule(sd)).Methods("GET")
	private.HandleFunc("/schedules/{id}", handlers.UpdateSchedule(sd)).Methods("PUT")
	private.HandleFunc("/schedules/{id}", handlers.DeleteSchedule(sd)).Methods("DELETE")

	// Planner and calendar interchange
	private.HandleFunc("/planner", handlers.GetPlanner(handlers.PlannerDeps{
		Schedules:  s.Schedules,
		Settings:   s.Settings,
		Defaults:   s.Planner,
		Translator: s.Translator,
		Location:   loc,
		Logger:     logger,
	})).Methods("GET")
	private.HandleFunc("/calendar.ics", handlers.ExportCalendar(s.Schedules, loc, logger)).Methods("GET")
	private.HandleFunc("/calendar/import", handlers.ImportCalendar(s.Importer, s.Events, logger)).Methods("POST")

	// Settings endpoints
	private.HandleFunc("/settings", handlers.GetSettings(s.Settings, s.Planner, logger)).Methods("GET")
	private.HandleFunc("/settings", handlers.UpdateSettings(s.Settings, s.Events, s.SettingsEditable, logger)).Methods("PUT")

	// Serve static frontend files
	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}

	return r
}
