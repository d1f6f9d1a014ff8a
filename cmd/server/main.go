// Package main is the entry point for the Team Calendar server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/api"
	"github.com/team-calendar/backend/internal/auth"
	"github.com/team-calendar/backend/internal/calendar"
	"github.com/team-calendar/backend/internal/config"
	"github.com/team-calendar/backend/internal/i18n"
	"github.com/team-calendar/backend/internal/logging"
	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "HTTP server address (overrides ADDR)")
	migrateOnly := flag.Bool("migrate-only", false, "Apply database migrations and exit")
	seedPath := flag.String("seed", "", "YAML file with users and rooms to create")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *migrateOnly, *seedPath); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger, migrateOnly bool, seedPath string) error {
	logger.Info("starting Team Calendar",
		zap.String("version", version),
		zap.String("env", cfg.Env),
		zap.String("timezone", cfg.Timezone),
		zap.Int("planner_start_hour", cfg.PlannerStartHour),
		zap.Int("planner_end_hour", cfg.PlannerEndHour),
	)

	// Initialize database
	db, err := storage.NewDB(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db, logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if migrateOnly {
		return nil
	}

	// Initialize repositories
	users := storage.NewUserRepository(db)
	rooms := storage.NewRoomRepository(db)
	schedules := storage.NewScheduleRepository(db)
	settings := storage.NewSettingsRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if seedPath != "" {
		seed, err := storage.LoadSeed(seedPath)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, users, rooms, auth.HashPassword, logger); err != nil {
			return fmt.Errorf("applying seed: %w", err)
		}
	}

	sessions, err := newSessionStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	authService := auth.NewService(users, sessions, auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL()), logger)

	translator, err := i18n.NewTranslator(cfg.DefaultLocale, logger)
	if err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	scheduler := calendar.NewScheduler(sessions, cfg.SessionPruneIntervalMin, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	router := api.NewRouter(api.Services{
		DB:               db,
		Users:            users,
		Rooms:            rooms,
		Schedules:        schedules,
		Settings:         settings,
		Auth:             authService,
		Hub:              hub,
		Events:           websocket.NewEventBroadcaster(hub, cfg.Location(), logger),
		Translator:       translator,
		Importer:         calendar.NewImporter(calendar.NewParser(cfg.Location(), logger), schedules, logger),
		Scheduler:        scheduler,
		Planner:          cfg.Planner(),
		Location:         cfg.Location(),
		LoginRatePerMin:  cfg.LoginRatePerMin,
		SecureCookies:    cfg.IsProduction(),
		SettingsEditable: cfg.SettingsEditable,
		StaticDir:        cfg.StaticDir,
		Version:          version,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, db *storage.DB) (auth.SessionStore, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return auth.NewSQLiteSessionStore(storage.NewSessionRepository(db)), nil
	}
	client, err := auth.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	return auth.NewRedisSessionStore(client), nil
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}
