/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the punch clock server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, optional rule file)
  2. Build the JSON logger
  3. Initialize SQLite store
  4. Create API handler and router
  5. Start the month-end timesheet scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -env     Env file to load before the environment (default: .env)

ENVIRONMENT:
  APP_PORT, APP_ENV, LOG_LEVEL, DB_PATH, TIME_ZONE, RULES_FILE,
  SCHEDULER_INTERVAL, CORS_ALLOWED_ORIGINS. See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  DB_PATH=./data/punchclock.db ./server

  # Run with in-memory database and debug logs
  DB_PATH=":memory:" LOG_LEVEL=debug ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/punchclock/api"
	"github.com/warp/punchclock/config"
	"github.com/warp/punchclock/store/sqlite"
)

func main() {
	envFile := flag.String("env", ".env", "env file loaded before the process environment")
	flag.Parse()

	if err := run(*envFile); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := api.NewLogger(os.Stdout, cfg.SlogLevel(), cfg.App.Env)
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()
	store.SetLocation(cfg.Location)

	// Initialize handler
	handler := api.NewHandler(store, cfg.Rules, cfg.Location, logger)

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		Development:    cfg.IsDevelopment(),
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	scheduler := api.NewTimesheetScheduler(handler)
	scheduler.CheckInterval = cfg.Scheduler.Interval
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.Int("port", cfg.App.Port),
			slog.String("db", cfg.Database.Path),
			slog.String("time_zone", cfg.Location.String()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
