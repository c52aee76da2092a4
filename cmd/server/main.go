package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NicklasAaStadler/booking/internal/booking"
	"github.com/NicklasAaStadler/booking/internal/config"
	"github.com/NicklasAaStadler/booking/internal/database"
	"github.com/NicklasAaStadler/booking/internal/handlers"
	"github.com/NicklasAaStadler/booking/internal/metrics"
	"github.com/NicklasAaStadler/booking/internal/router"
	"github.com/NicklasAaStadler/booking/internal/service"
	"github.com/NicklasAaStadler/booking/internal/websocket"
	"github.com/NicklasAaStadler/booking/pkg/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logging.Default().Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Connect to the session table
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		// The form still works without the database; confirm will fail with an alert.
		logger.Warn("database not reachable at startup", "error", err)
	}
	cancelPing()

	repo := database.NewRepository(pool, cfg.SessionTable)
	if cfg.AutoMigrate {
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("failed to create session table", "error", err, "table", cfg.SessionTable)
			os.Exit(1)
		}
	}

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// Initialize services
	bookingService := service.NewBookingService(repo, service.Options{
		Coordinator: booking.Options{
			Location:      loc,
			DefaultFloor:  cfg.DefaultFloor,
			BookedBy:      cfg.BookedBy,
			InsertTimeout: cfg.InsertTimeout,
		},
		SessionTTL: cfg.SessionTTL,
		Publisher:  hub,
		Metrics:    bookingMetrics,
		Logger:     logger,
	})
	go bookingService.RunSweeper(ctx, cfg.SweepInterval)

	// Initialize handlers
	h := handlers.NewHandler(bookingService, hub, logger)

	// Create router
	r := router.SetupRouter(h, router.Config{
		AllowedOrigin:  cfg.AllowedOrigin,
		MetricsHandler: promhttp.Handler(),
		Database:       repo,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("room booking server starting", "port", cfg.Port, "timezone", cfg.Timezone, "table", cfg.SessionTable)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownDeadline)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	stop()

	logger.Info("server stopped")
}
