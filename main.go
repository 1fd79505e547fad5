package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"useraccount/config"
	"useraccount/database"
	"useraccount/handlers"
	"useraccount/logger"
	"useraccount/metrics"
	"useraccount/routes"
	"useraccount/uploads"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.New(os.Getenv("GIN_MODE")).Fatal("Server failed", zap.Error(err))
	}
}

// run serves until ctx is cancelled. MongoDB is connected in the background
// so the form is reachable while the connection is retried.
func run(ctx context.Context) error {
	ctx, stopConnect := context.WithCancel(ctx)
	defer stopConnect()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(cfg.GinMode)
	defer func() { _ = log.Sync() }()

	log.Info("Starting profile server", zap.String("port", cfg.Server.Port))
	if cfg.EnvFile != "" {
		log.Info("Loaded environment file", zap.String("file", cfg.EnvFile))
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	store := database.ConnectInBackground(ctx, cfg.Mongo, log)

	// ===== GIN MODE =====
	switch cfg.GinMode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	content := uploads.NewContentDir(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	if err := os.MkdirAll(content.Root(), 0o755); err != nil {
		log.Warn("Could not create upload directory, will retry on first upload",
			zap.String("dir", content.Root()), zap.Error(err))
	}

	profiles := handlers.NewProfileHandler(store, content, log)
	router := routes.SetupRouter(cfg, profiles, log)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 2)
	go func() {
		log.Info("Server running", zap.String("url", "http://localhost:"+cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server: %w", err)
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("Metrics listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// ===== GRACEFUL SHUTDOWN =====
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-serverErr:
		log.Error("Listener failed, shutting down", zap.Error(runErr))
	}

	stopConnect()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Forced shutdown", zap.Error(err))
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("Failed to close MongoDB connection", zap.Error(err))
	}

	log.Info("Server stopped")
	return runErr
}
