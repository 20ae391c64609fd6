package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medba/medba/internal/api"
	"github.com/medba/medba/internal/api/handler"
	"github.com/medba/medba/internal/config"
	"github.com/medba/medba/internal/delivery"
	"github.com/medba/medba/internal/fetcher"
	"github.com/medba/medba/internal/ratelimit"
	"github.com/medba/medba/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("medba %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting medba",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure the temp directory exists
	if err := os.MkdirAll(cfg.Delivery.TempPath, 0755); err != nil {
		logger.Error("failed to create temp directory", "error", err)
		os.Exit(1)
	}

	// Initialize dependencies
	runner := fetcher.NewYtDlp(cfg.Fetcher, logger)
	mediaSvc := service.NewMediaService(runner, cfg.Delivery, logger)
	relay := delivery.NewThumbnailRelay(cfg.Delivery, logger)

	limiter := ratelimit.NewFixedWindow(cfg.RateLimit)
	limiter.Start()

	// Initialize handlers
	formatsHandler := handler.NewFormatsHandler(mediaSvc, logger)
	downloadHandler := handler.NewDownloadHandler(mediaSvc, relay, logger)
	healthHandler := handler.NewHealthHandler(cfg.Delivery.TempPath)

	// Setup router
	router := api.NewRouter(formatsHandler, downloadHandler, healthHandler, limiter, cfg.Server.ClientOrigin)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	limiter.Stop()

	logger.Info("shutdown complete")
}
