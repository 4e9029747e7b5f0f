// server/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bike-parking-api-server/config"
	"bike-parking-api-server/internal/api/routes"
	"bike-parking-api-server/internal/auth"
	"bike-parking-api-server/internal/database"
	"bike-parking-api-server/internal/logger"
	"bike-parking-api-server/internal/s3"
	"bike-parking-api-server/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := pflag.String("config", "./config", "directory containing config.yaml")
	pflag.Parse()

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)
	logger.Info("Starting bike parking API server...", "storage", cfg.Storage.Driver, "log_level", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	st, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	// 3. Auth and the first administrator
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.JWT.Secret)
	if err := database.SeedAdmin(ctx, st, hasher, cfg.Admin); err != nil {
		log.Fatalf("Failed to seed administrator: %v", err)
	}

	deps := routes.Deps{Config: cfg, Store: st, Hasher: hasher, Tokens: tokens}

	// 4. Photo uploads are optional
	if cfg.S3.Enabled() {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to create S3 uploader: %v", err)
		}
		deps.Uploader = uploader
		logger.Info("Photo uploads enabled", "bucket", cfg.S3.Bucket, "region", cfg.S3.Region)
	} else {
		logger.Warn("S3 is not configured; photo uploads are disabled")
	}

	// 5. Background reconciliation
	jobs, err := scheduler.NewScheduler(st, cfg.Scheduler.ReconcileProposals)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// 6. HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
