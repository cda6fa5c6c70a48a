/*
Package main is the entry point for the relay chat server.

It is responsible for loading configuration, initializing the global logging system,
connecting to the database and the external collaborators (object storage, push
gateway), wiring the delivery hub, setting up the HTTP server, and gracefully
handling operating system interrupt signals (SIGINT, SIGTERM).
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relaychat/internal/app/archive"
	"relaychat/internal/app/chat"
	"relaychat/internal/app/db"
	"relaychat/internal/app/message"
	"relaychat/internal/app/notify"
	"relaychat/internal/app/profile"
	"relaychat/internal/configs"
	"relaychat/internal/handler"
	"relaychat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and run migrations
	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	messages := message.NewPGStore(pool)
	profiles := profile.NewPGStore(pool)

	// Initialize transcript storage
	archiveService, err := archive.NewArchiveService(archive.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize transcript storage")
	}

	// Initialize the push notification gateway. Push delivery is best-effort,
	// so missing credentials downgrade to a log-only notifier.
	var notifier notify.Notifier
	if cfg.FCMCredentialsFile != "" {
		notifier, err = notify.NewFCMNotifier(ctx, cfg.FCMCredentialsFile)
		if err != nil {
			logx.Fatal(err, "Failed to initialize FCM notifier")
		}
	} else {
		logx.Warn("FCM_CREDENTIALS_FILE not set. Offline notifications will only be logged.")
		notifier = notify.NewLogNotifier()
	}

	dispatcher := notify.NewDispatcher(profiles, notifier)

	// Initialize the delivery hub
	hub := chat.NewHub(messages, dispatcher)

	// Setup HTTP server and routes
	deps := &handler.AppDeps{
		Hub:      hub,
		Config:   cfg,
		Messages: messages,
		Profiles: profiles,
		Archive:  archiveService,
	}
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Relay Chat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
