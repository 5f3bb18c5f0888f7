package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventflow-dev/eventflow/db"
	"github.com/eventflow-dev/eventflow/internal/audit"
	"github.com/eventflow-dev/eventflow/internal/auth"
	"github.com/eventflow-dev/eventflow/internal/config"
	"github.com/eventflow-dev/eventflow/internal/retention"
	"github.com/eventflow-dev/eventflow/internal/router"
	"github.com/eventflow-dev/eventflow/internal/services"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	if err := auth.Init(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour); err != nil {
		logrus.Fatalf("Failed to initialize token signing: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	recorder := audit.Init(cfg.AuditBuffer)

	purger := retention.NewPurger(cfg.EventRetentionDays)
	if err := purger.Start(); err != nil {
		logrus.Fatalf("Failed to start retention job: %v", err)
	}

	services.InitMailer(cfg)

	r := router.NewRouter()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logrus.Infof("Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server shutdown failed: %v", err)
	}

	purger.Stop()

	// Drain the audit queue so in-flight events reach the database.
	recorder.Stop()

	logrus.Info("Shutdown complete")
}
