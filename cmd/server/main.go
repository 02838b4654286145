package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/acebook/backend/internal/router"
	"github.com/anonto42/acebook/backend/internal/session"
	"github.com/anonto42/acebook/backend/internal/validators"
	"github.com/anonto42/acebook/backend/pkg/cache"
	"github.com/anonto42/acebook/backend/pkg/config"
	"github.com/anonto42/acebook/backend/pkg/firebase"
	"github.com/anonto42/acebook/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.CloseDB()

	repos, err := router.NewRepositories(ctx, db)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize repositories")
	}

	rdb, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, rate limiting disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	deps := router.Deps{
		Repos:               repos,
		Codec:               session.NewCodec(cfg.JWTSecret, cfg.SessionTTL, cfg.RefreshTTL),
		Validator:           validators.NewValidator(),
		Store:               db,
		Redis:               rdb,
		AuthRateLimit:       cfg.AuthRateLimit,
		PostMaxLength:       cfg.PostMaxLength,
		DefaultProfileImage: cfg.DefaultProfileImage,
		Log:                 log,
	}

	// Firebase login is optional
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize Firebase")
		}
		deps.Firebase = firebaseApp
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	config.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, deps)

	metrics := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server stopped")
		}
	}()

	go func() {
		log.WithField("port", cfg.Port).Info("Starting API server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("API server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("API server shutdown failed")
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Metrics server shutdown failed")
	}
}
