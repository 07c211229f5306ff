package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jmadden/clubhouse/internal/config"
	"github.com/jmadden/clubhouse/internal/logger"
	"github.com/jmadden/clubhouse/internal/security"
	"github.com/jmadden/clubhouse/internal/service"
	"github.com/jmadden/clubhouse/internal/session"
	"github.com/jmadden/clubhouse/internal/store"
	"github.com/jmadden/clubhouse/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}

	logger.Init()
	log := logger.Logger.With().
		Str("service", "clubhouse").
		Str("env", cfg.AppEnv).
		Logger()

	// Root ctx with signal cancellation
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	db, err := store.Open(rootCtx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBMaxIdleTime)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer db.Close()
	log.Info().Msg("postgres connected")

	storage := store.NewStorage(db)

	// ---- Sessions ----
	var sessions session.Store
	var rdb *goredis.Client
	switch cfg.SessionBackend {
	case "redis":
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		{
			pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
			defer cancel()
			if err := rdb.Ping(pingCtx).Err(); err != nil {
				log.Fatal().Err(err).Msg("redis ping failed")
			}
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb)
		log.Info().Msg("redis sessions enabled")
	default:
		sessions = session.NewMemoryStore()
		log.Info().Msg("in-memory sessions enabled")
	}

	// ---- Services ----
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	auth := service.NewAuthService(storage, sessions, hasher, cfg.MembershipHash, cfg.SessionTTL)
	messages := service.NewMessageService(storage)

	// ---- HTTP ----
	render, err := web.NewTemplateRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("template parse failed")
	}

	handlers := web.NewHandlers(auth, messages, render, db, cfg.SessionTTL)
	router := web.NewRouter(web.RouterDeps{Handlers: handlers, Auth: auth})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
