package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bugtracker/db"
	"github.com/monocle-dev/bugtracker/internal/auth"
	"github.com/monocle-dev/bugtracker/internal/config"
	"github.com/monocle-dev/bugtracker/internal/handlers"
	"github.com/monocle-dev/bugtracker/internal/logger"
	"github.com/monocle-dev/bugtracker/internal/repository"
	"github.com/monocle-dev/bugtracker/internal/router"
	"github.com/monocle-dev/bugtracker/internal/services"
	"github.com/monocle-dev/bugtracker/web"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	logg := logger.New(cfg.LogLevel, cfg.LogPretty)

	conn, err := db.ConnectDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)

	if err != nil {
		logg.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}

	if err := db.MigrateDatabase(conn); err != nil {
		logg.Fatal().Err(err).Msg("failed to migrate database")
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	if err != nil {
		logg.Fatal().Err(err).Msg("failed to create token manager")
	}

	users := repository.NewUserStore(conn)
	projects := repository.NewProjectStore(conn)
	memberships := repository.NewMembershipStore(conn)
	bugs := repository.NewBugStore(conn)

	hub := handlers.NewHub(cfg.AllowedOrigins, logg)

	h := handlers.New(
		services.NewAuthService(users, tokens),
		services.NewProjectService(projects, memberships, users),
		services.NewBugService(bugs, memberships, hub),
		services.NewGitHubClient(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.GitHubTimeout),
		hub,
	)

	r := router.NewRouter(router.Deps{
		Config:   cfg,
		Logger:   logg,
		Handlers: h,
		Tokens:   tokens,
		Users:    users,
		Static:   web.Static(),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logg.Info().Str("port", cfg.Port).Str("driver", cfg.DatabaseDriver).Msg("server starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	stop()

	logg.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("graceful shutdown failed")
	}

	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
}
