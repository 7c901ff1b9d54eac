// Package main is the entry point of the games hub API server.
//
// The server accepts daily game results, keeps per-game ratings and streaks,
// and serves profiles, friend groups and leaderboards over HTTP. Without
// DATABASE_URL it runs on the in-memory store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dailygames/games-hub/config"
	"github.com/dailygames/games-hub/internal/application/command"
	"github.com/dailygames/games-hub/internal/application/query"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/infrastructure/persistence"
	httpserver "github.com/dailygames/games-hub/internal/interface/http"
	"github.com/dailygames/games-hub/internal/interface/http/handlers"
	"github.com/dailygames/games-hub/pkg/logger"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting games hub API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("game_timezone", cfg.Scoring.GameTimezone),
		logger.Bool("postgres", cfg.UsesPostgres()),
	)
	for _, f := range cfg.Features.All() {
		log.Debug("feature flag",
			logger.String("feature", f.Name), logger.Bool("enabled", f.Enabled), logger.Int("rollout_percent", f.RolloutPercent))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Storage
	// ─────────────────────────────────────────────────────────────────────────
	backends, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Application layer
	// ─────────────────────────────────────────────────────────────────────────
	slogger := log.Slog()
	clock := timeutil.SystemClock
	zone := cfg.Scoring.Location
	engine := rating.NewEngine(game.Default)

	deps := httpserver.Dependencies{
		RegisterUser: command.NewRegisterUserHandler(backends.Store, slogger),
		SubmitScore: command.NewSubmitScoreHandler(backends.Store, engine, command.SubmitScoreHandlerConfig{
			Leaderboard: backends.Leaderboard,
			Limiter:     backends.Limiter,
			Retrier:     backends.Retrier,
			Clock:       clock,
			Zone:        zone,
			Logger:      slogger,
		}),
		ManageGroup:    command.NewManageGroupHandler(backends.Store, slogger),
		GetProfile:     query.NewGetProfileHandler(backends.Store, engine, clock, zone),
		GetStreaks:     query.NewGetStreaksHandler(backends.Store, game.Default),
		GetGroup:       query.NewGetGroupHandler(backends.Store, clock, zone),
		ListGroups:     query.NewListGroupsHandler(backends.Store),
		GetLeaderboard: query.NewGetLeaderboardHandler(backends.Store, backends.Leaderboard, slogger),
		ListGames:      query.NewListGamesHandler(game.Default),
		ListScores:     query.NewListScoresByDateHandler(backends.Store, game.Default, clock, zone),
		GroupScores:    query.NewGroupScoresForDateHandler(backends.Store, game.Default, clock, zone),
		Features:       cfg.Features,
		Logger:         log,
		HealthChecker:  healthChecker(cfg, backends),
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpserver.DefaultConfig()
	serverCfg.Addr = cfg.HTTP.Addr
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.Version = cfg.App.Version
	server := httpserver.NewServer(serverCfg, deps)

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	log.Info("shutdown completed")
	return nil
}

func healthChecker(cfg *config.Config, backends *persistence.Backends) handlers.HealthChecker {
	checker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	if db := backends.Database(); db != nil {
		checker.AddCheck("postgres", handlers.NewPingCheck(db))
	}
	if cache := backends.Cache(); cache != nil {
		checker.AddOptionalCheck("redis", handlers.NewPingCheck(cache))
	}
	return checker
}

// setupLogger builds the process logger and makes it the slog default.
func setupLogger(cfg *config.Config) *logger.Logger {
	level := logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		level = logger.LevelDebug
	}
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     level,
		Format:    cfg.Observability.LogFormat,
		AddCaller: cfg.IsDevelopment(),
	}).With(logger.String("app", cfg.App.Name))
	slog.SetDefault(log.Slog())
	return log
}
