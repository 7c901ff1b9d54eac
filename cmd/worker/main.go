// Package main is the entry point of the games hub background worker.
//
// The worker rebuilds the cached per-game leaderboards from the ratings table
// on a schedule, so rankings stay correct after cache evictions, Redis
// restarts or failed incremental updates.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dailygames/games-hub/config"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/infrastructure/persistence"
	"github.com/dailygames/games-hub/internal/infrastructure/scheduler"
	"github.com/dailygames/games-hub/internal/infrastructure/scheduler/jobs"
	"github.com/dailygames/games-hub/pkg/logger"
)

var errNothingToSchedule = errors.New("no jobs enabled")

func main() {
	once := flag.String("run", "", "run the named job once and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, *once); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, once string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
		Format: cfg.Observability.LogFormat,
	}).With(logger.String("app", cfg.App.Name+"-worker"))
	slog.SetDefault(log.Slog())

	log.Info("starting games hub worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("timezone", cfg.Scoring.GameTimezone),
	)

	backends, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.Close()

	sched, err := scheduler.New(scheduler.Config{
		Logger:     log.Slog(),
		Timezone:   cfg.Scoring.Location,
		JobTimeout: cfg.Scheduler.JobTimeout,
	})
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	if err := registerJobs(sched, cfg, backends, log); err != nil {
		if errors.Is(err, errNothingToSchedule) {
			log.Warn("nothing to schedule, exiting")
			return nil
		}
		return err
	}

	if once != "" {
		res, err := sched.RunNow(ctx, once)
		if err != nil {
			return err
		}
		return res.Error
	}

	if !cfg.Scheduler.Enabled {
		log.Info("scheduler disabled, exiting")
		return nil
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	for _, j := range sched.ListJobs() {
		log.Info("job scheduled",
			logger.String("job", j.Name), logger.String("schedule", j.Schedule), logger.Time("next_run", j.NextRun))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	if err := sched.Stop(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	log.Info("shutdown completed")
	return nil
}

func registerJobs(sched *scheduler.Scheduler, cfg *config.Config, backends *persistence.Backends, log *logger.Logger) error {
	registered := 0

	switch {
	case !cfg.Features.Enabled(config.FeatureLeaderboardRebuild):
		log.Info("leaderboard rebuild disabled by feature flag")
	case backends.Leaderboard == nil:
		log.Warn("leaderboard cache unavailable, rebuild job not registered")
	default:
		job := jobs.NewRebuildLeaderboardJob(backends.Store, backends.Leaderboard, game.Default,
			cfg.Scoring.LeaderboardSize, log.Slog())
		if err := sched.Register(job, scheduler.Cron(cfg.Scheduler.LeaderboardRebuildCron)); err != nil {
			return fmt.Errorf("register %s: %w", job.Name(), err)
		}
		registered++
	}

	if registered == 0 {
		return errNothingToSchedule
	}
	return nil
}
