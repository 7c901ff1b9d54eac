// Package persistence opens the storage backends selected by configuration:
// PostgreSQL or the in-memory store for durable state, and Redis for the
// leaderboard cache and the submission rate limiter.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/dailygames/games-hub/config"
	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/infrastructure/persistence/memory"
	"github.com/dailygames/games-hub/internal/infrastructure/persistence/postgres"
	"github.com/dailygames/games-hub/internal/infrastructure/persistence/redis"
	"github.com/dailygames/games-hub/pkg/circuitbreaker"
	"github.com/dailygames/games-hub/pkg/logger"
	"github.com/dailygames/games-hub/pkg/retry"
)

// Backends holds the opened stores. Optional parts are nil when disabled or
// unreachable.
type Backends struct {
	Store   port.Store
	Retrier *retry.Retrier

	Leaderboard port.LeaderboardCache
	Limiter     port.RateLimiter

	db    *postgres.Connection
	cache *redis.Cache
	log   *logger.Logger
}

// Open connects to the configured backends. A Redis outage at startup is
// logged and leaves the cache parts nil; a database failure is fatal.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backends, error) {
	b := &Backends{log: log.With(logger.Component("persistence"))}

	if err := b.openStore(ctx, cfg); err != nil {
		return nil, err
	}
	b.openRedis(cfg)

	return b, nil
}

func (b *Backends) openStore(ctx context.Context, cfg *config.Config) error {
	if !cfg.UsesPostgres() {
		b.log.Warn("DATABASE_URL not set, using the in-memory store")
		b.Store = memory.NewStore()
		b.Retrier = retry.Once()
		return nil
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	if cfg.Database.MaxConns > 0 {
		pgCfg.MaxConns = int32(cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns > 0 {
		pgCfg.MinConns = int32(cfg.Database.MinConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime > 0 {
		pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	}

	b.log.Info("connecting to database")
	conn, err := postgres.NewConnection(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	b.db = conn

	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return fmt.Errorf("run migrations: %w", err)
		}
		b.log.Info("database schema is up to date")
	}

	b.Store = postgres.NewStore(conn)
	b.Retrier = retry.TransactionRetrier(cfg.Scoring.TxMaxAttempts, postgres.IsTransient,
		func(attempt int, err error, delay time.Duration) {
			b.log.Warn("retrying transaction",
				logger.Int("attempt", attempt), logger.Duration("delay", delay), logger.Err(err))
		})
	return nil
}

func (b *Backends) openRedis(cfg *config.Config) {
	if cfg.Redis.Disabled {
		b.log.Info("redis disabled")
		return
	}

	redisCfg := redis.DefaultConfig()
	redisCfg.URL = cfg.Redis.URL
	if cfg.Redis.Host != "" {
		redisCfg.Host = cfg.Redis.Host
	}
	if cfg.Redis.Port > 0 {
		redisCfg.Port = cfg.Redis.Port
	}
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	if cfg.Redis.PoolSize > 0 {
		redisCfg.PoolSize = cfg.Redis.PoolSize
	}
	if cfg.Redis.MinIdleConns > 0 {
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	}
	if cfg.Redis.DialTimeout > 0 {
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
	}
	if cfg.Redis.ReadTimeout > 0 {
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	}
	if cfg.Redis.WriteTimeout > 0 {
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout
	}

	cache, err := redis.NewCache(redisCfg)
	if err != nil {
		b.log.Warn("redis unavailable, leaderboard cache and rate limit disabled", logger.Err(err))
		return
	}
	b.cache = cache
	b.log.Info("redis connection established")

	if cfg.Features.Enabled(config.FeatureLeaderboardCache) {
		b.Leaderboard = redis.NewLeaderboardCache(cache, b.breaker("redis-leaderboard"))
	}
	if cfg.Features.Enabled(config.FeatureSubmitRateLimit) && cfg.Scoring.SubmitRateLimit > 0 {
		b.Limiter = redis.NewRateLimiter(cache, cfg.Scoring.SubmitRateLimit, cfg.Scoring.SubmitRateWindow, b.breaker("redis-rate-limit"))
	}
}

func (b *Backends) breaker(name string) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(name,
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			b.log.Warn("circuit breaker state changed",
				logger.String("breaker", name), logger.String("from", from.String()), logger.String("to", to.String()))
		}),
	)
}

// Database returns the PostgreSQL pool, or nil with the in-memory store.
func (b *Backends) Database() *postgres.Connection { return b.db }

// Cache returns the Redis client, or nil when Redis is off.
func (b *Backends) Cache() *redis.Cache { return b.cache }

// Close releases the connections.
func (b *Backends) Close() {
	if b.cache != nil {
		if err := b.cache.Close(); err != nil {
			b.log.Warn("closing redis", logger.Err(err))
		}
	}
	if b.db != nil {
		b.db.Close()
	}
}
