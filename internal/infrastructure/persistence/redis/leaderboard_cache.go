package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/pkg/circuitbreaker"
)

// LeaderboardCache keeps one sorted set per game, member = user ID and
// score = rating, next to a ready marker written by Replace. A set without
// its marker is never served and never grows, so an expired or flushed
// ranking stays cold until it is loaded again in full. Every call goes
// through a circuit breaker so an unavailable Redis costs one fast failure
// instead of a timeout per request.
type LeaderboardCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
}

// NewLeaderboardCache creates a new LeaderboardCache. breaker may be nil.
func NewLeaderboardCache(cache *Cache, breaker *circuitbreaker.CircuitBreaker) *LeaderboardCache {
	if breaker == nil {
		breaker = circuitbreaker.CacheBreaker("leaderboard_cache", nil)
	}
	return &LeaderboardCache{cache: cache, breaker: breaker}
}

var _ port.LeaderboardCache = (*LeaderboardCache)(nil)

// updateIfReady adds one member only while the ready marker exists.
// KEYS[1] = sorted set, KEYS[2] = ready marker,
// ARGV[1] = rating, ARGV[2] = user ID, ARGV[3] = TTL in seconds.
var updateIfReady = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 0 then
	return 0
end
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[2])
redis.call("EXPIRE", KEYS[1], ARGV[3])
redis.call("EXPIRE", KEYS[2], ARGV[3])
return 1
`)

// UpdateRating sets the rating of one user. O(log N). It is a no-op while
// the ranking of the game is cold.
func (l *LeaderboardCache) UpdateRating(ctx context.Context, gameType game.Type, userID shared.UserID, rating int) error {
	keys := []string{LeaderboardKey(gameType.String()), LeaderboardReadyKey(gameType.String())}
	ttl := int64(TTLLeaderboard / time.Second)
	return l.breaker.Execute(ctx, func(ctx context.Context) error {
		if err := updateIfReady.Run(ctx, l.cache.client, keys, rating, userID.String(), ttl).Err(); err != nil {
			return fmt.Errorf("leaderboard_cache: update %s: %w", gameType, err)
		}
		return nil
	})
}

// Top returns the best limit entries, highest rating first. Equal ratings
// are ordered by user ID descending, as ZREVRANGE does. ok is false while
// the ready marker is missing.
func (l *LeaderboardCache) Top(ctx context.Context, gameType game.Type, limit int) ([]port.LeaderboardEntry, bool, error) {
	if limit <= 0 {
		return nil, false, nil
	}
	key := LeaderboardKey(gameType.String())
	readyKey := LeaderboardReadyKey(gameType.String())

	var (
		ready int64
		zs    []redis.Z
	)
	err := l.breaker.Execute(ctx, func(ctx context.Context) error {
		var (
			exists *redis.IntCmd
			top    *redis.ZSliceCmd
		)
		_, err := l.cache.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			exists = pipe.Exists(ctx, readyKey)
			top = pipe.ZRevRangeWithScores(ctx, key, 0, int64(limit-1))
			return nil
		})
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("leaderboard_cache: top %s: %w", gameType, err)
		}
		ready, zs = exists.Val(), top.Val()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if ready == 0 {
		return nil, false, nil
	}

	entries := make([]port.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, port.LeaderboardEntry{UserID: shared.UserID(member), Rating: int(z.Score)})
	}
	return entries, true, nil
}

// Replace swaps the ranking of one game atomically and marks it ready. An
// empty ranking is ready too.
func (l *LeaderboardCache) Replace(ctx context.Context, gameType game.Type, entries []port.LeaderboardEntry) error {
	key := LeaderboardKey(gameType.String())
	readyKey := LeaderboardReadyKey(gameType.String())

	members := make([]redis.Z, len(entries))
	for i, e := range entries {
		members[i] = redis.Z{Score: float64(e.Rating), Member: e.UserID.String()}
	}

	return l.breaker.Execute(ctx, func(ctx context.Context) error {
		_, err := l.cache.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(members) > 0 {
				pipe.ZAdd(ctx, key, members...)
				pipe.Expire(ctx, key, TTLLeaderboard)
			}
			pipe.Set(ctx, readyKey, len(members), TTLLeaderboard)
			return nil
		})
		if err != nil {
			return fmt.Errorf("leaderboard_cache: replace %s: %w", gameType, err)
		}
		return nil
	})
}
