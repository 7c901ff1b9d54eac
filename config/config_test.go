package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "games-hub", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.UsesPostgres())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "Europe/Amsterdam", cfg.Scoring.Location.String())
	assert.Equal(t, 30, cfg.Scoring.SubmitRateLimit)
	assert.Equal(t, time.Minute, cfg.Scoring.SubmitRateWindow)
	assert.Equal(t, "*/15 * * * *", cfg.Scheduler.LeaderboardRebuildCron)
	assert.True(t, cfg.Features.Enabled(FeatureLeaderboardCache))
}

func TestLoad_DatabaseFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "hub")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://hub:pw@db:5432/gameshub?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.UsesPostgres())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("GAME_TIMEZONE", "Mars/Olympus")
	t.Setenv("SUBMIT_TX_MAX_ATTEMPTS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required in production")
	assert.Contains(t, err.Error(), `GAME_TIMEZONE "Mars/Olympus"`)
	assert.Contains(t, err.Error(), "SUBMIT_TX_MAX_ATTEMPTS")
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.True(t, getEnvBool("X_BOOL", true))
	assert.Equal(t, time.Second, getEnvDuration("X_DUR", time.Second))
}

func TestFeatureFlags(t *testing.T) {
	t.Setenv("FEATURE_SCORING_RATE_LIMIT", "false")
	t.Setenv("FEATURE_GROUPS_STATS", "0")
	t.Setenv("FEATURE_LEADERBOARD_CACHE", "50")

	ff := LoadFeatureFlags()
	assert.False(t, ff.Enabled(FeatureSubmitRateLimit))
	assert.False(t, ff.Enabled(FeatureGroupStats))
	assert.True(t, ff.Enabled(FeatureLeaderboardCache))
	assert.True(t, ff.Enabled(FeatureLeaderboardRebuild))
	assert.False(t, ff.Enabled("unknown"))

	user := "0b8c5a34-1f4e-4c47-9a3e-8f2d1c6b7a01"
	first := ff.IsEnabledFor(FeatureLeaderboardCache, user)
	assert.Equal(t, first, ff.IsEnabledFor(FeatureLeaderboardCache, user), "rollout is stable per user")

	assert.False(t, ff.IsEnabledFor(FeatureSubmitRateLimit, user))

	assert.ErrorIs(t, ff.SetRolloutPercent("unknown", 10), ErrFeatureNotFound)
	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureGroupStats, 101), ErrInvalidRolloutPercent)
	require.NoError(t, ff.SetRolloutPercent(FeatureGroupStats, 100))
	assert.True(t, ff.Enabled(FeatureGroupStats))

	all := ff.All()
	require.Len(t, all, 5)
	assert.Equal(t, FeatureGroupStats, all[0].Name)
}

func TestFeatureFlags_OutOfRangePercentIgnored(t *testing.T) {
	t.Setenv("FEATURE_GROUPS_STATS", "150")
	t.Setenv("FEATURE_PROFILE_RATING_HISTORY", "maybe")

	ff := LoadFeatureFlags()
	assert.True(t, ff.Enabled(FeatureGroupStats))
	assert.True(t, ff.Enabled(FeatureRatingHistory))
}
