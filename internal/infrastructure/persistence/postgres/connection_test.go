package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "db.internal"
	cfg.Password = "secret"

	assert.Equal(t,
		"host=db.internal port=5432 dbname=gameshub user=postgres password=secret sslmode=disable connect_timeout=10",
		cfg.DSN())

	cfg.URL = "postgres://u:p@localhost:5432/hub"
	assert.Equal(t, "postgres://u:p@localhost:5432/hub", cfg.DSN())
}

func TestConfig_PoolConfig(t *testing.T) {
	cfg := Config{URL: "postgres://u:p@localhost:5432/hub", MaxConns: 7, MaxConnLifetime: time.Minute}
	pc, err := cfg.PoolConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, time.Minute, pc.MaxConnLifetime)
}

func TestErrorHelpers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "scores_user_game_date_key"})
	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsTransient(unique))
	assert.Equal(t, "scores_user_game_date_key", ConstraintName(unique))

	assert.True(t, IsTransient(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsTransient(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))

	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.Empty(t, ConstraintName(errors.New("plain")))
}

func TestMigrations_Ordered(t *testing.T) {
	migs := GetMigrations()
	require.NotEmpty(t, migs)
	for i, m := range migs {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
	assert.Contains(t, migs[1].UpSQL, "scores_user_game_date_key UNIQUE (user_id, game_type, game_date)")
}

func TestLockClause(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", lockClause(true))
	assert.Empty(t, lockClause(false))
	assert.Equal(t, " FOR UPDATE OF g", (&GroupRepository{forUpdate: true}).lock())
}
