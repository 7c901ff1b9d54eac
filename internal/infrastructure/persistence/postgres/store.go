package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dailygames/games-hub/internal/application/port"
)

// Store implements port.Store on a PostgreSQL connection pool.
//
// Repositories handed to a WithinTx callback lock every user, streak, rating
// and group row they read (SELECT ... FOR UPDATE) until the transaction ends.
// Score submission reads the user row first, so concurrent submissions of the
// same user queue behind each other instead of losing updates.
type Store struct {
	conn *Connection
}

// NewStore creates a new Store.
func NewStore(conn *Connection) *Store {
	return &Store{conn: conn}
}

// Repositories returns repositories that run each statement on the pool.
func (s *Store) Repositories() port.Repositories {
	return repositories(s.conn, false)
}

// WithinTx runs fn inside one read-committed transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Repositories) error) error {
	return s.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		return fn(ctx, repositories(tx, true))
	})
}

func repositories(q Querier, forUpdate bool) port.Repositories {
	return port.Repositories{
		Users:   &UserRepository{q: q, forUpdate: forUpdate},
		Scores:  &ScoreRepository{q: q},
		Streaks: &StreakRepository{q: q, forUpdate: forUpdate},
		Ratings: &RatingRepository{q: q, forUpdate: forUpdate},
		Groups:  &GroupRepository{q: q, forUpdate: forUpdate},
	}
}

func lockClause(forUpdate bool) string {
	if forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

// nullableDate converts an optional game date for a DATE column.
func nullableDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return *d
}

// utcDate normalizes a scanned DATE to midnight UTC.
func utcDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	v := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &v
}
