package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/user"
)

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	q         Querier
	forUpdate bool
}

const userColumns = `
	id, username, display_name,
	global_current_streak, global_longest_streak, global_last_played_date,
	average_rating, created_at, updated_at`

// Get returns a user by ID.
func (r *UserRepository) Get(ctx context.Context, id shared.UserID) (*user.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1` + lockClause(r.forUpdate)

	u, err := scanUser(r.q.QueryRow(ctx, query, id.String()))
	if IsNoRows(err) {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetMany returns the users that exist among ids, in the order of ids.
func (r *UserRepository) GetMany(ctx context.Context, ids []shared.UserID) ([]*user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT` + userColumns + ` FROM users WHERE id = ANY($1::uuid[])`

	rows, err := r.q.Query(ctx, query, shared.UserIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	byID := make(map[shared.UserID]*user.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		byID[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*user.User, 0, len(byID))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// Save inserts or updates a user.
func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, username, display_name,
			global_current_streak, global_longest_streak, global_last_played_date,
			average_rating, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			display_name = EXCLUDED.display_name,
			global_current_streak = EXCLUDED.global_current_streak,
			global_longest_streak = EXCLUDED.global_longest_streak,
			global_last_played_date = EXCLUDED.global_last_played_date,
			average_rating = EXCLUDED.average_rating,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.q.Exec(ctx, query,
		u.ID.String(),
		u.Username,
		u.DisplayName,
		u.GlobalStreak.Current,
		u.GlobalStreak.Longest,
		nullableDate(u.GlobalStreak.LastDate),
		u.AverageRating,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUsernameTaken
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u        user.User
		id       string
		lastDate *time.Time
	)
	err := row.Scan(
		&id,
		&u.Username,
		&u.DisplayName,
		&u.GlobalStreak.Current,
		&u.GlobalStreak.Longest,
		&lastDate,
		&u.AverageRating,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.ID = shared.UserID(id)
	u.GlobalStreak.LastDate = utcDate(lastDate)
	return &u, nil
}
