package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
)

// ─────────────────────────────────────────────────────────────────────────────
// Streaks
// ─────────────────────────────────────────────────────────────────────────────

// StreakRepository implements streak.Repository for PostgreSQL.
type StreakRepository struct {
	q         Querier
	forUpdate bool
}

// Find returns the streak of a user in one game.
func (r *StreakRepository) Find(ctx context.Context, userID shared.UserID, gameType game.Type) (*streak.Streak, error) {
	query := `
		SELECT user_id, game_type, current_streak, longest_streak, last_played_date
		FROM streaks
		WHERE user_id = $1 AND game_type = $2` + lockClause(r.forUpdate)

	s, err := scanStreak(r.q.QueryRow(ctx, query, userID.String(), gameType.String()))
	if IsNoRows(err) {
		return nil, shared.ErrStreakNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find streak: %w", err)
	}
	return s, nil
}

// Save inserts or updates a streak.
func (r *StreakRepository) Save(ctx context.Context, s *streak.Streak) error {
	query := `
		INSERT INTO streaks (user_id, game_type, current_streak, longest_streak, last_played_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, game_type) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_played_date = EXCLUDED.last_played_date
	`
	_, err := r.q.Exec(ctx, query,
		s.UserID.String(), s.GameType.String(), s.Current, s.Longest, nullableDate(s.LastDate))
	if err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	return nil
}

// ListByUser returns every streak of a user.
func (r *StreakRepository) ListByUser(ctx context.Context, userID shared.UserID) ([]*streak.Streak, error) {
	query := `
		SELECT user_id, game_type, current_streak, longest_streak, last_played_date
		FROM streaks
		WHERE user_id = $1
		ORDER BY game_type`

	rows, err := r.q.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks: %w", err)
	}
	defer rows.Close()

	var out []*streak.Streak
	for rows.Next() {
		s, err := scanStreak(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan streak: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanStreak(row pgx.Row) (*streak.Streak, error) {
	var (
		userID, gameType string
		current, longest int
		lastDate         *time.Time
	)
	if err := row.Scan(&userID, &gameType, &current, &longest, &lastDate); err != nil {
		return nil, err
	}
	return &streak.Streak{
		UserID:   shared.UserID(userID),
		GameType: game.Type(gameType),
		Counter:  streak.Counter{Current: current, Longest: longest, LastDate: utcDate(lastDate)},
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Ratings
// ─────────────────────────────────────────────────────────────────────────────

// RatingRepository implements rating.Repository for PostgreSQL.
type RatingRepository struct {
	q         Querier
	forUpdate bool
}

const ratingColumns = ` user_id, game_type, rating, games_played, games_won, updated_at `

// Find returns the rating of a user in one game.
func (r *RatingRepository) Find(ctx context.Context, userID shared.UserID, gameType game.Type) (*rating.Rating, error) {
	query := `SELECT` + ratingColumns + `FROM ratings WHERE user_id = $1 AND game_type = $2` + lockClause(r.forUpdate)

	v, err := scanRating(r.q.QueryRow(ctx, query, userID.String(), gameType.String()))
	if IsNoRows(err) {
		return nil, shared.ErrRatingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rating: %w", err)
	}
	return v, nil
}

// ListByUser returns the stored ratings of a user.
func (r *RatingRepository) ListByUser(ctx context.Context, userID shared.UserID) ([]*rating.Rating, error) {
	query := `SELECT` + ratingColumns + `FROM ratings WHERE user_id = $1 ORDER BY game_type`
	return r.list(ctx, query, userID.String())
}

// Save inserts or updates a rating.
func (r *RatingRepository) Save(ctx context.Context, v *rating.Rating) error {
	query := `
		INSERT INTO ratings (user_id, game_type, rating, games_played, games_won, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, game_type) DO UPDATE SET
			rating = EXCLUDED.rating,
			games_played = EXCLUDED.games_played,
			games_won = EXCLUDED.games_won,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.q.Exec(ctx, query,
		v.UserID.String(), v.GameType.String(), v.Value, v.GamesPlayed, v.GamesWon, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}
	return nil
}

// TopByGame returns the highest ratings of one game.
func (r *RatingRepository) TopByGame(ctx context.Context, gameType game.Type, limit int) ([]*rating.Rating, error) {
	query := `SELECT` + ratingColumns + `
		FROM ratings
		WHERE game_type = $1
		ORDER BY rating DESC, user_id
		LIMIT $2`
	return r.list(ctx, query, gameType.String(), limit)
}

func (r *RatingRepository) list(ctx context.Context, query string, args ...any) ([]*rating.Rating, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var out []*rating.Rating
	for rows.Next() {
		v, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanRating(row pgx.Row) (*rating.Rating, error) {
	var (
		v                rating.Rating
		userID, gameType string
	)
	if err := row.Scan(&userID, &gameType, &v.Value, &v.GamesPlayed, &v.GamesWon, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.UserID = shared.UserID(userID)
	v.GameType = game.Type(gameType)
	return &v, nil
}
