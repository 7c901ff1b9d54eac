package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/shared"
)

// ScoreRepository implements score.Repository for PostgreSQL. Scores are
// insert-only, so reads never take row locks; the unique key on
// (user_id, game_type, game_date) rejects concurrent duplicates.
type ScoreRepository struct {
	q Querier
}

const scoreColumns = `
	id, user_id, game_type, game_date, raw_result, attempts, solved,
	score, time_seconds, rating_change, submitted_at`

// Find returns the score of a user for one game and date.
func (r *ScoreRepository) Find(ctx context.Context, userID shared.UserID, gameType game.Type, date time.Time) (*score.Score, error) {
	query := `SELECT` + scoreColumns + `
		FROM scores
		WHERE user_id = $1 AND game_type = $2 AND game_date = $3`

	s, err := scanScore(r.q.QueryRow(ctx, query, userID.String(), gameType.String(), date))
	if IsNoRows(err) {
		return nil, shared.ErrScoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find score: %w", err)
	}
	return s, nil
}

// Save inserts a score.
func (r *ScoreRepository) Save(ctx context.Context, s *score.Score) error {
	query := `
		INSERT INTO scores (
			id, user_id, game_type, game_date, raw_result, attempts, solved,
			score, time_seconds, rating_change, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.Exec(ctx, query,
		s.ID,
		s.UserID.String(),
		s.GameType.String(),
		s.GameDate,
		s.RawResult,
		s.Attempts,
		s.Solved,
		s.Score,
		s.TimeSeconds,
		s.RatingChange,
		s.SubmittedAt,
	)
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			return shared.ErrDuplicateSubmission
		case IsForeignKeyViolation(err):
			return shared.ErrUserNotFound
		}
		return fmt.Errorf("failed to save score: %w", err)
	}
	return nil
}

// ListByUser returns every score of a user, newest game date first.
func (r *ScoreRepository) ListByUser(ctx context.Context, userID shared.UserID) ([]*score.Score, error) {
	query := `SELECT` + scoreColumns + `
		FROM scores
		WHERE user_id = $1
		ORDER BY game_date DESC, submitted_at DESC`

	return r.list(ctx, query, userID.String())
}

// ListByDate returns every score of one date, latest submission first.
func (r *ScoreRepository) ListByDate(ctx context.Context, date time.Time) ([]*score.Score, error) {
	query := `SELECT` + scoreColumns + `
		FROM scores
		WHERE game_date = $1
		ORDER BY submitted_at DESC`

	return r.list(ctx, query, date)
}

// ListByUsersAndDate returns the scores of several users on one date.
func (r *ScoreRepository) ListByUsersAndDate(ctx context.Context, userIDs []shared.UserID, date time.Time) ([]*score.Score, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `SELECT` + scoreColumns + `
		FROM scores
		WHERE user_id = ANY($1::uuid[]) AND game_date = $2
		ORDER BY submitted_at DESC`

	return r.list(ctx, query, shared.UserIDs(userIDs), date)
}

func (r *ScoreRepository) list(ctx context.Context, query string, args ...any) ([]*score.Score, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var out []*score.Score
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanScore(row pgx.Row) (*score.Score, error) {
	var (
		s        score.Score
		userID   string
		gameType string
		gameDate time.Time
	)
	err := row.Scan(
		&s.ID,
		&userID,
		&gameType,
		&gameDate,
		&s.RawResult,
		&s.Attempts,
		&s.Solved,
		&s.Score,
		&s.TimeSeconds,
		&s.RatingChange,
		&s.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	s.UserID = shared.UserID(userID)
	s.GameType = game.Type(gameType)
	s.GameDate = *utcDate(&gameDate)
	return &s, nil
}
