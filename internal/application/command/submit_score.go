// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
	"github.com/dailygames/games-hub/pkg/retry"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT SCORE COMMAND
// One daily result in; per-game streak, global streak, rating, score row and
// group streaks out, all committed together.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitScoreCommand contains one submitted game result.
type SubmitScoreCommand struct {
	UserID   string
	GameType string

	// GameDate defaults to the current game day.
	GameDate *time.Time

	RawResult string

	// Attempts defaults to 1.
	Attempts *int
	Solved   bool

	// Score is used by score-based games (0-100).
	Score       *int
	TimeSeconds *int
}

// SubmitScoreResult is what a submission changed.
type SubmitScoreResult struct {
	Score         *score.Score
	RatingChange  int
	NewRating     int
	GameStreak    streak.Counter
	GlobalStreak  streak.Counter
	AverageRating int
	GroupsUpdated int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitScoreHandler handles SubmitScoreCommand.
type SubmitScoreHandler struct {
	store       port.Store
	engine      *rating.Engine
	leaderboard port.LeaderboardCache
	limiter     port.RateLimiter
	retrier     *retry.Retrier
	clock       timeutil.Clock
	zone        *time.Location
	logger      *slog.Logger
}

// SubmitScoreHandlerConfig contains the optional collaborators of the handler.
type SubmitScoreHandlerConfig struct {
	// Leaderboard is refreshed after commit; nil disables it.
	Leaderboard port.LeaderboardCache
	// Limiter throttles submissions per user; nil disables it.
	Limiter port.RateLimiter
	// Retrier re-runs the transaction on transient store errors.
	Retrier *retry.Retrier
	Clock   timeutil.Clock
	// Zone decides the current game day.
	Zone   *time.Location
	Logger *slog.Logger
}

// NewSubmitScoreHandler creates a new SubmitScoreHandler.
func NewSubmitScoreHandler(store port.Store, engine *rating.Engine, config SubmitScoreHandlerConfig) *SubmitScoreHandler {
	if config.Retrier == nil {
		config.Retrier = retry.Once()
	}
	if config.Clock == nil {
		config.Clock = timeutil.SystemClock
	}
	if config.Zone == nil {
		config.Zone = timeutil.GameZone
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &SubmitScoreHandler{
		store:       store,
		engine:      engine,
		leaderboard: config.Leaderboard,
		limiter:     config.Limiter,
		retrier:     config.Retrier,
		clock:       config.Clock,
		zone:        config.Zone,
		logger:      config.Logger,
	}
}

// submission is a validated command.
type submission struct {
	userID shared.UserID
	def    game.Definition
	date   time.Time
	score  *score.Score
}

// Handle executes the submit score command.
func (h *SubmitScoreHandler) Handle(ctx context.Context, cmd SubmitScoreCommand) (*SubmitScoreResult, error) {
	sub, err := h.validate(cmd)
	if err != nil {
		return nil, fmt.Errorf("submit_score: %w", err)
	}

	if err := h.checkRateLimit(ctx, sub.userID); err != nil {
		return nil, err
	}

	var result *SubmitScoreResult
	err = h.retrier.Do(ctx, func(ctx context.Context) error {
		return h.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
			var txErr error
			result, txErr = h.apply(ctx, tx, sub)
			return txErr
		})
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateSubmission) {
			h.logger.Info("duplicate score submission rejected",
				"user_id", sub.userID, "game_type", sub.def.Type, "game_date", timeutil.FormatDate(sub.date))
		}
		return nil, err
	}

	h.refreshLeaderboard(ctx, sub, result.NewRating)

	h.logger.Info("score submitted",
		"user_id", sub.userID,
		"game_type", sub.def.Type,
		"game_date", timeutil.FormatDate(sub.date),
		"rating_change", result.RatingChange,
		"rating", result.NewRating,
		"game_streak", result.GameStreak.Current,
		"global_streak", result.GlobalStreak.Current,
		"groups_updated", result.GroupsUpdated,
	)

	return result, nil
}

func (h *SubmitScoreHandler) validate(cmd SubmitScoreCommand) (*submission, error) {
	userID, err := shared.NewUserID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	gameType, err := game.ParseType(cmd.GameType)
	if err != nil {
		return nil, err
	}
	def, err := h.engine.Catalog().Lookup(gameType)
	if err != nil {
		return nil, err
	}

	date := timeutil.TodayIn(h.clock(), h.zone)
	if cmd.GameDate != nil {
		date = timeutil.DateOf(*cmd.GameDate)
	}
	attempts := 1
	if cmd.Attempts != nil {
		attempts = *cmd.Attempts
	}

	s, err := score.New(score.NewScoreParams{
		ID:          uuid.New().String(),
		UserID:      userID,
		GameType:    gameType,
		GameDate:    date,
		RawResult:   cmd.RawResult,
		Attempts:    attempts,
		Solved:      cmd.Solved,
		Score:       cmd.Score,
		TimeSeconds: cmd.TimeSeconds,
	})
	if err != nil {
		return nil, err
	}
	if err := def.ValidateResult(s.Result()); err != nil {
		return nil, err
	}

	return &submission{userID: userID, def: def, date: date, score: s}, nil
}

func (h *SubmitScoreHandler) checkRateLimit(ctx context.Context, userID shared.UserID) error {
	if h.limiter == nil {
		return nil
	}
	allowed, err := h.limiter.Allow(ctx, "submit:"+userID.String())
	if err != nil {
		// Fails open.
		h.logger.Warn("rate limiter unavailable", "user_id", userID, "error", err)
		return nil
	}
	if !allowed {
		return shared.ErrSubmitRateLimited
	}
	return nil
}

// apply runs inside the transaction. The order of the steps is fixed:
// duplicate check, per-game streak, global streak, rating, score row, groups.
func (h *SubmitScoreHandler) apply(ctx context.Context, tx port.Repositories, sub *submission) (*SubmitScoreResult, error) {
	u, err := tx.Users.Get(ctx, sub.userID)
	if err != nil {
		return nil, err
	}

	switch _, err := tx.Scores.Find(ctx, sub.userID, sub.def.Type, sub.date); {
	case err == nil:
		return nil, shared.ErrDuplicateSubmission
	case !shared.IsNotFound(err):
		return nil, fmt.Errorf("submit_score: find score: %w", err)
	}

	// Per-game streak.
	gameStreak, err := tx.Streaks.Find(ctx, sub.userID, sub.def.Type)
	if shared.IsNotFound(err) {
		gameStreak, err = streak.New(sub.userID, sub.def.Type), nil
	}
	if err != nil {
		return nil, fmt.Errorf("submit_score: find streak: %w", err)
	}
	gameStreak.Advance(sub.date)
	if err := tx.Streaks.Save(ctx, gameStreak); err != nil {
		return nil, fmt.Errorf("submit_score: save streak: %w", err)
	}

	// Global day streak.
	u.RecordPlay(sub.date)

	// Rating.
	r, err := tx.Ratings.Find(ctx, sub.userID, sub.def.Type)
	if shared.IsNotFound(err) {
		r, err = rating.New(sub.userID, sub.def.Type), nil
	}
	if err != nil {
		return nil, fmt.Errorf("submit_score: find rating: %w", err)
	}
	s := sub.score
	delta, err := h.engine.Apply(r, s.Result())
	if err != nil {
		return nil, err
	}
	if err := tx.Ratings.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("submit_score: save rating: %w", err)
	}
	ratings, err := tx.Ratings.ListByUser(ctx, sub.userID)
	if err != nil {
		return nil, fmt.Errorf("submit_score: list ratings: %w", err)
	}
	u.AverageRating = h.engine.Average(ratings)
	u.UpdatedAt = time.Now().UTC()
	if err := tx.Users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("submit_score: save user: %w", err)
	}

	// Score row, carrying the delta it produced.
	if err := tx.Scores.Save(ctx, s.WithRatingChange(delta)); err != nil {
		if errors.Is(err, shared.ErrDuplicateSubmission) {
			return nil, err
		}
		return nil, fmt.Errorf("submit_score: save score: %w", err)
	}

	// Group streaks.
	groups, err := tx.Groups.FindByMember(ctx, sub.userID)
	if err != nil {
		return nil, fmt.Errorf("submit_score: find groups: %w", err)
	}
	updated := 0
	for _, g := range groups {
		if !g.RecordPlay(sub.date) {
			continue
		}
		if err := tx.Groups.Save(ctx, g); err != nil {
			return nil, fmt.Errorf("submit_score: save group %s: %w", g.ID, err)
		}
		updated++
	}

	return &SubmitScoreResult{
		Score:         s,
		RatingChange:  delta,
		NewRating:     r.Value,
		GameStreak:    gameStreak.Counter,
		GlobalStreak:  u.GlobalStreak,
		AverageRating: u.AverageRating,
		GroupsUpdated: updated,
	}, nil
}

func (h *SubmitScoreHandler) refreshLeaderboard(ctx context.Context, sub *submission, value int) {
	if h.leaderboard == nil {
		return
	}
	if err := h.leaderboard.UpdateRating(ctx, sub.def.Type, sub.userID, value); err != nil {
		h.logger.Warn("leaderboard cache update failed",
			"user_id", sub.userID, "game_type", sub.def.Type, "error", err)
	}
}
