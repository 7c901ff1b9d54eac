// Package score contains the immutable daily result record.
package score

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

// MaxRawResultLength bounds the pasted share text kept with a score.
const MaxRawResultLength = 2000

var (
	// ErrRawResultTooLong is returned when the pasted share text is too large.
	ErrRawResultTooLong = shared.NewDomainError("score", "Validate", shared.ErrValueOutOfRange, "raw result is too long")
	// ErrNegativeTime is returned for a negative solve time.
	ErrNegativeTime = shared.NewDomainError("score", "Validate", shared.ErrValueOutOfRange, "time cannot be negative")
)

// Score is one result for (user, game, game date). At most one exists per key
// and it is never edited after creation.
type Score struct {
	ID          string
	UserID      shared.UserID
	GameType    game.Type
	GameDate    time.Time
	RawResult   string
	Attempts    int
	Solved      bool
	Score       *int
	TimeSeconds *int

	// RatingChange is the delta applied to the game rating by this result.
	RatingChange int

	SubmittedAt time.Time
}

// NewScoreParams contains the parameters for creating a Score.
type NewScoreParams struct {
	ID          string
	UserID      shared.UserID
	GameType    game.Type
	GameDate    time.Time
	RawResult   string
	Attempts    int
	Solved      bool
	Score       *int
	TimeSeconds *int
}

// New creates a score with validation. RatingChange is attached later by the
// rating engine through WithRatingChange.
func New(p NewScoreParams) (*Score, error) {
	if !p.UserID.IsValid() {
		return nil, shared.NewDomainError("score", "New", shared.ErrInvalidID, "invalid user id")
	}
	raw := strings.TrimSpace(p.RawResult)
	if len(raw) > MaxRawResultLength {
		return nil, ErrRawResultTooLong
	}
	if p.TimeSeconds != nil && *p.TimeSeconds < 0 {
		return nil, ErrNegativeTime
	}
	return &Score{
		ID:          p.ID,
		UserID:      p.UserID,
		GameType:    p.GameType,
		GameDate:    timeutil.DateOf(p.GameDate),
		RawResult:   raw,
		Attempts:    p.Attempts,
		Solved:      p.Solved,
		Score:       p.Score,
		TimeSeconds: p.TimeSeconds,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// WithRatingChange sets the delta the submission produced.
func (s *Score) WithRatingChange(delta int) *Score {
	s.RatingChange = delta
	return s
}

// Result returns the fields the rating curves consume.
func (s *Score) Result() game.Result {
	return game.Result{Solved: s.Solved, Attempts: s.Attempts, Score: s.Score}
}

// Repository persists scores. Save must enforce (user, game, date) uniqueness
// atomically and report a collision as shared.ErrDuplicateSubmission.
type Repository interface {
	// Find returns the score for the key or shared.ErrScoreNotFound.
	Find(ctx context.Context, userID shared.UserID, gameType game.Type, date time.Time) (*Score, error)

	// Save inserts a new score.
	Save(ctx context.Context, s *Score) error

	// ListByUser returns all scores of a user, newest game date first.
	ListByUser(ctx context.Context, userID shared.UserID) ([]*Score, error)

	// ListByDate returns every score of one game date, latest submission first.
	ListByDate(ctx context.Context, date time.Time) ([]*Score, error)

	// ListByUsersAndDate returns the scores of the given users on one game date.
	ListByUsersAndDate(ctx context.Context, userIDs []shared.UserID, date time.Time) ([]*Score, error)
}

// PlayDates returns the distinct game dates of scores, newest first.
func PlayDates(scores []*Score) []time.Time {
	seen := make(map[time.Time]struct{}, len(scores))
	dates := make([]time.Time, 0, len(scores))
	for _, s := range scores {
		d := timeutil.DateOf(s.GameDate)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates
}
