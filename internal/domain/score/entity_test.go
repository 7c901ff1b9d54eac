package score

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

const userID = shared.UserID("3d2a8c5e-7b61-4f0a-9e3c-1a2b3c4d5e6f")

func TestNew(t *testing.T) {
	seconds := 95
	s, err := New(NewScoreParams{
		ID:          "s1",
		UserID:      userID,
		GameType:    game.Wordle,
		GameDate:    time.Date(2025, time.May, 2, 17, 45, 0, 0, time.UTC),
		RawResult:   "  Wordle 1,413 3/6  ",
		Attempts:    3,
		Solved:      true,
		TimeSeconds: &seconds,
	})

	require.NoError(t, err)
	assert.Equal(t, timeutil.Date(2025, time.May, 2), s.GameDate)
	assert.Equal(t, "Wordle 1,413 3/6", s.RawResult)
	assert.Equal(t, game.Result{Solved: true, Attempts: 3}, s.Result())
	assert.Equal(t, 19, s.WithRatingChange(19).RatingChange)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(NewScoreParams{UserID: "nope"})
	assert.True(t, shared.IsValidation(err))

	_, err = New(NewScoreParams{UserID: userID, RawResult: strings.Repeat("x", MaxRawResultLength+1)})
	assert.ErrorIs(t, err, ErrRawResultTooLong)
	assert.True(t, shared.IsValidation(err))

	negative := -1
	_, err = New(NewScoreParams{UserID: userID, TimeSeconds: &negative})
	assert.ErrorIs(t, err, ErrNegativeTime)
	assert.True(t, shared.IsValidation(err))
}

func TestPlayDates(t *testing.T) {
	d := func(n int) time.Time { return timeutil.Date(2025, time.May, n) }
	scores := []*Score{
		{GameDate: d(3)}, {GameDate: d(7)}, {GameDate: d(3)}, {GameDate: d(5)}, {GameDate: d(7)},
	}

	assert.Equal(t, []time.Time{d(7), d(5), d(3)}, PlayDates(scores))
	assert.Empty(t, PlayDates(nil))
}
