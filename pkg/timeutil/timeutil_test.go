package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayIn_RollsOverInGameZone(t *testing.T) {
	// 23:30 UTC on Jan 1 is already Jan 2 in Amsterdam (UTC+1 in winter).
	instant := time.Date(2025, time.January, 1, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, Date(2025, time.January, 2), TodayIn(instant, GameZone))
	assert.Equal(t, Date(2025, time.January, 1), TodayIn(instant, time.UTC))
}

func TestDayArithmetic(t *testing.T) {
	d := Date(2024, time.February, 28)

	assert.Equal(t, Date(2024, time.February, 29), AddDays(d, 1))
	assert.Equal(t, Date(2024, time.March, 1), AddDays(d, 2))
	assert.True(t, IsConsecutiveDay(d, Date(2024, time.February, 29)))
	assert.False(t, IsConsecutiveDay(d, Date(2024, time.March, 1)))
	assert.Equal(t, 2, DaysBetween(d, Date(2024, time.March, 1)))
	assert.Equal(t, -1, DaysBetween(d, Date(2024, time.February, 27)))
	assert.True(t, IsSameDay(d, time.Date(2024, time.February, 28, 18, 0, 0, 0, time.UTC)))
}

func TestParseAndFormatDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, Date(2025, time.March, 9), d)
	assert.Equal(t, "2025-03-09", FormatDate(d))

	_, err = ParseDate("09/03/2025")
	assert.Error(t, err)
}
