package rating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/pkg/timeutil"
)

var today = timeutil.Date(2025, time.June, 15)

func daysAgo(n int) time.Time { return timeutil.AddDays(today, -n) }

func TestHistory_Empty(t *testing.T) {
	assert.Empty(t, History(nil, 1012, today))
}

func TestHistory_WalksBackFromCurrent(t *testing.T) {
	changes := []DailyChange{
		{Date: daysAgo(1), Change: 10},
		{Date: daysAgo(3), Change: -5},
		{Date: daysAgo(1), Change: 4},
		{Date: today, Change: 7},
		{Date: daysAgo(2), Change: 0},
	}

	points := History(changes, 1020, today)

	require.Len(t, points, 4)
	assert.Equal(t, []Point{
		{Date: daysAgo(3), Rating: 1011},
		{Date: daysAgo(2), Rating: 1006},
		{Date: daysAgo(1), Rating: 1006},
		{Date: today, Rating: 1020},
	}, points)
}

func TestHistory_InputOrderDoesNotMatter(t *testing.T) {
	a := []DailyChange{{daysAgo(5), 3}, {daysAgo(2), -8}, {daysAgo(9), 12}}
	b := []DailyChange{{daysAgo(9), 12}, {daysAgo(5), 3}, {daysAgo(2), -8}}

	assert.Equal(t, History(a, 990, today), History(b, 990, today))
}

func TestHistory_SumOfDeltasRoundTrip(t *testing.T) {
	var changes []DailyChange
	for i := 1; i <= 20; i++ {
		changes = append(changes, DailyChange{Date: daysAgo(i * 2), Change: (i*7)%23 - 11})
	}
	net := make(map[time.Time]int)
	for _, c := range changes {
		net[c.Date] += c.Change
	}

	const current = 1034
	points := History(changes, current, today)
	require.NotEmpty(t, points)

	for _, p := range points[:len(points)-1] {
		sum := 0
		for d, delta := range net {
			if !d.Before(p.Date) && d.Before(today) {
				sum += delta
			}
		}
		assert.Equal(t, current-p.Rating, sum, "point %s", p.Date)
	}
}

func TestHistory_CappedToMostRecent(t *testing.T) {
	var changes []DailyChange
	for i := 1; i <= 45; i++ {
		changes = append(changes, DailyChange{Date: daysAgo(i), Change: 1})
	}

	points := History(changes, 1100, today)

	require.Len(t, points, HistoryLimit)
	assert.Equal(t, daysAgo(HistoryLimit-1), points[0].Date)
	assert.Equal(t, 1100-(HistoryLimit-1), points[0].Rating)
	assert.Equal(t, today, points[len(points)-1].Date)
}

func TestHistory_OnlyTodayYieldsSinglePoint(t *testing.T) {
	points := History([]DailyChange{{Date: today, Change: 19}}, 1001, today)

	assert.Equal(t, []Point{{Date: today, Rating: 1001}}, points)
}
