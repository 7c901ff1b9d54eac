package rating

import (
	"sort"
	"time"

	"github.com/dailygames/games-hub/pkg/timeutil"
)

// HistoryLimit is the number of most recent points kept in a trajectory.
const HistoryLimit = 30

// DailyChange is one rating delta attributed to a game date.
type DailyChange struct {
	Date   time.Time
	Change int
}

// Point is the rating as of the start of Date.
type Point struct {
	Date   time.Time
	Rating int
}

// History rebuilds a date-ascending trajectory that ends at (today, current),
// walking back over the net delta of each earlier game date. Dates on or after
// today contribute no point of their own. Returns nil when there are no changes.
func History(changes []DailyChange, current int, today time.Time) []Point {
	if len(changes) == 0 {
		return nil
	}
	today = timeutil.DateOf(today)

	net := make(map[time.Time]int, len(changes))
	for _, c := range changes {
		net[timeutil.DateOf(c.Date)] += c.Change
	}

	dates := make([]time.Time, 0, len(net))
	for d := range net {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	// Built newest first, reversed at the end.
	points := []Point{{Date: today, Rating: current}}
	rating := current
	for _, d := range dates {
		if !d.Before(today) {
			continue
		}
		rating -= net[d]
		points = append(points, Point{Date: d, Rating: rating})
		if len(points) == HistoryLimit {
			break
		}
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}
