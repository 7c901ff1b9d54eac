package query

import (
	"context"
	"fmt"
	"time"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORE FEEDS
// Everything submitted for one game day, site-wide or within a group.
// ══════════════════════════════════════════════════════════════════════════════

// FeedItem is one score with the names to show next to it.
type FeedItem struct {
	Score       *score.Score
	Username    string
	DisplayName string
	GameName    string
}

// ScoreFeed is the list of scores of one game day.
type ScoreFeed struct {
	Date  time.Time
	Items []FeedItem
}

// feedBuilder resolves the game day and attaches player and game names.
type feedBuilder struct {
	repos   port.Repositories
	catalog *game.Catalog
	clock   timeutil.Clock
	zone    *time.Location
}

func newFeedBuilder(store port.Store, catalog *game.Catalog, clock timeutil.Clock, zone *time.Location) feedBuilder {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	return feedBuilder{repos: store.Repositories(), catalog: catalog, clock: clock, zone: zone}
}

// day returns date as a calendar day, or today in the game zone when nil.
func (b feedBuilder) day(date *time.Time) time.Time {
	if date == nil {
		return timeutil.TodayIn(b.clock(), b.zone)
	}
	return timeutil.DateOf(*date)
}

func (b feedBuilder) build(ctx context.Context, date time.Time, scores []*score.Score) (*ScoreFeed, error) {
	seen := make(map[shared.UserID]struct{}, len(scores))
	ids := make([]shared.UserID, 0, len(scores))
	for _, s := range scores {
		if _, ok := seen[s.UserID]; ok {
			continue
		}
		seen[s.UserID] = struct{}{}
		ids = append(ids, s.UserID)
	}
	users, err := b.repos.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("score_feed: users: %w", err)
	}
	type names struct{ username, display string }
	byID := make(map[shared.UserID]names, len(users))
	for _, u := range users {
		byID[u.ID] = names{u.Username, u.DisplayName}
	}

	feed := &ScoreFeed{Date: date, Items: make([]FeedItem, 0, len(scores))}
	for _, s := range scores {
		n := byID[s.UserID]
		item := FeedItem{Score: s, Username: n.username, DisplayName: n.display, GameName: s.GameType.String()}
		if def, err := b.catalog.Lookup(s.GameType); err == nil {
			item.GameName = def.DisplayName
		}
		feed.Items = append(feed.Items, item)
	}
	return feed, nil
}

// ListScoresByDateHandler lists every score of one game day.
type ListScoresByDateHandler struct {
	feed feedBuilder
}

// NewListScoresByDateHandler creates a new ListScoresByDateHandler.
func NewListScoresByDateHandler(store port.Store, catalog *game.Catalog, clock timeutil.Clock, zone *time.Location) *ListScoresByDateHandler {
	return &ListScoresByDateHandler{feed: newFeedBuilder(store, catalog, clock, zone)}
}

// Handle returns the scores of date, or of the current game day when date is
// nil, latest submission first.
func (h *ListScoresByDateHandler) Handle(ctx context.Context, date *time.Time) (*ScoreFeed, error) {
	day := h.feed.day(date)
	scores, err := h.feed.repos.Scores.ListByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list_scores: %w", err)
	}
	return h.feed.build(ctx, day, scores)
}

// GroupScoresForDateHandler lists the scores of a group's members on one
// game day.
type GroupScoresForDateHandler struct {
	feed feedBuilder
}

// NewGroupScoresForDateHandler creates a new GroupScoresForDateHandler.
func NewGroupScoresForDateHandler(store port.Store, catalog *game.Catalog, clock timeutil.Clock, zone *time.Location) *GroupScoresForDateHandler {
	return &GroupScoresForDateHandler{feed: newFeedBuilder(store, catalog, clock, zone)}
}

// Handle returns the members' scores of date, or of the current game day when
// date is nil. Only members may read a group feed.
func (h *GroupScoresForDateHandler) Handle(ctx context.Context, viewerID, groupID string, date *time.Time) (*ScoreFeed, error) {
	vid, err := shared.NewUserID(viewerID)
	if err != nil {
		return nil, err
	}
	gid, err := shared.NewGroupID(groupID)
	if err != nil {
		return nil, err
	}

	g, err := h.feed.repos.Groups.Get(ctx, gid)
	if err != nil {
		return nil, err
	}
	if !g.IsMember(vid) {
		return nil, shared.ErrMembersOnly
	}

	day := h.feed.day(date)
	scores, err := h.feed.repos.Scores.ListByUsersAndDate(ctx, g.MemberIDs, day)
	if err != nil {
		return nil, fmt.Errorf("group_scores: %w", err)
	}
	return h.feed.build(ctx, day, scores)
}
