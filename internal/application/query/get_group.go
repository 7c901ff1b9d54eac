package query

import (
	"context"
	"fmt"
	"time"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/group"
	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
	"github.com/dailygames/games-hub/internal/domain/user"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GROUP QUERY
// Group page: members, group streak and today's statistics.
// ══════════════════════════════════════════════════════════════════════════════

// GroupView is a group page.
type GroupView struct {
	Group   *group.FriendGroup
	Members []*user.User

	// LongestGroupStreak is the larger of the stored longest streak and the
	// longest run found in the members' play dates.
	LongestGroupStreak int
	Stats              group.Stats
}

// GetGroupHandler handles group reads.
type GetGroupHandler struct {
	repos port.Repositories
	clock timeutil.Clock
	zone  *time.Location
}

// NewGetGroupHandler creates a new GetGroupHandler.
func NewGetGroupHandler(store port.Store, clock timeutil.Clock, zone *time.Location) *GetGroupHandler {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	return &GetGroupHandler{repos: store.Repositories(), clock: clock, zone: zone}
}

// Handle builds the group page. Only members may view a group.
func (h *GetGroupHandler) Handle(ctx context.Context, viewerID, groupID string) (*GroupView, error) {
	vid, err := shared.NewUserID(viewerID)
	if err != nil {
		return nil, err
	}
	gid, err := shared.NewGroupID(groupID)
	if err != nil {
		return nil, err
	}

	g, err := h.repos.Groups.Get(ctx, gid)
	if err != nil {
		return nil, err
	}
	if !g.IsMember(vid) {
		return nil, shared.ErrMembersOnly
	}

	members, err := h.repos.Users.GetMany(ctx, g.MemberIDs)
	if err != nil {
		return nil, fmt.Errorf("get_group: members: %w", err)
	}

	today := timeutil.TodayIn(h.clock(), h.zone)
	todayScores, err := h.repos.Scores.ListByUsersAndDate(ctx, g.MemberIDs, today)
	if err != nil {
		return nil, fmt.Errorf("get_group: today's scores: %w", err)
	}

	playDates := make(map[shared.UserID][]time.Time, len(members))
	var allDates []time.Time
	for _, m := range members {
		history, err := h.repos.Scores.ListByUser(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("get_group: history of %s: %w", m.ID, err)
		}
		dates := score.PlayDates(history)
		playDates[m.ID] = dates
		allDates = append(allDates, dates...)
	}

	return &GroupView{
		Group:              g,
		Members:            members,
		LongestGroupStreak: max(g.Streak.Longest, streak.LongestRun(allDates)),
		Stats: group.ComputeStats(group.StatsInput{
			Members:     members,
			TodayScores: todayScores,
			PlayDates:   playDates,
			Today:       today,
		}),
	}, nil
}

// ListGroupsHandler lists the groups of a user.
type ListGroupsHandler struct {
	repos port.Repositories
}

// NewListGroupsHandler creates a new ListGroupsHandler.
func NewListGroupsHandler(store port.Store) *ListGroupsHandler {
	return &ListGroupsHandler{repos: store.Repositories()}
}

// Handle returns the groups userID belongs to.
func (h *ListGroupsHandler) Handle(ctx context.Context, userID string) ([]*group.FriendGroup, error) {
	id, err := shared.NewUserID(userID)
	if err != nil {
		return nil, err
	}
	return h.repos.Groups.FindByMember(ctx, id)
}
