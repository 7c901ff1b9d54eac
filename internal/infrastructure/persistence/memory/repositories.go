package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/group"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
	"github.com/dailygames/games-hub/internal/domain/user"
	"github.com/dailygames/games-hub/pkg/timeutil"
)

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

type userRepo struct{ sc scope }

func (r *userRepo) Get(_ context.Context, id shared.UserID) (*user.User, error) {
	var out *user.User
	r.sc.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			c := *u
			out = &c
		}
	})
	if out == nil {
		return nil, shared.ErrUserNotFound
	}
	return out, nil
}

func (r *userRepo) GetMany(_ context.Context, ids []shared.UserID) ([]*user.User, error) {
	out := make([]*user.User, 0, len(ids))
	r.sc.read(func(st *state) {
		for _, id := range ids {
			if u, ok := st.users[id]; ok {
				c := *u
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *userRepo) Save(_ context.Context, u *user.User) error {
	return r.sc.write(func(st *state) error {
		name := strings.ToLower(u.Username)
		if owner, taken := st.usernames[name]; taken && owner != u.ID {
			return shared.ErrUsernameTaken
		}
		if prev, ok := st.users[u.ID]; ok {
			delete(st.usernames, strings.ToLower(prev.Username))
		}
		c := *u
		st.users[u.ID] = &c
		st.usernames[name] = u.ID
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Scores
// ─────────────────────────────────────────────────────────────────────────────

type scoreRepo struct{ sc scope }

func keyOf(userID shared.UserID, gameType game.Type, date time.Time) scoreKey {
	return scoreKey{userID: userID, gameType: gameType, date: timeutil.FormatDate(date)}
}

func copyScore(s *score.Score) *score.Score {
	c := *s
	return &c
}

func (r *scoreRepo) Find(_ context.Context, userID shared.UserID, gameType game.Type, date time.Time) (*score.Score, error) {
	var out *score.Score
	r.sc.read(func(st *state) {
		if s, ok := st.scores[keyOf(userID, gameType, date)]; ok {
			out = copyScore(s)
		}
	})
	if out == nil {
		return nil, shared.ErrScoreNotFound
	}
	return out, nil
}

func (r *scoreRepo) Save(_ context.Context, s *score.Score) error {
	return r.sc.write(func(st *state) error {
		key := keyOf(s.UserID, s.GameType, s.GameDate)
		if _, exists := st.scores[key]; exists {
			return shared.ErrDuplicateSubmission
		}
		st.scores[key] = copyScore(s)
		return nil
	})
}

func (r *scoreRepo) ListByUser(_ context.Context, userID shared.UserID) ([]*score.Score, error) {
	var out []*score.Score
	r.sc.read(func(st *state) {
		for _, s := range st.scores {
			if s.UserID == userID {
				out = append(out, copyScore(s))
			}
		}
	})
	sortNewestFirst(out)
	return out, nil
}

func (r *scoreRepo) ListByDate(_ context.Context, date time.Time) ([]*score.Score, error) {
	var out []*score.Score
	r.sc.read(func(st *state) {
		for _, s := range st.scores {
			if timeutil.IsSameDay(s.GameDate, date) {
				out = append(out, copyScore(s))
			}
		}
	})
	sortNewestFirst(out)
	return out, nil
}

func (r *scoreRepo) ListByUsersAndDate(_ context.Context, userIDs []shared.UserID, date time.Time) ([]*score.Score, error) {
	var out []*score.Score
	r.sc.read(func(st *state) {
		for _, s := range st.scores {
			if slices.Contains(userIDs, s.UserID) && timeutil.IsSameDay(s.GameDate, date) {
				out = append(out, copyScore(s))
			}
		}
	})
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(scores []*score.Score) {
	sort.Slice(scores, func(i, j int) bool {
		if !scores[i].GameDate.Equal(scores[j].GameDate) {
			return scores[i].GameDate.After(scores[j].GameDate)
		}
		return scores[i].SubmittedAt.After(scores[j].SubmittedAt)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Streaks and ratings
// ─────────────────────────────────────────────────────────────────────────────

type streakRepo struct{ sc scope }

func (r *streakRepo) Find(_ context.Context, userID shared.UserID, gameType game.Type) (*streak.Streak, error) {
	var out *streak.Streak
	r.sc.read(func(st *state) {
		if s, ok := st.streaks[gameKey{userID, gameType}]; ok {
			c := *s
			out = &c
		}
	})
	if out == nil {
		return nil, shared.ErrStreakNotFound
	}
	return out, nil
}

func (r *streakRepo) Save(_ context.Context, s *streak.Streak) error {
	return r.sc.write(func(st *state) error {
		c := *s
		st.streaks[gameKey{s.UserID, s.GameType}] = &c
		return nil
	})
}

func (r *streakRepo) ListByUser(_ context.Context, userID shared.UserID) ([]*streak.Streak, error) {
	var out []*streak.Streak
	r.sc.read(func(st *state) {
		for k, s := range st.streaks {
			if k.userID == userID {
				c := *s
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].GameType < out[j].GameType })
	return out, nil
}

type ratingRepo struct{ sc scope }

func (r *ratingRepo) Find(_ context.Context, userID shared.UserID, gameType game.Type) (*rating.Rating, error) {
	var out *rating.Rating
	r.sc.read(func(st *state) {
		if v, ok := st.ratings[gameKey{userID, gameType}]; ok {
			c := *v
			out = &c
		}
	})
	if out == nil {
		return nil, shared.ErrRatingNotFound
	}
	return out, nil
}

func (r *ratingRepo) ListByUser(_ context.Context, userID shared.UserID) ([]*rating.Rating, error) {
	var out []*rating.Rating
	r.sc.read(func(st *state) {
		for k, v := range st.ratings {
			if k.userID == userID {
				c := *v
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].GameType < out[j].GameType })
	return out, nil
}

func (r *ratingRepo) Save(_ context.Context, v *rating.Rating) error {
	return r.sc.write(func(st *state) error {
		c := *v
		st.ratings[gameKey{v.UserID, v.GameType}] = &c
		return nil
	})
}

func (r *ratingRepo) TopByGame(_ context.Context, gameType game.Type, limit int) ([]*rating.Rating, error) {
	var out []*rating.Rating
	r.sc.read(func(st *state) {
		for k, v := range st.ratings {
			if k.gameType == gameType {
				c := *v
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Groups
// ─────────────────────────────────────────────────────────────────────────────

type groupRepo struct{ sc scope }

func copyGroup(g *group.FriendGroup) *group.FriendGroup {
	c := *g
	c.MemberIDs = slices.Clone(g.MemberIDs)
	return &c
}

func (r *groupRepo) Get(_ context.Context, id shared.GroupID) (*group.FriendGroup, error) {
	var out *group.FriendGroup
	r.sc.read(func(st *state) {
		if g, ok := st.groups[id]; ok {
			out = copyGroup(g)
		}
	})
	if out == nil {
		return nil, shared.ErrGroupNotFound
	}
	return out, nil
}

func (r *groupRepo) GetByInviteCode(_ context.Context, code string) (*group.FriendGroup, error) {
	var out *group.FriendGroup
	r.sc.read(func(st *state) {
		for _, g := range st.groups {
			if g.InviteCode == code {
				out = copyGroup(g)
				return
			}
		}
	})
	if out == nil {
		return nil, shared.ErrInvalidInviteCode
	}
	return out, nil
}

func (r *groupRepo) FindByMember(_ context.Context, userID shared.UserID) ([]*group.FriendGroup, error) {
	var out []*group.FriendGroup
	r.sc.read(func(st *state) {
		for _, g := range st.groups {
			if g.IsMember(userID) {
				out = append(out, copyGroup(g))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *groupRepo) Save(_ context.Context, g *group.FriendGroup) error {
	return r.sc.write(func(st *state) error {
		st.groups[g.ID] = copyGroup(g)
		return nil
	})
}

func (r *groupRepo) Delete(_ context.Context, id shared.GroupID) error {
	return r.sc.write(func(st *state) error {
		if _, ok := st.groups[id]; !ok {
			return shared.ErrGroupNotFound
		}
		delete(st.groups, id)
		return nil
	})
}
