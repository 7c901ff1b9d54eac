// Package memory is an in-process implementation of the store, used by tests
// and by local runs without a database. Transactions take the store lock for
// their whole duration and work on a copy that replaces the live state on
// commit.
package memory

import (
	"context"
	"sync"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/group"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/shared"
	"github.com/dailygames/games-hub/internal/domain/streak"
	"github.com/dailygames/games-hub/internal/domain/user"
)

type gameKey struct {
	userID   shared.UserID
	gameType game.Type
}

type scoreKey struct {
	userID   shared.UserID
	gameType game.Type
	date     string
}

type state struct {
	users     map[shared.UserID]*user.User
	usernames map[string]shared.UserID
	scores    map[scoreKey]*score.Score
	streaks   map[gameKey]*streak.Streak
	ratings   map[gameKey]*rating.Rating
	groups    map[shared.GroupID]*group.FriendGroup
}

func newState() *state {
	return &state{
		users:     make(map[shared.UserID]*user.User),
		usernames: make(map[string]shared.UserID),
		scores:    make(map[scoreKey]*score.Score),
		streaks:   make(map[gameKey]*streak.Streak),
		ratings:   make(map[gameKey]*rating.Rating),
		groups:    make(map[shared.GroupID]*group.FriendGroup),
	}
}

// clone copies the maps. Stored values are never mutated in place, so the
// pointers can be shared between the copies.
func (st *state) clone() *state {
	out := newState()
	for k, v := range st.users {
		out.users[k] = v
	}
	for k, v := range st.usernames {
		out.usernames[k] = v
	}
	for k, v := range st.scores {
		out.scores[k] = v
	}
	for k, v := range st.streaks {
		out.streaks[k] = v
	}
	for k, v := range st.ratings {
		out.ratings[k] = v
	}
	for k, v := range st.groups {
		out.groups[k] = v
	}
	return out
}

// Store is an in-memory port.Store.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Repositories returns repositories that lock the store per call.
func (s *Store) Repositories() port.Repositories {
	return repositories(scope{store: s})
}

// WithinTx runs fn against a private copy and publishes it when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, repositories(scope{tx: work})); err != nil {
		return err
	}
	s.st = work
	return nil
}

// scope is either the live store (locked per call) or a transaction copy.
type scope struct {
	store *Store
	tx    *state
}

func (sc scope) read(fn func(st *state)) {
	if sc.tx != nil {
		fn(sc.tx)
		return
	}
	sc.store.mu.RLock()
	defer sc.store.mu.RUnlock()
	fn(sc.store.st)
}

func (sc scope) write(fn func(st *state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	return fn(sc.store.st)
}

func repositories(sc scope) port.Repositories {
	return port.Repositories{
		Users:   &userRepo{sc},
		Scores:  &scoreRepo{sc},
		Streaks: &streakRepo{sc},
		Ratings: &ratingRepo{sc},
		Groups:  &groupRepo{sc},
	}
}
