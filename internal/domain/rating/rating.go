// Package rating contains the per-game skill rating, the engine that moves it
// after every result, and the reconstruction of a user's rating trajectory.
package rating

import (
	"context"
	"time"

	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
)

const (
	// BaseRating is the starting rating of every game.
	BaseRating = 1000

	// MinRating is the rating floor. There is no ceiling.
	MinRating = 0
)

// Rating is the per (user, game) skill rating.
type Rating struct {
	UserID      shared.UserID
	GameType    game.Type
	Value       int
	GamesPlayed int
	GamesWon    int
	UpdatedAt   time.Time
}

// New creates a rating at BaseRating with no games played.
func New(userID shared.UserID, gameType game.Type) *Rating {
	return &Rating{UserID: userID, GameType: gameType, Value: BaseRating}
}

// WinRate returns the share of games won, 0 when none were played.
func (r *Rating) WinRate() float64 {
	if r.GamesPlayed == 0 {
		return 0
	}
	return float64(r.GamesWon) / float64(r.GamesPlayed)
}

// Repository persists ratings.
type Repository interface {
	// Find returns the rating or shared.ErrRatingNotFound.
	Find(ctx context.Context, userID shared.UserID, gameType game.Type) (*Rating, error)

	// ListByUser returns every stored rating of the user.
	ListByUser(ctx context.Context, userID shared.UserID) ([]*Rating, error)

	// Save creates or updates a rating.
	Save(ctx context.Context, r *Rating) error

	// TopByGame returns the highest ratings of one game, best first.
	TopByGame(ctx context.Context, gameType game.Type, limit int) ([]*Rating, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Engine applies game results to ratings using the catalog's curves.
type Engine struct {
	catalog *game.Catalog
}

// NewEngine creates an engine over catalog.
func NewEngine(catalog *game.Catalog) *Engine {
	if catalog == nil {
		catalog = game.Default
	}
	return &Engine{catalog: catalog}
}

// Catalog returns the catalog the engine rates against.
func (e *Engine) Catalog() *game.Catalog {
	return e.catalog
}

// Apply updates r with one result and returns the rating delta. The stored
// value never drops below MinRating; the returned delta is the curve's
// delta before clamping.
func (e *Engine) Apply(r *Rating, res game.Result) (int, error) {
	def, err := e.catalog.Lookup(r.GameType)
	if err != nil {
		return 0, err
	}

	delta := def.Delta(res)

	r.GamesPlayed++
	if def.Won(res) {
		r.GamesWon++
	}
	r.Value = max(MinRating, r.Value+delta)
	r.UpdatedAt = time.Now().UTC()

	return delta, nil
}

// Average returns the integer mean rating over the whole catalog, counting
// BaseRating for every game without a stored rating.
func (e *Engine) Average(ratings []*Rating) int {
	all := e.ForAllGames("", ratings)
	if len(all) == 0 {
		return BaseRating
	}
	total := 0
	for _, r := range all {
		total += r.Value
	}
	return total / len(all)
}

// ForAllGames returns one rating per catalog game, in catalog order, using
// defaults for games the user never played.
func (e *Engine) ForAllGames(userID shared.UserID, ratings []*Rating) []*Rating {
	byType := make(map[game.Type]*Rating, len(ratings))
	for _, r := range ratings {
		byType[r.GameType] = r
	}

	out := make([]*Rating, 0, e.catalog.Size())
	for _, gt := range e.catalog.Types() {
		if r, ok := byType[gt]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, New(userID, gt))
	}
	return out
}
