// Package game defines the closed catalog of supported daily games and the
// rating curve each of them is scored on.
package game

import (
	"fmt"
	"strings"

	"github.com/dailygames/games-hub/internal/domain/shared"
)

// Type identifies a game in the catalog.
type Type string

const (
	Wordle        Type = "WORDLE"
	Connections   Type = "CONNECTIONS"
	Contexto      Type = "CONTEXTO"
	Semantle      Type = "SEMANTLE"
	Horse         Type = "HORSE"
	Travle        Type = "TRAVLE"
	Worldle       Type = "WORLDLE"
	MinuteCryptic Type = "MINUTE_CRYPTIC"
	Countryle     Type = "COUNTRYLE"
	Spotle        Type = "SPOTLE"
	Bandle        Type = "BANDLE"
)

// String returns the string representation.
func (t Type) String() string {
	return string(t)
}

// ParseType normalizes s and resolves it against the default catalog.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if _, err := Default.Lookup(t); err != nil {
		return "", err
	}
	return t, nil
}

// Curve selects the performance function a game is rated with.
type Curve int

const (
	// CurveAttemptCeiling rates solves by how many of MaxAttempts were used.
	CurveAttemptCeiling Curve = iota
	// CurveScoreBased rates a 0-100 score; every play counts as a win.
	CurveScoreBased
	// CurveMistakeCounted rates by mistakes beyond RequiredGuesses free guesses.
	CurveMistakeCounted
	// CurvePenaltyCounted rates by extra tries beyond a perfect run.
	CurvePenaltyCounted
)

// String returns the string representation.
func (c Curve) String() string {
	switch c {
	case CurveAttemptCeiling:
		return "attempt_ceiling"
	case CurveScoreBased:
		return "score_based"
	case CurveMistakeCounted:
		return "mistake_counted"
	case CurvePenaltyCounted:
		return "penalty_counted"
	default:
		return "unknown"
	}
}

// Definition is the static description of one game.
type Definition struct {
	Type        Type
	DisplayName string
	Description string
	URL         string

	// MaxAttempts is the attempt ceiling; also the fallback ceiling for
	// score-based games submitted without a score.
	MaxAttempts int
	Curve       Curve

	// RequiredGuesses is the number of free guesses for CurveMistakeCounted.
	RequiredGuesses int

	// PenaltyPerExtraTry is the delta cost per extra try for CurvePenaltyCounted.
	PenaltyPerExtraTry int
}

// Validate checks a definition for configuration errors.
func (d Definition) Validate() error {
	if d.Type == "" {
		return shared.WrapError("game", "Define", shared.ErrInvalidDefinition, "invalid game definition", fmt.Errorf("empty type"))
	}
	fail := func(reason string) error {
		return shared.WrapError("game", "Define", shared.ErrInvalidDefinition,
			"invalid game definition", fmt.Errorf("%s: %s", d.Type, reason))
	}

	switch d.Curve {
	case CurveAttemptCeiling, CurveScoreBased:
		if d.MaxAttempts <= 1 {
			return fail("max attempts must be greater than 1")
		}
	case CurveMistakeCounted:
		if d.RequiredGuesses <= 0 {
			return fail("required guesses must be positive")
		}
	case CurvePenaltyCounted:
		if d.PenaltyPerExtraTry <= 0 {
			return fail("penalty per extra try must be positive")
		}
	default:
		return fail("unknown curve")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// Catalog is an ordered, immutable set of game definitions.
type Catalog struct {
	defs   []Definition
	byType map[Type]Definition
}

// NewCatalog validates every definition and builds a catalog.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{
		defs:   make([]Definition, 0, len(defs)),
		byType: make(map[Type]Definition, len(defs)),
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byType[d.Type]; dup {
			return nil, shared.WrapError("game", "Define", shared.ErrDuplicateGameEntry,
				"game defined twice", fmt.Errorf("%s", d.Type))
		}
		c.defs = append(c.defs, d)
		c.byType[d.Type] = d
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on a definition error.
func MustCatalog(defs ...Definition) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the definition of t.
func (c *Catalog) Lookup(t Type) (Definition, error) {
	d, ok := c.byType[t]
	if !ok {
		return Definition{}, shared.WrapError("game", "Lookup", shared.ErrUnknownGameType,
			"unknown game type", fmt.Errorf("%q", t))
	}
	return d, nil
}

// All returns the definitions in catalog order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Types returns the game types in catalog order.
func (c *Catalog) Types() []Type {
	out := make([]Type, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.Type
	}
	return out
}

// Size returns the number of games in the catalog.
func (c *Catalog) Size() int {
	return len(c.defs)
}

// Default is the catalog of games the hub supports.
var Default = MustCatalog(
	Definition{Type: Wordle, DisplayName: "Wordle", Description: "Guess the 5-letter word in 6 tries",
		URL: "https://www.nytimes.com/games/wordle", MaxAttempts: 6, Curve: CurveAttemptCeiling},
	Definition{Type: Connections, DisplayName: "Connections", Description: "Group 16 words into 4 categories",
		URL: "https://www.nytimes.com/games/connections", MaxAttempts: 4, Curve: CurveMistakeCounted, RequiredGuesses: 4},
	Definition{Type: Contexto, DisplayName: "Contexto", Description: "Guess the word using semantic similarity",
		URL: "https://contexto.me/", MaxAttempts: 100, Curve: CurveAttemptCeiling},
	Definition{Type: Semantle, DisplayName: "Semantle", Description: "Guess the word using word2vec similarity",
		URL: "https://semantle.com/", MaxAttempts: 100, Curve: CurveAttemptCeiling},
	Definition{Type: Horse, DisplayName: "Horse", Description: "Claim the maximum territory with the number of walls given",
		URL: "https://enclose.horse/", MaxAttempts: 100, Curve: CurveScoreBased},
	Definition{Type: Travle, DisplayName: "Travle", Description: "Find the path between two countries",
		URL: "https://travle.earth/", MaxAttempts: 10, Curve: CurvePenaltyCounted, PenaltyPerExtraTry: 4},
	Definition{Type: Worldle, DisplayName: "Worldle", Description: "Guess the country from its shape",
		URL: "https://worldle.teuteuf.fr/", MaxAttempts: 6, Curve: CurveAttemptCeiling},
	Definition{Type: MinuteCryptic, DisplayName: "Minute Cryptic", Description: "Solve a cryptic crossword clue in under a minute",
		URL: "https://www.minutecryptic.com/", MaxAttempts: 12, Curve: CurveAttemptCeiling},
	Definition{Type: Countryle, DisplayName: "Countryle", Description: "Guess the country from clues",
		URL: "https://countryle.com/", MaxAttempts: 6, Curve: CurveAttemptCeiling},
	Definition{Type: Spotle, DisplayName: "Spotle", Description: "Guess the artist from their top Spotify songs",
		URL: "https://spotle.io/", MaxAttempts: 10, Curve: CurveAttemptCeiling},
	Definition{Type: Bandle, DisplayName: "Bandle", Description: "Guess the song from increasing audio clips",
		URL: "https://bandle.app/", MaxAttempts: 6, Curve: CurveAttemptCeiling},
)
