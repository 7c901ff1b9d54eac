package game

import (
	"math"

	"github.com/dailygames/games-hub/internal/domain/shared"
)

// KFactor is the largest rating change a single result can produce.
const KFactor = 32

// MaxScore is the top of the score-based scale.
const MaxScore = 100

// Result is one parsed game result.
type Result struct {
	Solved   bool
	Attempts int
	Score    *int // score-based games only, 0..MaxScore
}

// PerformanceFunc maps a result to a normalized performance in [-1, 1].
// ok is false when the result is a loss rated at the flat -KFactor.
type PerformanceFunc func(d Definition, r Result) (performance float64, ok bool)

// performanceTable is the single place where a curve chooses its formula.
var performanceTable = map[Curve]PerformanceFunc{
	CurveAttemptCeiling: attemptCeilingPerformance,
	CurveScoreBased:     scoreBasedPerformance,
	CurveMistakeCounted: mistakeCountedPerformance,
	CurvePenaltyCounted: penaltyCountedPerformance,
}

// Performance returns the performance function for c.
func Performance(c Curve) PerformanceFunc {
	return performanceTable[c]
}

// attemptCeilingPerformance: 1.0 at one attempt, 0.0 at MaxAttempts.
func attemptCeilingPerformance(d Definition, r Result) (float64, bool) {
	if !r.Solved {
		return 0, false
	}
	p := 1 - float64(r.Attempts-1)/float64(d.MaxAttempts-1)
	return clamp(p, 0, 1), true
}

// scoreBasedPerformance: (score-50)/50. Without a score the game is rated
// on its attempt ceiling instead.
func scoreBasedPerformance(d Definition, r Result) (float64, bool) {
	if r.Score == nil {
		return attemptCeilingPerformance(d, r)
	}
	half := float64(MaxScore) / 2
	return clamp((float64(*r.Score)-half)/half, -1, 1), true
}

// mistakeCountedPerformance: every guess past RequiredGuesses is a mistake.
func mistakeCountedPerformance(d Definition, r Result) (float64, bool) {
	if !r.Solved {
		return 0, false
	}
	required := float64(d.RequiredGuesses)
	mistakes := float64(r.Attempts) - required
	return clamp((required-mistakes)/required, 0, 1), true
}

// penaltyCountedPerformance: attempts counts extra tries, each costing
// PenaltyPerExtraTry rating points.
func penaltyCountedPerformance(d Definition, r Result) (float64, bool) {
	if !r.Solved {
		return 0, false
	}
	delta := KFactor - r.Attempts*d.PenaltyPerExtraTry
	return clamp(float64(delta)/KFactor, -1, 1), true
}

// Won reports whether r counts toward gamesWon.
func (d Definition) Won(r Result) bool {
	if d.Curve == CurveScoreBased && r.Score != nil {
		return true
	}
	return r.Solved
}

// Delta converts a result into a signed rating change in [-KFactor, KFactor].
func (d Definition) Delta(r Result) int {
	perf, ok := Performance(d.Curve)(d, r)
	if !ok {
		return -KFactor
	}
	return int(math.Round(KFactor * perf))
}

// ValidateResult rejects results that no curve can rate. Games rated on
// their attempt ceiling accept at most MaxAttempts.
func (d Definition) ValidateResult(r Result) error {
	minAttempts := 1
	if d.Curve == CurvePenaltyCounted {
		minAttempts = 0
	}
	if r.Attempts < minAttempts {
		return shared.ErrInvalidAttempts
	}
	onCeiling := d.Curve == CurveAttemptCeiling || (d.Curve == CurveScoreBased && r.Score == nil)
	if onCeiling && r.Attempts > d.MaxAttempts {
		return shared.ErrInvalidAttempts
	}
	if r.Score != nil && (*r.Score < 0 || *r.Score > MaxScore) {
		return shared.ErrInvalidScoreValue
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
