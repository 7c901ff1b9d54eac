package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/domain/shared"
)

func intPtr(v int) *int { return &v }

func mustLookup(t *testing.T, gt Type) Definition {
	t.Helper()
	d, err := Default.Lookup(gt)
	require.NoError(t, err)
	return d
}

func TestDelta_AttemptCeiling(t *testing.T) {
	wordle := mustLookup(t, Wordle)

	tests := []struct {
		name     string
		result   Result
		expected int
	}{
		{"perfect solve", Result{Solved: true, Attempts: 1}, 32},
		{"three attempts", Result{Solved: true, Attempts: 3}, 19},
		{"last attempt", Result{Solved: true, Attempts: 6}, 0},
		{"failed", Result{Solved: false, Attempts: 6}, -32},
		{"solved past the ceiling never loses", Result{Solved: true, Attempts: 9}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, wordle.Delta(tt.result))
		})
	}
}

func TestDelta_ScoreBased(t *testing.T) {
	horse := mustLookup(t, Horse)

	assert.Equal(t, 32, horse.Delta(Result{Score: intPtr(100)}))
	assert.Equal(t, -32, horse.Delta(Result{Score: intPtr(0)}))
	assert.Equal(t, 0, horse.Delta(Result{Score: intPtr(50)}))
	assert.Equal(t, 16, horse.Delta(Result{Score: intPtr(75)}))
	assert.True(t, horse.Won(Result{Solved: false, Score: intPtr(10)}))

	// No score: rated on the 100-attempt ceiling.
	assert.Equal(t, 32, horse.Delta(Result{Solved: true, Attempts: 1}))
	assert.Equal(t, -32, horse.Delta(Result{Solved: false, Attempts: 1}))
}

func TestDelta_MistakeCounted(t *testing.T) {
	connections := mustLookup(t, Connections)

	assert.Equal(t, 32, connections.Delta(Result{Solved: true, Attempts: 4}))
	assert.Equal(t, 24, connections.Delta(Result{Solved: true, Attempts: 5}))
	assert.Equal(t, 16, connections.Delta(Result{Solved: true, Attempts: 6}))
	assert.Equal(t, 8, connections.Delta(Result{Solved: true, Attempts: 7}))
	assert.Equal(t, 0, connections.Delta(Result{Solved: true, Attempts: 8}))
	assert.Equal(t, -32, connections.Delta(Result{Solved: false, Attempts: 8}))
}

func TestDelta_PenaltyCounted(t *testing.T) {
	travle := mustLookup(t, Travle)

	assert.Equal(t, 32, travle.Delta(Result{Solved: true, Attempts: 0}))
	assert.Equal(t, 28, travle.Delta(Result{Solved: true, Attempts: 1}))
	assert.Equal(t, 24, travle.Delta(Result{Solved: true, Attempts: 2}))
	assert.Equal(t, -8, travle.Delta(Result{Solved: true, Attempts: 10}))
	assert.Equal(t, -32, travle.Delta(Result{Solved: true, Attempts: 50}))
	assert.Equal(t, -32, travle.Delta(Result{Solved: false, Attempts: 3}))
}

func TestDelta_AlwaysWithinKFactor(t *testing.T) {
	for _, d := range Default.All() {
		for attempts := 0; attempts <= 120; attempts++ {
			for _, solved := range []bool{true, false} {
				delta := d.Delta(Result{Solved: solved, Attempts: attempts})
				assert.LessOrEqual(t, delta, KFactor, "%s attempts=%d", d.Type, attempts)
				assert.GreaterOrEqual(t, delta, -KFactor, "%s attempts=%d", d.Type, attempts)
			}
		}
	}
}

func TestValidateResult(t *testing.T) {
	wordle := mustLookup(t, Wordle)
	travle := mustLookup(t, Travle)
	horse := mustLookup(t, Horse)

	assert.ErrorIs(t, wordle.ValidateResult(Result{Attempts: 0}), shared.ErrInvalidAttempts)
	assert.NoError(t, travle.ValidateResult(Result{Attempts: 0}))
	assert.ErrorIs(t, horse.ValidateResult(Result{Attempts: 1, Score: intPtr(101)}), shared.ErrInvalidScoreValue)
	assert.NoError(t, horse.ValidateResult(Result{Attempts: 1, Score: intPtr(100)}))

	assert.NoError(t, wordle.ValidateResult(Result{Solved: true, Attempts: 6}))
	assert.ErrorIs(t, wordle.ValidateResult(Result{Solved: true, Attempts: 7}), shared.ErrInvalidAttempts)
	assert.ErrorIs(t, wordle.ValidateResult(Result{Attempts: 7}), shared.ErrInvalidAttempts)
	assert.ErrorIs(t, horse.ValidateResult(Result{Solved: true, Attempts: 101}), shared.ErrInvalidAttempts)
	assert.NoError(t, horse.ValidateResult(Result{Attempts: 101, Score: intPtr(40)}))
	assert.NoError(t, travle.ValidateResult(Result{Solved: true, Attempts: 25}))
}
