package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/domain/shared"
)

func TestDefaultCatalog(t *testing.T) {
	assert.Equal(t, 11, Default.Size())
	assert.Equal(t, Wordle, Default.Types()[0])
	assert.Equal(t, Bandle, Default.Types()[10])

	for _, d := range Default.All() {
		assert.NotEmpty(t, d.DisplayName, d.Type)
		assert.NotEmpty(t, d.URL, d.Type)
		assert.NoError(t, d.Validate(), d.Type)
	}
}

func TestNewCatalog_RejectsDegenerateCeiling(t *testing.T) {
	_, err := NewCatalog(Definition{Type: "ONE_SHOT", MaxAttempts: 1, Curve: CurveAttemptCeiling})

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidDefinition)
	assert.True(t, shared.IsValidation(err))

	assert.Panics(t, func() {
		MustCatalog(Definition{Type: "ZERO", MaxAttempts: 0, Curve: CurveAttemptCeiling})
	})
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	def := Definition{Type: Wordle, MaxAttempts: 6, Curve: CurveAttemptCeiling}

	_, err := NewCatalog(def, def)

	assert.ErrorIs(t, err, shared.ErrDuplicateGameEntry)
}

func TestParseType(t *testing.T) {
	gt, err := ParseType(" minute_cryptic ")
	require.NoError(t, err)
	assert.Equal(t, MinuteCryptic, gt)

	_, err = ParseType("CHESS")
	assert.ErrorIs(t, err, shared.ErrUnknownGameType)
	assert.True(t, shared.IsValidation(err))
}
