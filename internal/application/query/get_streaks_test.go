package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/shared"
)

func TestGetStreaks(t *testing.T) {
	w := newWorld()
	id := w.register(t, "alice", "")

	w.play(t, id, game.Worldle, 2, 2)
	w.play(t, id, game.Wordle, 1, 4)
	w.play(t, id, game.Wordle, 0, 3)

	h := NewGetStreaksHandler(w.store, game.Default)
	st, err := h.Handle(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, 3, st.Global.Current)
	require.Len(t, st.Games, 2)

	// Catalog order, not play order.
	assert.Equal(t, game.Wordle, st.Games[0].GameType)
	assert.Equal(t, "Wordle", st.Games[0].DisplayName)
	assert.Equal(t, 2, st.Games[0].Current)
	assert.Equal(t, game.Worldle, st.Games[1].GameType)
	assert.Equal(t, 1, st.Games[1].Longest)
}

func TestGetStreaks_Errors(t *testing.T) {
	h := NewGetStreaksHandler(newWorld().store, game.Default)

	_, err := h.Handle(context.Background(), "not-a-uuid")
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), "0b8c5a34-1f4e-4c47-9a3e-8f2d1c6b7aff")
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}
