package remote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaboo-server/game"
	"kaboo-server/moveerrors"
)

func TestEncodeMoveIsTaggedPayload(t *testing.T) {
	data, err := EncodeMove(game.Move{Type: game.MoveDrawFromDeck})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"DRAW_FROM_DECK"}`, string(data))

	data, err = EncodeMove(game.Move{Type: game.MoveSwapWithOwn, OwnCardIndex: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SWAP_WITH_OWN","ownCardIndex":3}`, string(data))

	_, err = EncodeMove(game.Move{Type: "FLY"})
	assert.ErrorIs(t, err, moveerrors.ErrUnknownMove)
}

func TestDecodeMove(t *testing.T) {
	m, err := DecodeMove([]byte(`{"type":"SNAP","cardIndex":2}`))
	require.NoError(t, err)
	assert.Equal(t, game.Move{Type: game.MoveSnap, CardIndex: 2}, m)

	m, err = DecodeMove([]byte(`{"type":"SELECT_EFFECT_CARD","playerIndex":1,"cardIndex":0}`))
	require.NoError(t, err)
	assert.Equal(t, 1, m.PlayerIndex)

	_, err = DecodeMove([]byte(`{"type":"FLY"}`))
	assert.ErrorIs(t, err, moveerrors.ErrUnknownMove)

	_, err = DecodeMove([]byte(`{"type":"PEEK_OWN","cardIndex":-1}`))
	assert.ErrorIs(t, err, moveerrors.ErrInvalidTarget)

	_, err = DecodeMove([]byte(`not json`))
	assert.Error(t, err)
}

func TestRejectedErrorUnwrapsKnownReasons(t *testing.T) {
	var err error = &RejectedError{Reason: moveerrors.ErrNotYourTurn.Error(), Status: 409}
	assert.ErrorIs(t, err, moveerrors.ErrNotYourTurn)
	assert.Contains(t, err.Error(), "not your turn")

	err = &RejectedError{Reason: "server on fire"}
	assert.False(t, errors.Is(err, moveerrors.ErrNotYourTurn))
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "server on fire", rej.Reason)
}

func TestStateCellKeepsNewest(t *testing.T) {
	var c stateCell
	_, ok := c.get()
	assert.False(t, ok)

	assert.True(t, c.offer(game.GameState{Version: 4, TurnNumber: 4}))
	assert.False(t, c.offer(game.GameState{Version: 3, TurnNumber: 3}), "older fetch discarded")
	assert.False(t, c.offer(game.GameState{Version: 4, TurnNumber: 9}), "same version is not reapplied")
	assert.True(t, c.offer(game.GameState{Version: 6, TurnNumber: 6}))

	st, ok := c.get()
	require.True(t, ok)
	assert.Equal(t, 6, st.TurnNumber)
}
