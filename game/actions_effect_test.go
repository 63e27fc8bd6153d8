package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaboo-server/moveerrors"
)

// discardInto draws the top card for player 0 and discards it, entering its effect.
func discardInto(t *testing.T, g *Game, eff EffectType) {
	t.Helper()
	require.NoError(t, g.DrawCard(0))
	require.NoError(t, g.DiscardHeldCard(0))
	s := g.Snapshot()
	require.Equal(t, TurnEffect, s.TurnPhase)
	require.Equal(t, eff, s.EffectType)
	require.Equal(t, StepSelect, s.EffectStep)
}

func TestPeekOwnRevealsToActorOnly(t *testing.T) {
	h0 := hand("2", "3", "4", "5")
	g := playingGame(t, [][]Card{h0, hand("2", "3", "4", "5")}, hand("7"))
	discardInto(t, g, EffectPeekOwn)

	assert.ErrorIs(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 0}), moveerrors.ErrInvalidTarget)
	assert.ErrorIs(t, g.SelectEffectCard(1, CardRef{Player: 1, Index: 0}), moveerrors.ErrNotYourTurn)
	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 0, Index: 2}))

	s := g.Snapshot()
	assert.Equal(t, TurnEnd, s.TurnPhase)
	assert.Equal(t, EffectNone, s.EffectType)
	assert.True(t, s.PeekedBy(h0[2].ID, 0))
	assert.True(t, g.ViewFor(0).Players[0].Hand[2].Known())
	assert.False(t, g.ViewFor(1).Players[0].Hand[2].Known())
	assert.NoError(t, g.CheckInvariants())
}

func TestPeekOpponentRejectsOwnCard(t *testing.T) {
	h1 := hand("2", "3", "4", "5")
	g := playingGame(t, [][]Card{hand("2", "3", "4", "5"), h1}, hand("10"))
	discardInto(t, g, EffectPeekOpponent)

	assert.ErrorIs(t, g.SelectEffectCard(0, CardRef{Player: 0, Index: 0}), moveerrors.ErrInvalidTarget)
	assert.ErrorIs(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 9}), moveerrors.ErrInvalidTarget)
	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 3}))
	assert.Equal(t, "5", string(g.ViewFor(0).Players[1].Hand[3].Rank))
}

func TestBlindSwapBetweenTwoOpponents(t *testing.T) {
	h1 := hand("2", "3", "4", "5")
	h2 := hand("6", "7", "8", "9")
	g := playingGame(t, [][]Card{hand("A", "A", "A", "A"), h1, h2}, hand("J"))
	discardInto(t, g, EffectBlindSwap)

	assert.ErrorIs(t, g.ConfirmEffect(0), moveerrors.ErrInvalidTarget, "nothing selected")
	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 0}))
	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 2, Index: 1}))
	assert.ErrorIs(t, g.SelectEffectCard(0, CardRef{Player: 2, Index: 2}), moveerrors.ErrInvalidTarget, "third pick")
	require.NoError(t, g.ConfirmEffect(0))

	s := g.Snapshot()
	assert.Equal(t, h2[1].ID, s.Players[1].Hand[0].ID)
	assert.Equal(t, h1[0].ID, s.Players[2].Hand[1].ID)
	assert.Empty(t, s.PeekedCards, "blind swap reveals nothing")
	assert.False(t, g.ViewFor(0).Players[1].Hand[0].Known())
	assert.Equal(t, TurnEnd, s.TurnPhase)
	assert.NoError(t, g.CheckInvariants())
}

func TestBlindSwapToggleDeselects(t *testing.T) {
	g := playingGame(t, [][]Card{hand("A", "A", "A", "A"), hand("2", "3", "4", "5")}, hand("J"))
	discardInto(t, g, EffectBlindSwap)
	ref := CardRef{Player: 1, Index: 2}
	require.NoError(t, g.SelectEffectCard(0, ref))
	require.NoError(t, g.SelectEffectCard(0, ref))
	assert.Empty(t, g.Snapshot().SelectedCards)
	assert.ErrorIs(t, g.ConfirmEffect(0), moveerrors.ErrInvalidTarget)
}

func TestSemiBlindSwap(t *testing.T) {
	h0 := hand("A", "2", "3", "4")
	h1 := hand("K", "K", "K", "K")
	g := playingGame(t, [][]Card{h0, h1}, hand("Q"))
	discardInto(t, g, EffectSemiBlindSwap)

	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 0}))
	assert.ErrorIs(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 1}), moveerrors.ErrInvalidTarget)
	require.NoError(t, g.ConfirmEffect(0))

	s := g.Snapshot()
	assert.Equal(t, StepAction, s.EffectStep)
	assert.True(t, g.ViewFor(0).Players[1].Hand[0].Known())

	assert.ErrorIs(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 1}), moveerrors.ErrInvalidTarget, "must give an own card")
	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 0, Index: 2}))
	require.NoError(t, g.ConfirmEffect(0))

	s = g.Snapshot()
	assert.Equal(t, h1[0].ID, s.Players[0].Hand[2].ID)
	assert.Equal(t, h0[2].ID, s.Players[1].Hand[0].ID)
	assert.Equal(t, TurnEnd, s.TurnPhase)
	assert.NoError(t, g.CheckInvariants())
}

func TestFullVisionSwapRevealsBothThenSwaps(t *testing.T) {
	h0 := hand("A", "2", "3", "4")
	h1 := hand("5", "6", "7", "8")
	g := playingGame(t, [][]Card{h0, h1}, hand("K"))
	discardInto(t, g, EffectFullVisionSwap)

	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 0, Index: 1}))
	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 3}))
	require.NoError(t, g.ConfirmEffect(0))
	v := g.ViewFor(0)
	assert.True(t, v.Players[0].Hand[1].Known())
	assert.True(t, v.Players[1].Hand[3].Known())
	assert.ErrorIs(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 0}), moveerrors.ErrInvalidTarget)

	require.NoError(t, g.ConfirmEffect(0))
	s := g.Snapshot()
	assert.Equal(t, h1[3].ID, s.Players[0].Hand[1].ID)
	assert.Equal(t, h0[1].ID, s.Players[1].Hand[3].ID)
}

func TestFullVisionSkipAfterRevealKeepsHands(t *testing.T) {
	h0 := hand("A", "2", "3", "4")
	h1 := hand("5", "6", "7", "8")
	g := playingGame(t, [][]Card{h0, h1}, hand("K"))
	discardInto(t, g, EffectFullVisionSwap)
	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 0, Index: 0}))
	require.NoError(t, g.SelectEffectCard(0, CardRef{Player: 1, Index: 0}))
	require.NoError(t, g.ConfirmEffect(0))
	require.NoError(t, g.SkipEffect(0))

	s := g.Snapshot()
	assert.Equal(t, h0[0].ID, s.Players[0].Hand[0].ID)
	assert.Equal(t, h1[0].ID, s.Players[1].Hand[0].ID)
	assert.Equal(t, TurnEnd, s.TurnPhase)
	assert.True(t, s.PeekedBy(h1[0].ID, 0), "reveals outlive the skip until hidden")
}

func TestEffectMovesOutsideEffectRejected(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "5"), hand("2", "3", "4", "5")}, hand("6"))
	assert.ErrorIs(t, g.SkipEffect(0), moveerrors.ErrNoEffect)
	assert.ErrorIs(t, g.ConfirmEffect(0), moveerrors.ErrNoEffect)
	assert.ErrorIs(t, g.SelectEffectCard(0, CardRef{Player: 1}), moveerrors.ErrNoEffect)
}

func TestSwapPathAlsoTriggersEffect(t *testing.T) {
	h0 := hand("J", "2", "3", "4")
	g := playingGame(t, [][]Card{h0, hand("2", "3", "4", "5")}, hand("6"))
	require.NoError(t, g.DrawCard(0))
	require.NoError(t, g.SwapHeldCard(0, 0))
	s := g.Snapshot()
	assert.Equal(t, TurnEffect, s.TurnPhase)
	assert.Equal(t, EffectBlindSwap, s.EffectType)
}
