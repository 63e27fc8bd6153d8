package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaboo-server/moveerrors"
)

// openWindow has player 0 draw and discard the top card (a "5" in these tests).
func openWindow(t *testing.T, g *Game) {
	t.Helper()
	require.NoError(t, g.DrawCard(0))
	require.NoError(t, g.DiscardHeldCard(0))
	require.NotNil(t, g.Snapshot().TapState)
}

func TestWrongTapDrawsPenaltyCard(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "6"), hand("3", "4", "6", "6")}, hand("5", "2", "2"))
	openWindow(t, g)
	stock := len(g.Snapshot().DrawPile)

	require.NoError(t, g.ActivateTap(1))
	require.NoError(t, g.SelectTapCard(1, 0))
	require.NoError(t, g.ConfirmTapDiscard(1))

	s := g.Snapshot()
	assert.Len(t, s.Players[1].Hand, 5)
	assert.False(t, s.Players[1].Hand[4].FaceUp)
	assert.Len(t, s.DrawPile, stock-1)
	assert.Nil(t, s.TapState)
	assert.Equal(t, TurnEnd, s.TurnPhase)
	assert.NoError(t, g.CheckInvariants())
}

func TestEmptyTapSelectionIsPenalised(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "6"), hand("5", "4", "6", "6")}, hand("5", "2"))
	openWindow(t, g)
	require.NoError(t, g.ActivateTap(1))
	require.NoError(t, g.ConfirmTapDiscard(1))
	assert.Len(t, g.Snapshot().Players[1].Hand, 5)
}

func TestTapPenaltyForcesActorToEndTurn(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "6"), hand("3", "4", "6", "6")}, hand("5", "2", "2", "2"))
	openWindow(t, g)
	require.NoError(t, g.EndTurn(0))
	require.NoError(t, g.DrawCard(1))
	held := *g.Snapshot().HeldCard

	require.NoError(t, g.ActivateTap(0))
	require.NoError(t, g.SelectTapCard(0, 0))
	require.NoError(t, g.ConfirmTapDiscard(0))

	s := g.Snapshot()
	assert.Nil(t, s.HeldCard)
	assert.Equal(t, TurnEnd, s.TurnPhase)
	top, _ := s.Top()
	assert.Equal(t, held.ID, top.ID)
	assert.Nil(t, s.TapState, "forced discard opens no window")
	assert.NoError(t, g.CheckInvariants())
}

func TestCorrectTapThenHandOff(t *testing.T) {
	h1 := hand("3", "5", "6", "6")
	g := playingGame(t, [][]Card{hand("2", "3", "4", "6"), h1}, hand("5", "2"))
	openWindow(t, g)

	require.NoError(t, g.ActivateTap(1))
	assert.ErrorIs(t, g.ActivateTap(0), moveerrors.ErrTapTaken)
	assert.ErrorIs(t, g.SelectTapCard(0, 0), moveerrors.ErrNotTapper)
	require.NoError(t, g.SelectTapCard(1, 1))
	require.NoError(t, g.ConfirmTapDiscard(1))

	s := g.Snapshot()
	top, _ := s.Top()
	assert.Equal(t, h1[1].ID, top.ID)
	assert.Len(t, s.Players[1].Hand, 3)
	require.NotNil(t, s.TapState)
	assert.Equal(t, TapSwapping, s.TapState.Phase)
	assert.Equal(t, 1, s.TapState.SwapsRemaining)

	require.NoError(t, g.TapSwap(1, 0))
	s = g.Snapshot()
	assert.Nil(t, s.TapState)
	assert.Len(t, s.Players[0].Hand, 5)
	assert.Equal(t, h1[0].ID, s.Players[0].Hand[4].ID)
	assert.Len(t, s.Players[1].Hand, 2)
	assert.NoError(t, g.CheckInvariants())
}

func TestTapMultipleMatchingCards(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "6"), hand("5", "5", "6", "6")}, hand("5", "2"))
	openWindow(t, g)
	require.NoError(t, g.ActivateTap(1))
	require.NoError(t, g.SelectTapCard(1, 0))
	require.NoError(t, g.SelectTapCard(1, 1))
	require.NoError(t, g.ConfirmTapDiscard(1))
	assert.Equal(t, 2, g.Snapshot().TapState.SwapsRemaining)

	require.NoError(t, g.SkipTapSwap(1))
	s := g.Snapshot()
	assert.Nil(t, s.TapState)
	assert.Len(t, s.Players[1].Hand, 2)
	assert.Len(t, s.Players[0].Hand, 4)
}

func TestTappingOwnDiscardHasNoHandOff(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "5"), hand("3", "4", "6", "6")}, hand("5", "2"))
	openWindow(t, g)
	require.NoError(t, g.ActivateTap(0))
	require.NoError(t, g.SelectTapCard(0, 3))
	require.NoError(t, g.ConfirmTapDiscard(0))
	s := g.Snapshot()
	assert.Nil(t, s.TapState)
	assert.Len(t, s.Players[0].Hand, 3)
	assert.Equal(t, TurnEnd, s.TurnPhase)
}

func TestTapBlockedDuringEffect(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "5"), hand("J", "4", "6", "6")}, hand("J"))
	require.NoError(t, g.DrawCard(0))
	require.NoError(t, g.DiscardHeldCard(0))
	assert.ErrorIs(t, g.ActivateTap(1), moveerrors.ErrWrongPhase)
	require.NoError(t, g.SkipEffect(0))
	assert.NoError(t, g.ActivateTap(1))
}

func TestNewDiscardSupersedesTap(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "6"), hand("3", "4", "6", "6")}, hand("5", "2", "2"))
	openWindow(t, g)
	require.NoError(t, g.EndTurn(0))
	require.NoError(t, g.ActivateTap(0))
	require.NoError(t, g.DrawCard(1))
	require.NoError(t, g.DiscardHeldCard(1))

	ts := g.Snapshot().TapState
	require.NotNil(t, ts)
	assert.Equal(t, TapWindow, ts.Phase)
	assert.Equal(t, 1, ts.TriggerPlayer)
	assert.Equal(t, Rank("2"), ts.Rank)
	assert.ErrorIs(t, g.ConfirmTapDiscard(0), moveerrors.ErrNotTapper)
}

func TestPassTapClosesWindowWhenAllPassed(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "6"), hand("3", "4", "6", "6"), hand("3", "4", "6", "6")}, hand("5", "2"))
	openWindow(t, g)
	require.NoError(t, g.PassTap(1))
	assert.ErrorIs(t, g.ActivateTap(1), moveerrors.ErrTapClosed)
	require.NotNil(t, g.Snapshot().TapState)
	require.NoError(t, g.PassTap(2))
	assert.Nil(t, g.Snapshot().TapState)
	assert.ErrorIs(t, g.ActivateTap(2), moveerrors.ErrTapClosed)
}

func TestSnapMoveActivatesAndSelects(t *testing.T) {
	g := playingGame(t, [][]Card{hand("2", "3", "4", "6"), hand("3", "5", "6", "6")}, hand("5", "2"))
	openWindow(t, g)
	require.NoError(t, g.Apply(1, Move{Type: MoveSnap, CardIndex: 1}))
	ts := g.Snapshot().TapState
	assert.Equal(t, TapSelecting, ts.Phase)
	assert.Equal(t, 1, ts.Tapper)
	assert.Len(t, ts.Selected, 1)
	require.NoError(t, g.Apply(1, Move{Type: MoveConfirmTap}))
	assert.Equal(t, TapSwapping, g.Snapshot().TapState.Phase)
}
