package game

import (
	"fmt"

	"kaboo-server/moveerrors"
)

// MoveType tags a move payload on the wire.
type MoveType string

const (
	MoveDrawFromDeck     MoveType = "DRAW_FROM_DECK"
	MoveDiscardDrawn     MoveType = "DISCARD_DRAWN"
	MoveSwapWithOwn      MoveType = "SWAP_WITH_OWN"
	MoveCallKaboo        MoveType = "CALL_KABOO"
	MoveReadyToPlay      MoveType = "READY_TO_PLAY"
	MoveSnap             MoveType = "SNAP"
	MovePeekOwn          MoveType = "PEEK_OWN"
	MoveEndTurn          MoveType = "END_TURN"
	MoveSelectEffectCard MoveType = "SELECT_EFFECT_CARD"
	MoveConfirmEffect    MoveType = "CONFIRM_EFFECT"
	MoveSkipEffect       MoveType = "SKIP_EFFECT"
	MoveActivateTap      MoveType = "ACTIVATE_TAP"
	MoveConfirmTap       MoveType = "CONFIRM_TAP"
	MoveTapSwap          MoveType = "TAP_SWAP"
	MoveSkipTapSwap      MoveType = "SKIP_TAP_SWAP"
	MovePassTap          MoveType = "PASS_TAP"
	MoveStartRound       MoveType = "START_ROUND"
	MoveNextRound        MoveType = "NEXT_ROUND"
	MoveResetMatch       MoveType = "RESET_MATCH"
)

var moveTypes = map[MoveType]bool{
	MoveDrawFromDeck: true, MoveDiscardDrawn: true, MoveSwapWithOwn: true, MoveCallKaboo: true,
	MoveReadyToPlay: true, MoveSnap: true, MovePeekOwn: true, MoveEndTurn: true,
	MoveSelectEffectCard: true, MoveConfirmEffect: true, MoveSkipEffect: true,
	MoveActivateTap: true, MoveConfirmTap: true, MoveTapSwap: true, MoveSkipTapSwap: true,
	MovePassTap: true, MoveStartRound: true, MoveNextRound: true, MoveResetMatch: true,
}

// Valid reports whether t is a known move type.
func (t MoveType) Valid() bool {
	return moveTypes[t]
}

// RoundControl reports whether t starts, advances or resets rounds rather than
// acting for a seat.
func (t MoveType) RoundControl() bool {
	return t == MoveStartRound || t == MoveNextRound || t == MoveResetMatch
}

// Move is one player operation as a tagged payload. Index fields default to 0
// and are omitted from JSON when zero.
type Move struct {
	Type         MoveType `json:"type"`
	OwnCardIndex int      `json:"ownCardIndex,omitempty"`
	CardIndex    int      `json:"cardIndex,omitempty"`
	PlayerIndex  int      `json:"playerIndex,omitempty"`
}

// Apply executes move on behalf of playerIdx. Round-control moves (START_ROUND,
// NEXT_ROUND, RESET_MATCH) are not permission-checked here.
func (g *Game) Apply(playerIdx int, m Move) error {
	switch m.Type {
	case MoveDrawFromDeck:
		return g.DrawCard(playerIdx)
	case MoveDiscardDrawn:
		return g.DiscardHeldCard(playerIdx)
	case MoveSwapWithOwn:
		return g.SwapHeldCard(playerIdx, m.OwnCardIndex)
	case MoveCallKaboo:
		return g.CallKaboo(playerIdx)
	case MoveReadyToPlay:
		return g.SetReady(playerIdx)
	case MovePeekOwn:
		return g.PeekInitial(playerIdx, m.CardIndex)
	case MoveEndTurn:
		return g.EndTurn(playerIdx)
	case MoveSelectEffectCard:
		return g.SelectEffectCard(playerIdx, CardRef{Player: m.PlayerIndex, Index: m.CardIndex})
	case MoveConfirmEffect:
		return g.ConfirmEffect(playerIdx)
	case MoveSkipEffect:
		return g.SkipEffect(playerIdx)
	case MoveActivateTap:
		return g.ActivateTap(playerIdx)
	case MoveSnap:
		return g.snap(playerIdx, m.CardIndex)
	case MoveConfirmTap:
		return g.ConfirmTapDiscard(playerIdx)
	case MoveTapSwap:
		return g.TapSwap(playerIdx, m.OwnCardIndex)
	case MoveSkipTapSwap:
		return g.SkipTapSwap(playerIdx)
	case MovePassTap:
		return g.PassTap(playerIdx)
	case MoveStartRound:
		return g.StartRound()
	case MoveNextRound:
		return g.NextRound()
	case MoveResetMatch:
		g.ResetMatch()
		return nil
	default:
		return fmt.Errorf("%q: %w", m.Type, moveerrors.ErrUnknownMove)
	}
}

// snap selects a tap card, claiming the window first when it is still open.
func (g *Game) snap(playerIdx, cardIndex int) error {
	if _, ok := g.state.CardAt(CardRef{Player: playerIdx, Index: cardIndex}); !ok {
		return moveerrors.ErrInvalidTarget
	}
	if t := g.state.TapState; t != nil && t.Phase == TapWindow {
		if err := g.ActivateTap(playerIdx); err != nil {
			return err
		}
	}
	return g.SelectTapCard(playerIdx, cardIndex)
}
