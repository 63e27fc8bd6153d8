// Package engine defines the operation set shared by locally authoritative and
// networked play. Callers (input surfaces, bots) depend only on Engine.
package engine

import (
	"context"

	"kaboo-server/game"
)

// Submitter commits one move on behalf of a seat.
type Submitter interface {
	Apply(ctx context.Context, seat int, m game.Move) error
}

// Engine is one game as seen by a client. Local and remote implementations differ
// only in how Apply commits a move.
type Engine interface {
	Submitter

	// State returns the game as seen by seat.
	State(ctx context.Context, seat int) (game.GameState, error)
	// Subscribe returns a channel that receives a signal after every state change.
	// Signals coalesce; receivers re-read State. cancel releases the subscription.
	Subscribe() (changes <-chan struct{}, cancel func())

	StartRound(ctx context.Context, seat int) error
	NextRound(ctx context.Context, seat int) error
	PeekOwn(ctx context.Context, seat, handIndex int) error
	ReadyToPlay(ctx context.Context, seat int) error
	DrawCard(ctx context.Context, seat int) error
	DiscardHeldCard(ctx context.Context, seat int) error
	SwapCard(ctx context.Context, seat, handIndex int) error
	CallKaboo(ctx context.Context, seat int) error
	EndTurn(ctx context.Context, seat int) error
	SelectEffectCard(ctx context.Context, seat int, target game.CardRef) error
	ConfirmEffect(ctx context.Context, seat int) error
	SkipEffect(ctx context.Context, seat int) error
	ActivateTap(ctx context.Context, seat int) error
	SelectTapCard(ctx context.Context, seat, handIndex int) error
	ConfirmTap(ctx context.Context, seat int) error
	TapSwap(ctx context.Context, seat, handIndex int) error
	SkipTapSwap(ctx context.Context, seat int) error
	PassTap(ctx context.Context, seat int) error
}

// Ops implements the named operations of Engine on top of a Submitter, so every
// implementation builds moves the same way.
type Ops struct {
	Submitter
}

func (o Ops) do(ctx context.Context, seat int, t game.MoveType) error {
	return o.Apply(ctx, seat, game.Move{Type: t})
}

func (o Ops) StartRound(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveStartRound)
}

func (o Ops) NextRound(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveNextRound)
}

func (o Ops) PeekOwn(ctx context.Context, seat, handIndex int) error {
	return o.Apply(ctx, seat, game.Move{Type: game.MovePeekOwn, CardIndex: handIndex})
}

func (o Ops) ReadyToPlay(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveReadyToPlay)
}

func (o Ops) DrawCard(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveDrawFromDeck)
}

func (o Ops) DiscardHeldCard(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveDiscardDrawn)
}

func (o Ops) SwapCard(ctx context.Context, seat, handIndex int) error {
	return o.Apply(ctx, seat, game.Move{Type: game.MoveSwapWithOwn, OwnCardIndex: handIndex})
}

func (o Ops) CallKaboo(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveCallKaboo)
}

func (o Ops) EndTurn(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveEndTurn)
}

func (o Ops) SelectEffectCard(ctx context.Context, seat int, target game.CardRef) error {
	return o.Apply(ctx, seat, game.Move{Type: game.MoveSelectEffectCard, PlayerIndex: target.Player, CardIndex: target.Index})
}

func (o Ops) ConfirmEffect(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveConfirmEffect)
}

func (o Ops) SkipEffect(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveSkipEffect)
}

func (o Ops) ActivateTap(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveActivateTap)
}

// SelectTapCard toggles a card in the tap selection, claiming an open window first.
func (o Ops) SelectTapCard(ctx context.Context, seat, handIndex int) error {
	return o.Apply(ctx, seat, game.Move{Type: game.MoveSnap, CardIndex: handIndex})
}

func (o Ops) ConfirmTap(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveConfirmTap)
}

func (o Ops) TapSwap(ctx context.Context, seat, handIndex int) error {
	return o.Apply(ctx, seat, game.Move{Type: game.MoveTapSwap, OwnCardIndex: handIndex})
}

func (o Ops) SkipTapSwap(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MoveSkipTapSwap)
}

func (o Ops) PassTap(ctx context.Context, seat int) error {
	return o.do(ctx, seat, game.MovePassTap)
}
