package keymap

import (
	"context"
	"errors"

	"kaboo-server/engine"
	"kaboo-server/game"
)

var (
	// ErrSuppressed: input is ignored while a text field or dialog has focus, while
	// paused, or outside the playable phases.
	ErrSuppressed = errors.New("input suppressed")
	ErrUnbound    = errors.New("key not bound")
	// ErrNoContext: the action means nothing in the current state.
	ErrNoContext = errors.New("action not applicable now")
)

// Focus describes the UI around the game at the moment of a key press.
type Focus struct {
	TextInput bool
	Modal     bool
	Paused    bool
}

// Dispatcher turns key presses into engine operations for one seat.
type Dispatcher struct {
	Engine engine.Engine
	Seat   int
	Keys   Keymap

	// target is the player whose hand the select actions address during effects.
	target int
	// cursor is the last selected own hand position, used by swap.
	cursor int
}

// NewDispatcher returns a dispatcher with select actions addressing seat's own hand.
func NewDispatcher(eng engine.Engine, seat int, keys Keymap) *Dispatcher {
	return &Dispatcher{Engine: eng, Seat: seat, Keys: keys, target: seat}
}

// SetTarget points the select actions at another player's hand for effect targeting.
func (d *Dispatcher) SetTarget(player int) {
	d.target = player
}

// Handle dispatches key. It returns the action it resolved to, ErrUnbound,
// ErrSuppressed, ErrNoContext or the engine's error.
func (d *Dispatcher) Handle(ctx context.Context, key string, focus Focus) (Action, error) {
	a, ok := d.Keys.Lookup(key)
	if !ok {
		return "", ErrUnbound
	}
	if focus.TextInput || focus.Modal || focus.Paused {
		return a, ErrSuppressed
	}
	st, err := d.Engine.State(ctx, d.Seat)
	if err != nil {
		return a, err
	}
	switch st.GamePhase {
	case game.PhaseWaiting, game.PhaseDealing, game.PhaseReveal:
		return a, ErrSuppressed
	}
	return a, d.dispatch(ctx, a, st)
}

func (d *Dispatcher) dispatch(ctx context.Context, a Action, st game.GameState) error {
	e, seat := d.Engine, d.Seat
	tap := st.TapState
	tapper := tap != nil && tap.Tapper == seat
	effect := st.TurnPhase == game.TurnEffect && st.CurrentPlayerIndex == seat

	if idx, ok := a.SelectIndex(); ok {
		switch {
		case st.GamePhase == game.PhaseInitialLook:
			return e.PeekOwn(ctx, seat, idx)
		case effect:
			return e.SelectEffectCard(ctx, seat, game.CardRef{Player: d.target, Index: idx})
		case tapper && tap.Phase == game.TapSwapping:
			return e.TapSwap(ctx, seat, idx)
		case tapper && tap.Phase == game.TapSelecting:
			return e.SelectTapCard(ctx, seat, idx)
		}
		d.cursor = idx
		return nil
	}

	switch a {
	case ActionDraw:
		return e.DrawCard(ctx, seat)
	case ActionDiscard:
		return e.DiscardHeldCard(ctx, seat)
	case ActionSwap:
		return e.SwapCard(ctx, seat, d.cursor)
	case ActionCallKaboo:
		return e.CallKaboo(ctx, seat)
	case ActionEndTurn:
		return e.EndTurn(ctx, seat)
	case ActionActivateTap:
		return e.ActivateTap(ctx, seat)
	case ActionConfirm:
		switch {
		case st.GamePhase == game.PhaseInitialLook:
			return e.ReadyToPlay(ctx, seat)
		case effect:
			return e.ConfirmEffect(ctx, seat)
		case tapper && tap.Phase == game.TapSelecting:
			return e.ConfirmTap(ctx, seat)
		}
	case ActionSkip:
		switch {
		case effect:
			d.target = seat
			return e.SkipEffect(ctx, seat)
		case tapper && tap.Phase == game.TapSwapping:
			return e.SkipTapSwap(ctx, seat)
		case tap != nil && tap.Phase == game.TapWindow:
			return e.PassTap(ctx, seat)
		}
	}
	return ErrNoContext
}
