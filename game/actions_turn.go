package game

import (
	"kaboo-server/moveerrors"
)

// DrawCard moves the top of the draw pile into the actor's held card, face up.
// A second draw before discarding or swapping is rejected and changes nothing.
func (g *Game) DrawCard(playerIdx int) error {
	if err := g.requireTurn(playerIdx, TurnDraw); err != nil {
		return err
	}
	c, ok := g.popDraw()
	if !ok {
		return moveerrors.ErrDeckEmpty
	}
	c.FaceUp = true
	g.state.HeldCard = &c
	g.state.TurnPhase = TurnAction
	g.bump()
	return nil
}

// DiscardHeldCard puts the held card on the discard pile.
func (g *Game) DiscardHeldCard(playerIdx int) error {
	if err := g.requireTurn(playerIdx, TurnAction); err != nil {
		return err
	}
	if g.state.HeldCard == nil {
		return moveerrors.ErrNothingHeld
	}
	c := *g.state.HeldCard
	g.state.HeldCard = nil
	g.pushDiscard(c)
	g.afterDiscard(playerIdx, c)
	g.bump()
	return nil
}

// SwapHeldCard replaces the actor's hand card at handIndex with the held card and
// discards the replaced card face up.
func (g *Game) SwapHeldCard(playerIdx, handIndex int) error {
	if err := g.requireTurn(playerIdx, TurnAction); err != nil {
		return err
	}
	if g.state.HeldCard == nil {
		return moveerrors.ErrNothingHeld
	}
	hand := g.state.Players[playerIdx].Hand
	if handIndex < 0 || handIndex >= len(hand) {
		return moveerrors.ErrInvalidTarget
	}
	in := *g.state.HeldCard
	in.FaceUp = false
	out := hand[handIndex]
	hand[handIndex] = in
	g.state.HeldCard = nil
	g.pushDiscard(out)
	g.afterDiscard(playerIdx, out)
	g.bump()
	return nil
}

// afterDiscard opens a tap window on the new top and enters the effect of its
// rank, if any.
func (g *Game) afterDiscard(playerIdx int, c Card) {
	g.openTapWindow(playerIdx, c.Rank)
	if eff := g.rules.EffectFor(c.Rank); eff != EffectNone {
		g.state.TurnPhase = TurnEffect
		g.state.EffectType = eff
		g.state.EffectStep = StepSelect
		g.state.SelectedCards = nil
		return
	}
	g.state.TurnPhase = TurnEnd
}

// CallKaboo starts the final round. Only legal at the start of the caller's own
// turn and only once per round. The call uses the caller's turn.
func (g *Game) CallKaboo(playerIdx int) error {
	if err := g.requireTurn(playerIdx, TurnDraw); err != nil {
		return err
	}
	s := &g.state
	if s.KabooCalled || s.GamePhase != PhasePlaying {
		return moveerrors.ErrKabooCalled
	}
	s.KabooCalled = true
	s.KabooCallerIndex = playerIdx
	s.GamePhase = PhaseKabooFinal
	s.FinalRoundTurnsLeft = len(s.Players) - 1
	s.TurnPhase = TurnEnd
	g.bump()
	g.logger().Info("kaboo called", "caller", playerIdx, "turn", s.TurnNumber)
	return nil
}

// EndTurn passes the turn to the next player. An empty draw pile ends the round
// at once: in playing it is an automatic Kaboo by SystemCaller with no final
// round, in kaboo_final it cuts the final round short.
func (g *Game) EndTurn(playerIdx int) error {
	if err := g.requireTurn(playerIdx, TurnEnd); err != nil {
		return err
	}
	s := &g.state
	s.TurnNumber++
	switch {
	case s.GamePhase == PhaseKabooFinal && (s.FinalRoundTurnsLeft <= 0 || len(s.DrawPile) == 0):
		g.reveal()
	case s.GamePhase == PhasePlaying && len(s.DrawPile) == 0:
		s.KabooCalled = true
		s.KabooCallerIndex = SystemCaller
		g.logger().Info("draw pile exhausted, automatic kaboo", "turn", s.TurnNumber)
		g.reveal()
	default:
		s.CurrentPlayerIndex = (s.CurrentPlayerIndex + 1) % len(s.Players)
		s.TurnPhase = TurnDraw
		if s.GamePhase == PhaseKabooFinal {
			s.FinalRoundTurnsLeft--
		}
	}
	g.bump()
	return nil
}

// forceEndTurn jumps the current turn to end_turn. A held card is discarded
// without opening a tap window and an active effect is cancelled.
func (g *Game) forceEndTurn() {
	s := &g.state
	if !s.GamePhase.inTurns() {
		return
	}
	if s.HeldCard != nil {
		g.pushDiscard(*s.HeldCard)
		s.HeldCard = nil
	}
	g.clearEffect()
	s.TurnPhase = TurnEnd
}

func (g *Game) clearEffect() {
	g.state.EffectType = EffectNone
	g.state.EffectStep = StepNone
	g.state.SelectedCards = nil
}
