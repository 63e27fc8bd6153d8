package game

import (
	"kaboo-server/moveerrors"
)

func (g *Game) requireEffect(playerIdx int) error {
	if err := g.requireTurn(playerIdx, TurnEffect); err != nil {
		if err == moveerrors.ErrWrongPhase {
			return moveerrors.ErrNoEffect
		}
		return err
	}
	return nil
}

// SelectEffectCard chooses (or un-chooses) a target for the active effect.
// Peek effects resolve immediately on a valid selection. Ineligible targets are
// rejected without changing anything.
func (g *Game) SelectEffectCard(playerIdx int, ref CardRef) error {
	if err := g.requireEffect(playerIdx); err != nil {
		return err
	}
	s := &g.state
	c, ok := s.CardAt(ref)
	if !ok {
		return moveerrors.ErrInvalidTarget
	}
	own := ref.Player == playerIdx

	switch s.EffectType {
	case EffectPeekOwn, EffectPeekOpponent:
		if own != (s.EffectType == EffectPeekOwn) {
			return moveerrors.ErrInvalidTarget
		}
		g.addPeek(c.ID, playerIdx)
		g.finishEffect()
	case EffectBlindSwap:
		if err := g.toggleSelected(c.ID, 2); err != nil {
			return err
		}
	case EffectSemiBlindSwap:
		if s.EffectStep == StepSelect {
			if err := g.toggleSelected(c.ID, 1); err != nil {
				return err
			}
			break
		}
		// Action step: the revealed card stays first, the own card to give is second.
		if !own || c.ID == s.SelectedCards[0] {
			return moveerrors.ErrInvalidTarget
		}
		s.SelectedCards = []string{s.SelectedCards[0], c.ID}
	case EffectFullVisionSwap:
		if s.EffectStep != StepSelect {
			return moveerrors.ErrInvalidTarget
		}
		if err := g.toggleSelected(c.ID, 2); err != nil {
			return err
		}
	default:
		return moveerrors.ErrNoEffect
	}
	g.bump()
	return nil
}

func (g *Game) toggleSelected(cardID string, limit int) error {
	sel := g.state.SelectedCards
	for i, id := range sel {
		if id == cardID {
			g.state.SelectedCards = append(sel[:i:i], sel[i+1:]...)
			return nil
		}
	}
	if len(sel) >= limit {
		return moveerrors.ErrInvalidTarget
	}
	g.state.SelectedCards = append(sel, cardID)
	return nil
}

// ConfirmEffect commits the current selection: it swaps for blind swaps and
// action steps, and reveals for the select step of two-step effects.
func (g *Game) ConfirmEffect(playerIdx int) error {
	if err := g.requireEffect(playerIdx); err != nil {
		return err
	}
	s := &g.state
	sel := s.SelectedCards

	switch {
	case s.EffectType == EffectBlindSwap:
		if len(sel) != 2 {
			return moveerrors.ErrInvalidTarget
		}
		if err := g.swapCards(sel[0], sel[1]); err != nil {
			return err
		}
		g.finishEffect()
	case s.EffectType.twoStep() && s.EffectStep == StepSelect:
		want := 2
		if s.EffectType == EffectSemiBlindSwap {
			want = 1
		}
		if len(sel) != want {
			return moveerrors.ErrInvalidTarget
		}
		for _, id := range sel {
			g.addPeek(id, playerIdx)
		}
		s.EffectStep = StepAction
	case s.EffectType.twoStep() && s.EffectStep == StepAction:
		if len(sel) != 2 {
			return moveerrors.ErrInvalidTarget
		}
		if err := g.swapCards(sel[0], sel[1]); err != nil {
			return err
		}
		g.finishEffect()
	default:
		return moveerrors.ErrInvalidTarget
	}
	g.bump()
	return nil
}

// SkipEffect declines the active effect. Anything already revealed stays revealed
// until its peek is hidden.
func (g *Game) SkipEffect(playerIdx int) error {
	if err := g.requireEffect(playerIdx); err != nil {
		return err
	}
	g.finishEffect()
	g.bump()
	return nil
}

func (g *Game) finishEffect() {
	g.clearEffect()
	g.state.TurnPhase = TurnEnd
}

// swapCards exchanges the positions of two hand cards, possibly in different hands.
func (g *Game) swapCards(idA, idB string) error {
	s := &g.state
	a, okA := s.Locate(idA)
	b, okB := s.Locate(idB)
	if !okA || !okB || idA == idB {
		return moveerrors.ErrInvalidTarget
	}
	ha, hb := s.Players[a.Player].Hand, s.Players[b.Player].Hand
	ha[a.Index], hb[b.Index] = hb[b.Index], ha[a.Index]
	return nil
}
