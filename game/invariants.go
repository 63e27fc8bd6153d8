package game

import (
	"errors"
	"fmt"
)

// CheckInvariants verifies card conservation, the single-activity rule and index
// validity. It returns nil for a consistent state.
func (g *Game) CheckInvariants() error {
	s := &g.state
	var errs []error

	if s.DeckSize > 0 {
		seen := make(map[string]int, s.DeckSize)
		count := func(cards []Card) {
			for _, c := range cards {
				seen[c.ID]++
			}
		}
		count(s.DrawPile)
		count(s.DiscardPile)
		for _, p := range s.Players {
			count(p.Hand)
		}
		if s.HeldCard != nil {
			count([]Card{*s.HeldCard})
		}
		total := 0
		for id, n := range seen {
			total += n
			if n > 1 {
				errs = append(errs, fmt.Errorf("card %s appears %d times", id, n))
			}
		}
		if total != s.DeckSize {
			errs = append(errs, fmt.Errorf("%d cards in play, deck has %d", total, s.DeckSize))
		}
	}

	if s.HeldCard != nil && s.EffectType != EffectNone {
		errs = append(errs, errors.New("held card and active effect at the same time"))
	}
	if s.GamePhase.inTurns() == (s.TurnPhase == TurnNone) {
		errs = append(errs, fmt.Errorf("turn phase %q in game phase %q", s.TurnPhase, s.GamePhase))
	}
	if s.GamePhase != PhaseWaiting && s.GamePhase != PhaseReveal {
		if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
			errs = append(errs, fmt.Errorf("current player %d out of range", s.CurrentPlayerIndex))
		}
	}
	return errors.Join(errs...)
}
