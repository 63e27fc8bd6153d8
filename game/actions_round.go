package game

import (
	"fmt"

	"kaboo-server/moveerrors"
)

// MinPlayers is the smallest table that can start a round.
const MinPlayers = 2

// StartRound deals the first round of a match. Only legal while waiting.
func (g *Game) StartRound() error {
	if g.state.GamePhase != PhaseWaiting {
		return moveerrors.ErrWrongPhase
	}
	return g.deal()
}

// NextRound deals the next round after a reveal, keeping total scores.
func (g *Game) NextRound() error {
	if g.state.GamePhase != PhaseReveal {
		return moveerrors.ErrWrongPhase
	}
	if g.state.MatchOver {
		return moveerrors.ErrMatchOver
	}
	return g.deal()
}

// ResetMatch returns the table to waiting with all scores cleared.
func (g *Game) ResetMatch() {
	s := &g.state
	for i := range s.Players {
		s.Players[i].Hand = []Card{}
		s.Players[i].Score = 0
		s.Players[i].TotalScore = 0
		s.Players[i].Ready = false
	}
	s.GamePhase = PhaseWaiting
	s.TurnPhase = TurnNone
	s.CurrentPlayerIndex = NoPlayer
	s.DrawPile = []Card{}
	s.DiscardPile = []Card{}
	s.HeldCard = nil
	g.clearEffect()
	s.TapState = nil
	s.KabooCalled = false
	s.KabooCallerIndex = SystemCaller
	s.FinalRoundTurnsLeft = 0
	s.TurnNumber = 0
	s.RoundNumber = 0
	s.InitialLooksRemaining = nil
	s.PeekedCards = nil
	s.MatchOver = false
	s.DeckSize = 0
	g.bump()
}

func (g *Game) freshDeck() []Card {
	if len(g.deck) > 0 {
		return append([]Card{}, g.deck...)
	}
	deck := NewDeck(g.rules.Jokers)
	Shuffle(deck, g.rng)
	return deck
}

func (g *Game) deal() error {
	s := &g.state
	n := len(s.Players)
	if n < MinPlayers {
		return fmt.Errorf("need at least %d players: %w", MinPlayers, moveerrors.ErrInvalidPlayer)
	}
	deck := g.freshDeck()
	if len(deck) < n*g.rules.HandSize+1 {
		return fmt.Errorf("deck of %d cannot deal %d players: %w", len(deck), n, moveerrors.ErrDeckEmpty)
	}
	for i := range deck {
		deck[i].FaceUp = false
	}

	s.GamePhase = PhaseDealing
	s.TurnPhase = TurnNone
	s.DeckSize = len(deck)
	s.DrawPile = deck
	s.DiscardPile = []Card{}
	s.HeldCard = nil
	g.clearEffect()
	s.TapState = nil
	s.KabooCalled = false
	s.KabooCallerIndex = SystemCaller
	s.FinalRoundTurnsLeft = 0
	s.TurnNumber = 0
	s.RoundNumber++
	s.PeekedCards = nil
	s.InitialLooksRemaining = make([]int, n)
	for i := range s.Players {
		s.Players[i].Hand = make([]Card, 0, g.rules.HandSize)
		s.Players[i].Score = 0
		s.Players[i].Ready = false
		s.InitialLooksRemaining[i] = g.rules.InitialLooks
	}
	for k := 0; k < g.rules.HandSize; k++ {
		for i := range s.Players {
			c, _ := g.popDraw()
			s.Players[i].Hand = append(s.Players[i].Hand, c)
		}
	}
	starter, _ := g.popDraw()
	g.pushDiscard(starter)
	s.CurrentPlayerIndex = (s.RoundNumber - 1) % n
	g.bump()
	g.logger().Info("round dealt", "round", s.RoundNumber, "players", n, "stock", len(s.DrawPile))
	return nil
}

// FinishDealing ends the deal animation window and opens the initial look.
func (g *Game) FinishDealing() error {
	if g.state.GamePhase != PhaseDealing {
		return moveerrors.ErrWrongPhase
	}
	g.state.GamePhase = PhaseInitialLook
	g.bump()
	return nil
}

// PeekInitial reveals one of the player's own cards to them during the initial look.
func (g *Game) PeekInitial(playerIdx, cardIndex int) error {
	if err := g.validPlayer(playerIdx); err != nil {
		return err
	}
	s := &g.state
	if s.GamePhase != PhaseInitialLook {
		return moveerrors.ErrWrongPhase
	}
	if s.InitialLooksRemaining[playerIdx] <= 0 {
		return moveerrors.ErrNoLooksRemaining
	}
	c, ok := s.CardAt(CardRef{Player: playerIdx, Index: cardIndex})
	if !ok || s.PeekedBy(c.ID, playerIdx) {
		return moveerrors.ErrInvalidTarget
	}
	s.InitialLooksRemaining[playerIdx]--
	g.addPeek(c.ID, playerIdx)
	g.bump()
	return nil
}

// SetReady marks the player done with the initial look. Play begins once every
// player is ready.
func (g *Game) SetReady(playerIdx int) error {
	if err := g.validPlayer(playerIdx); err != nil {
		return err
	}
	s := &g.state
	if s.GamePhase != PhaseInitialLook {
		return moveerrors.ErrWrongPhase
	}
	s.Players[playerIdx].Ready = true
	for _, p := range s.Players {
		if !p.Ready {
			g.bump()
			return nil
		}
	}
	s.GamePhase = PhasePlaying
	s.TurnPhase = TurnDraw
	g.bump()
	g.logger().Info("play started", "round", s.RoundNumber, "first", s.CurrentPlayerIndex)
	return nil
}

// reveal flips every hand face up and scores the round.
func (g *Game) reveal() {
	s := &g.state
	s.GamePhase = PhaseReveal
	s.TurnPhase = TurnNone
	s.TapState = nil
	s.PeekedCards = nil
	g.clearEffect()
	if s.HeldCard != nil {
		g.pushDiscard(*s.HeldCard)
		s.HeldCard = nil
	}
	for p := range s.Players {
		for i := range s.Players[p].Hand {
			s.Players[p].Hand[i].FaceUp = true
		}
	}
	g.scoreRound()
	g.logger().Info("round revealed", "round", s.RoundNumber, "caller", s.KabooCallerIndex, "matchOver", s.MatchOver)
}
