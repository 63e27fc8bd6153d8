package game

import (
	"kaboo-server/moveerrors"
)

// openTapWindow starts a fresh window for the card just discarded by playerIdx.
// It supersedes whatever tap was in progress.
func (g *Game) openTapWindow(playerIdx int, rank Rank) {
	g.state.TapState = &TapState{
		Phase:         TapWindow,
		TriggerPlayer: playerIdx,
		Rank:          rank,
		Tapper:        NoPlayer,
	}
}

func (g *Game) requireTapper(playerIdx int, phase TapPhase) (*TapState, error) {
	if err := g.validPlayer(playerIdx); err != nil {
		return nil, err
	}
	t := g.state.TapState
	if t == nil || !g.state.GamePhase.inTurns() {
		return nil, moveerrors.ErrTapClosed
	}
	if t.Tapper != playerIdx {
		return nil, moveerrors.ErrNotTapper
	}
	if t.Phase != phase {
		return nil, moveerrors.ErrWrongPhase
	}
	return t, nil
}

// ActivateTap claims the open window. The first activation wins; later callers
// are locked out until the next discard.
func (g *Game) ActivateTap(playerIdx int) error {
	if err := g.validPlayer(playerIdx); err != nil {
		return err
	}
	s := &g.state
	t := s.TapState
	if t == nil || !s.GamePhase.inTurns() {
		return moveerrors.ErrTapClosed
	}
	if t.Phase != TapWindow {
		return moveerrors.ErrTapTaken
	}
	if s.TurnPhase == TurnEffect {
		return moveerrors.ErrWrongPhase
	}
	if containsInt(t.Passed, playerIdx) {
		return moveerrors.ErrTapClosed
	}
	t.Phase = TapSelecting
	t.Tapper = playerIdx
	t.Selected = nil
	g.bump()
	return nil
}

// SelectTapCard toggles one of the tapper's own cards in the tap selection.
func (g *Game) SelectTapCard(playerIdx, handIndex int) error {
	t, err := g.requireTapper(playerIdx, TapSelecting)
	if err != nil {
		return err
	}
	c, ok := g.state.CardAt(CardRef{Player: playerIdx, Index: handIndex})
	if !ok {
		return moveerrors.ErrInvalidTarget
	}
	for i, id := range t.Selected {
		if id == c.ID {
			t.Selected = append(t.Selected[:i:i], t.Selected[i+1:]...)
			g.bump()
			return nil
		}
	}
	t.Selected = append(t.Selected, c.ID)
	g.bump()
	return nil
}

// ConfirmTapDiscard finalizes the tap. An empty selection or any card whose rank
// differs from the window's rank is penalised: the tapper takes one face-down
// card from the draw pile, the tap ends and the current turn is forced to
// end_turn. Otherwise the selected cards are discarded and the tapper may hand
// one card per tapped card to the player whose discard opened the window.
func (g *Game) ConfirmTapDiscard(playerIdx int) error {
	t, err := g.requireTapper(playerIdx, TapSelecting)
	if err != nil {
		return err
	}
	s := &g.state
	hand := &s.Players[playerIdx]

	correct := len(t.Selected) > 0
	for _, id := range t.Selected {
		i := hand.indexOf(id)
		if i < 0 || hand.Hand[i].Rank != t.Rank {
			correct = false
			break
		}
	}
	if !correct {
		g.tapPenalty(playerIdx)
		g.bump()
		return nil
	}

	for _, id := range t.Selected {
		g.pushDiscard(hand.removeAt(hand.indexOf(id)))
	}
	swaps := len(t.Selected)
	if t.TriggerPlayer == playerIdx || t.TriggerPlayer < 0 {
		swaps = 0
	}
	if swaps > len(hand.Hand) {
		swaps = len(hand.Hand)
	}
	g.logger().Debug("tap matched", "tapper", playerIdx, "cards", len(t.Selected), "swaps", swaps)
	if swaps == 0 {
		s.TapState = nil
	} else {
		t.Phase = TapSwapping
		t.SwapsRemaining = swaps
		t.Selected = nil
	}
	g.bump()
	return nil
}

func (g *Game) tapPenalty(playerIdx int) {
	s := &g.state
	if c, ok := g.popDraw(); ok {
		c.FaceUp = false
		s.Players[playerIdx].Hand = append(s.Players[playerIdx].Hand, c)
	}
	s.TapState = nil
	g.forceEndTurn()
	g.logger().Debug("tap penalty", "tapper", playerIdx, "stock", len(s.DrawPile))
}

// TapSwap hands one of the tapper's cards to the player whose discard opened the window.
func (g *Game) TapSwap(playerIdx, handIndex int) error {
	t, err := g.requireTapper(playerIdx, TapSwapping)
	if err != nil {
		return err
	}
	s := &g.state
	tapper := &s.Players[playerIdx]
	if handIndex < 0 || handIndex >= len(tapper.Hand) {
		return moveerrors.ErrInvalidTarget
	}
	c := tapper.removeAt(handIndex)
	c.FaceUp = false
	target := &s.Players[t.TriggerPlayer]
	target.Hand = append(target.Hand, c)
	t.SwapsRemaining--
	if t.SwapsRemaining <= 0 || len(tapper.Hand) == 0 {
		s.TapState = nil
	}
	g.bump()
	return nil
}

// SkipTapSwap declines the remaining hand-offs and closes the tap.
func (g *Game) SkipTapSwap(playerIdx int) error {
	if _, err := g.requireTapper(playerIdx, TapSwapping); err != nil {
		return err
	}
	g.state.TapState = nil
	g.bump()
	return nil
}

// PassTap records that the player will not tap this window. The window closes
// once every player other than the discarder has passed.
func (g *Game) PassTap(playerIdx int) error {
	if err := g.validPlayer(playerIdx); err != nil {
		return err
	}
	s := &g.state
	t := s.TapState
	if t == nil || t.Phase != TapWindow {
		return moveerrors.ErrTapClosed
	}
	if containsInt(t.Passed, playerIdx) {
		return nil
	}
	t.Passed = append(t.Passed, playerIdx)
	waiting := 0
	for i := range s.Players {
		if i != t.TriggerPlayer && !containsInt(t.Passed, i) {
			waiting++
		}
	}
	if waiting == 0 {
		s.TapState = nil
	}
	g.bump()
	return nil
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
