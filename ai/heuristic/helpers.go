package heuristic

import (
	"kaboo-server/game"
)

// Context is everything a planner may look at: the bot's own view of the game
// and the cards it remembers. It never sees more than the bot legitimately has.
type Context struct {
	View  game.GameState
	Seat  int
	Known map[string]game.Card
	Rules game.Rules
}

// Card returns the face of the card at ref if the bot can see or remembers it.
func (c *Context) Card(ref game.CardRef) (game.Card, bool) {
	card, ok := c.View.CardAt(ref)
	if !ok {
		return game.Card{}, false
	}
	if card.Known() {
		return card, true
	}
	if m, ok := c.Known[card.ID]; ok {
		return m, true
	}
	return card, false
}

// Value estimates the score of the card at ref: its face value if known, the
// mean of the unseen cards otherwise.
func (c *Context) Value(ref game.CardRef) float64 {
	if card, ok := c.Card(ref); ok {
		return float64(c.Rules.CardValue(card))
	}
	return c.UnknownValue()
}

// UnknownValue is the mean value of the cards the bot has not seen.
func (c *Context) UnknownValue() float64 {
	remaining := make(map[game.Rank]int)
	for _, r := range game.Ranks {
		remaining[r] = len(game.Suits)
	}
	remaining[game.Joker] = c.Rules.Jokers

	seen := make(map[string]game.Rank)
	for id, card := range c.Known {
		seen[id] = card.Rank
	}
	for _, card := range c.View.DiscardPile {
		if card.Known() {
			seen[card.ID] = card.Rank
		}
	}
	for _, p := range c.View.Players {
		for _, card := range p.Hand {
			if card.Known() {
				seen[card.ID] = card.Rank
			}
		}
	}
	if h := c.View.HeldCard; h != nil && h.Known() {
		seen[h.ID] = h.Rank
	}
	for _, r := range seen {
		if remaining[r] > 0 {
			remaining[r]--
		}
	}

	total, n := 0, 0
	for r, k := range remaining {
		total += k * c.Rules.CardValue(game.Card{Rank: r})
		n += k
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// HandEstimate sums Value over a player's hand and counts the unknown cards.
func (c *Context) HandEstimate(player int) (total float64, unknown int) {
	for i := range c.View.Players[player].Hand {
		ref := game.CardRef{Player: player, Index: i}
		if _, ok := c.Card(ref); !ok {
			unknown++
		}
		total += c.Value(ref)
	}
	return total, unknown
}

// OwnWorst returns the bot's own card with the highest estimated value, skipping
// exclude. Known cards win ties against unknown ones.
func (c *Context) OwnWorst(exclude string) (game.CardRef, float64, bool) {
	best := game.CardRef{Player: c.Seat, Index: -1}
	bestV := 0.0
	bestKnown := false
	for i, card := range c.View.Players[c.Seat].Hand {
		if card.ID == exclude {
			continue
		}
		ref := game.CardRef{Player: c.Seat, Index: i}
		v := c.Value(ref)
		_, known := c.Card(ref)
		if best.Index < 0 || v > bestV || (v == bestV && known && !bestKnown) {
			best, bestV, bestKnown = ref, v, known
		}
	}
	return best, bestV, best.Index >= 0
}

// OpponentBest returns the opponent card with the lowest estimated value. Among
// unknown cards it prefers the opponent with the lowest estimated hand.
func (c *Context) OpponentBest(exclude string) (game.CardRef, float64, bool) {
	best := game.CardRef{Index: -1}
	bestV, bestHand := 0.0, 0.0
	for p := range c.View.Players {
		if p == c.Seat {
			continue
		}
		hand, _ := c.HandEstimate(p)
		for i, card := range c.View.Players[p].Hand {
			if card.ID == exclude {
				continue
			}
			ref := game.CardRef{Player: p, Index: i}
			v := c.Value(ref)
			if best.Index < 0 || v < bestV || (v == bestV && hand < bestHand) {
				best, bestV, bestHand = ref, v, hand
			}
		}
	}
	return best, bestV, best.Index >= 0
}

// firstUnknown returns the first card of player the bot neither sees nor remembers.
func (c *Context) firstUnknown(player int) (game.CardRef, bool) {
	for i := range c.View.Players[player].Hand {
		ref := game.CardRef{Player: player, Index: i}
		if _, ok := c.Card(ref); !ok {
			return ref, true
		}
	}
	return game.CardRef{}, false
}
