package ai

import (
	"math/rand"

	"kaboo-server/game"
)

// Memory is a bot's private record of cards it has legitimately seen, keyed by
// card id. Card ids survive swaps, so a remembered card stays remembered wherever
// it moves.
type Memory struct {
	cards map[string]game.Card
}

// NewMemory returns an empty memory.
func NewMemory() *Memory {
	return &Memory{cards: make(map[string]game.Card)}
}

// Observe records every card face visible in the bot's own view: its peeks, its
// held card and face-up cards. Masked cards carry no face and are skipped.
func (m *Memory) Observe(view game.GameState) {
	for _, p := range view.Players {
		for _, c := range p.Hand {
			m.Remember(c)
		}
	}
	if view.HeldCard != nil {
		m.Remember(*view.HeldCard)
	}
}

// Remember stores c if its face is known.
func (m *Memory) Remember(c game.Card) {
	if !c.Known() {
		return
	}
	c.FaceUp = false
	m.cards[c.ID] = c
}

// Lookup returns the remembered face of a card id.
func (m *Memory) Lookup(id string) (game.Card, bool) {
	c, ok := m.cards[id]
	return c, ok
}

// Cards returns a copy of the memory.
func (m *Memory) Cards() map[string]game.Card {
	out := make(map[string]game.Card, len(m.cards))
	for id, c := range m.cards {
		out[id] = c
	}
	return out
}

// Len returns the number of remembered cards.
func (m *Memory) Len() int {
	return len(m.cards)
}

// Forget drops each remembered card with probability chance/100.
func (m *Memory) Forget(chance int, rng *rand.Rand) {
	chance = clampChance(chance)
	if chance == 0 {
		return
	}
	var toForget []string
	for id := range m.cards {
		if rng.Intn(100) < chance {
			toForget = append(toForget, id)
		}
	}
	for _, id := range toForget {
		delete(m.cards, id)
	}
}

// Reset empties the memory; cards are reshuffled between rounds.
func (m *Memory) Reset() {
	m.cards = make(map[string]game.Card)
}
