package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaboo-server/game"
)

func hidden(ids ...string) []game.Card {
	out := make([]game.Card, len(ids))
	for i, id := range ids {
		out[i] = game.Card{ID: id}
	}
	return out
}

func tableContext(known map[string]game.Card) *Context {
	return &Context{
		View: game.GameState{
			Players: []game.Player{
				{Hand: hidden("a0", "a1", "a2", "a3")},
				{Hand: hidden("b0", "b1", "b2", "b3")},
				{Hand: hidden("c0", "c1", "c2", "c3")},
			},
		},
		Seat:  0,
		Known: known,
		Rules: game.DefaultRules(),
	}
}

func TestUnknownValueFullDeck(t *testing.T) {
	ctx := tableContext(nil)
	// 4 suits of 2..10 (54) + J Q K A (37), plus two jokers at -1, over 54 cards.
	assert.InDelta(t, 362.0/54.0, ctx.UnknownValue(), 1e-9)
}

func TestUnknownValueExcludesSeenCards(t *testing.T) {
	ctx := tableContext(map[string]game.Card{
		"a0": {ID: "a0", Rank: game.King},
	})
	assert.InDelta(t, (362.0-13)/53.0, ctx.UnknownValue(), 1e-9)
}

func TestBlindSwapTradesWorstForBest(t *testing.T) {
	ctx := tableContext(map[string]game.Card{
		"a2": {ID: "a2", Rank: game.King},
		"c1": {ID: "c1", Rank: game.Ace},
	})
	plan, ok := PlanFor(game.EffectBlindSwap, ctx)
	require.True(t, ok)
	assert.Equal(t, []game.CardRef{{Player: 0, Index: 2}, {Player: 2, Index: 1}}, plan.Targets)
	assert.True(t, plan.Confirm)
	assert.InDelta(t, 12, plan.Gain, 1e-9)
}

func TestBlindSwapNotWorthItWithLowHand(t *testing.T) {
	known := map[string]game.Card{}
	for _, id := range []string{"a0", "a1", "a2", "a3"} {
		known[id] = game.Card{ID: id, Rank: game.Ace}
	}
	plan, ok := PlanFor(game.EffectBlindSwap, tableContext(known))
	require.True(t, ok)
	assert.Less(t, plan.Gain, 0.0)
}

func TestPeekOwnPrefersUnknownCard(t *testing.T) {
	ctx := tableContext(map[string]game.Card{
		"a0": {ID: "a0", Rank: "5"},
	})
	plan, ok := PlanFor(game.EffectPeekOwn, ctx)
	require.True(t, ok)
	assert.Equal(t, []game.CardRef{{Player: 0, Index: 1}}, plan.Targets)
	assert.False(t, plan.Confirm)
	assert.Positive(t, plan.Gain)
}

func TestPeekOpponentNeverTargetsSelf(t *testing.T) {
	plan, ok := PlanFor(game.EffectPeekOpponent, tableContext(nil))
	require.True(t, ok)
	require.Len(t, plan.Targets, 1)
	assert.NotEqual(t, 0, plan.Targets[0].Player)
}

func TestSemiBlindActionStepUsesRevealedCard(t *testing.T) {
	ctx := tableContext(map[string]game.Card{
		"a3": {ID: "a3", Rank: game.Queen},
	})
	ctx.View.EffectType = game.EffectSemiBlindSwap
	ctx.View.EffectStep = game.StepAction
	ctx.View.SelectedCards = []string{"b1"}
	ctx.View.Players[1].Hand[1] = game.Card{ID: "b1", Suit: game.Hearts, Rank: "2"}

	plan, ok := PlanFor(game.EffectSemiBlindSwap, ctx)
	require.True(t, ok)
	assert.Equal(t, []game.CardRef{{Player: 0, Index: 3}}, plan.Targets)
	assert.InDelta(t, 10, plan.Gain, 1e-9)
}

func TestFullVisionActionStepComparesRevealedPair(t *testing.T) {
	ctx := tableContext(nil)
	ctx.View.EffectType = game.EffectFullVisionSwap
	ctx.View.EffectStep = game.StepAction
	ctx.View.SelectedCards = []string{"b0", "a1"}
	ctx.View.Players[0].Hand[1] = game.Card{ID: "a1", Suit: game.Hearts, Rank: "3"}
	ctx.View.Players[1].Hand[0] = game.Card{ID: "b0", Suit: game.Hearts, Rank: "9"}

	plan, ok := PlanFor(game.EffectFullVisionSwap, ctx)
	require.True(t, ok)
	assert.Empty(t, plan.Targets)
	assert.InDelta(t, -6, plan.Gain, 1e-9)
}

func TestUnregisteredEffectHasNoPlan(t *testing.T) {
	_, ok := PlanFor(game.EffectNone, tableContext(nil))
	assert.False(t, ok)
}
