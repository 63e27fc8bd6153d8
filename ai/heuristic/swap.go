package heuristic

import (
	"kaboo-server/game"
)

func init() {
	Register(game.EffectBlindSwap, planBlindSwap)
	Register(game.EffectSemiBlindSwap, planSemiBlindSwap)
	Register(game.EffectFullVisionSwap, planFullVisionSwap)
}

// planBlindSwap trades the bot's worst card for the best opponent card.
func planBlindSwap(ctx *Context) (Plan, bool) {
	own, ov, ok1 := ctx.OwnWorst("")
	opp, pv, ok2 := ctx.OpponentBest("")
	if !ok1 || !ok2 {
		return Plan{}, false
	}
	return Plan{Targets: []game.CardRef{own, opp}, Confirm: true, Gain: ov - pv}, true
}

// planSemiBlindSwap reveals one opponent card, then gives away the worst own card
// if the revealed one is better.
func planSemiBlindSwap(ctx *Context) (Plan, bool) {
	if ctx.View.EffectStep == game.StepSelect {
		opp, pv, ok := ctx.OpponentBest("")
		if !ok {
			return Plan{}, false
		}
		_, ov, _ := ctx.OwnWorst("")
		return Plan{Targets: []game.CardRef{opp}, Confirm: true, Gain: ov - pv + peekGain}, true
	}
	if len(ctx.View.SelectedCards) == 0 {
		return Plan{}, false
	}
	revealed := ctx.View.SelectedCards[0]
	ref, ok := ctx.View.Locate(revealed)
	if !ok {
		return Plan{}, false
	}
	own, ov, ok := ctx.OwnWorst(revealed)
	if !ok {
		return Plan{}, false
	}
	return Plan{Targets: []game.CardRef{own}, Confirm: true, Gain: ov - ctx.Value(ref)}, true
}

// planFullVisionSwap reveals the worst own card and the best opponent card, then
// swaps them if that lowers the bot's hand.
func planFullVisionSwap(ctx *Context) (Plan, bool) {
	if ctx.View.EffectStep == game.StepSelect {
		own, ov, ok1 := ctx.OwnWorst("")
		opp, pv, ok2 := ctx.OpponentBest("")
		if !ok1 || !ok2 {
			return Plan{}, false
		}
		return Plan{Targets: []game.CardRef{own, opp}, Confirm: true, Gain: ov - pv + peekGain}, true
	}
	if len(ctx.View.SelectedCards) != 2 {
		return Plan{}, false
	}
	a, okA := ctx.View.Locate(ctx.View.SelectedCards[0])
	b, okB := ctx.View.Locate(ctx.View.SelectedCards[1])
	if !okA || !okB {
		return Plan{}, false
	}
	if b.Player == ctx.Seat {
		a, b = b, a
	}
	if a.Player != ctx.Seat || b.Player == ctx.Seat {
		return Plan{Confirm: true}, true
	}
	return Plan{Confirm: true, Gain: ctx.Value(a) - ctx.Value(b)}, true
}
