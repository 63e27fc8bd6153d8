package heuristic

import (
	"kaboo-server/game"
)

// peekGain is the value assigned to learning one unknown card.
const peekGain = 0.5

func init() {
	Register(game.EffectPeekOwn, planPeekOwn)
	Register(game.EffectPeekOpponent, planPeekOpponent)
}

func planPeekOwn(ctx *Context) (Plan, bool) {
	if ref, ok := ctx.firstUnknown(ctx.Seat); ok {
		return Plan{Targets: []game.CardRef{ref}, Gain: peekGain}, true
	}
	if len(ctx.View.Players[ctx.Seat].Hand) == 0 {
		return Plan{}, false
	}
	return Plan{Targets: []game.CardRef{{Player: ctx.Seat, Index: 0}}}, true
}

// planPeekOpponent looks at the leading opponent's unknown cards first.
func planPeekOpponent(ctx *Context) (Plan, bool) {
	lead, leadV := -1, 0.0
	var fallback *game.CardRef
	for p := range ctx.View.Players {
		if p == ctx.Seat || len(ctx.View.Players[p].Hand) == 0 {
			continue
		}
		if fallback == nil {
			fallback = &game.CardRef{Player: p, Index: 0}
		}
		if _, ok := ctx.firstUnknown(p); !ok {
			continue
		}
		v, _ := ctx.HandEstimate(p)
		if lead < 0 || v < leadV {
			lead, leadV = p, v
		}
	}
	if lead >= 0 {
		ref, _ := ctx.firstUnknown(lead)
		return Plan{Targets: []game.CardRef{ref}, Gain: peekGain}, true
	}
	if fallback == nil {
		return Plan{}, false
	}
	return Plan{Targets: []game.CardRef{*fallback}}, true
}
