package heuristic

import (
	"kaboo-server/game"
)

// Plan is what a bot intends to do with an active effect.
type Plan struct {
	// Targets are selected in order with SelectEffectCard.
	Targets []game.CardRef
	// Confirm is set when the selection must be committed with ConfirmEffect.
	// Peek effects resolve on selection and never confirm.
	Confirm bool
	// Gain estimates how much the plan lowers the bot's hand value (information
	// from a peek counts as a small positive gain). A plan with Gain <= 0 is not
	// worth playing; the bot skips instead.
	Gain float64
}

// PlanFunc plans the next step of an effect for the bot seated at ctx.Seat.
// It returns false when there is no legal target at all.
type PlanFunc func(ctx *Context) (Plan, bool)

var registry = make(map[game.EffectType]PlanFunc)

// Register adds or overwrites the planner for an effect.
func Register(eff game.EffectType, fn PlanFunc) {
	registry[eff] = fn
}

// PlanFor returns the plan for the active effect, or false if the effect has no
// registered planner or no legal target.
func PlanFor(eff game.EffectType, ctx *Context) (Plan, bool) {
	fn, ok := registry[eff]
	if !ok || fn == nil {
		return Plan{}, false
	}
	return fn(ctx)
}
