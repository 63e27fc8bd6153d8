package ai

import (
	"math/rand"

	"kaboo-server/ai/heuristic"
	"kaboo-server/config"
	"kaboo-server/game"
)

// Policy is a difficulty tier plus the randomness source of one bot. Decision
// functions are otherwise pure: they read only the bot's view and memory.
type Policy struct {
	Profile config.BotProfile
	Rand    *rand.Rand
}

func clampChance(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

func (p Policy) roll(chance int) bool {
	chance = clampChance(chance)
	return chance > 0 && p.Rand.Intn(100) < chance
}

func contextFor(view game.GameState, seat int, mem *Memory, rules game.Rules) *heuristic.Context {
	return &heuristic.Context{View: view, Seat: seat, Known: mem.Cards(), Rules: rules}
}

// ChoosePeeks returns which own hand positions to look at during the initial look.
// Cards already remembered are never chosen twice.
func ChoosePeeks(self game.Player, looks int, mem *Memory, p Policy) []int {
	var unknown []int
	for i, c := range self.Hand {
		if _, ok := mem.Lookup(c.ID); !ok && !c.Known() {
			unknown = append(unknown, i)
		}
	}
	if p.roll(p.Profile.NoiseChance) {
		p.Rand.Shuffle(len(unknown), func(i, j int) { unknown[i], unknown[j] = unknown[j], unknown[i] })
	}
	if looks < len(unknown) {
		unknown = unknown[:looks]
	}
	return unknown
}

// Action is the choice made after drawing: swap the held card into HandIndex, or
// discard it.
type Action struct {
	Swap      bool
	HandIndex int
}

// ChooseAction decides what to do with the held card. The held card replaces the
// worst own card when it is strictly better.
func ChooseAction(view game.GameState, seat int, mem *Memory, rules game.Rules, p Policy) Action {
	if view.HeldCard == nil || seat < 0 || seat >= len(view.Players) {
		return Action{}
	}
	hand := view.Players[seat].Hand
	if p.roll(p.Profile.NoiseChance) {
		if len(hand) > 0 && p.Rand.Intn(2) == 0 {
			return Action{Swap: true, HandIndex: p.Rand.Intn(len(hand))}
		}
		return Action{}
	}
	ctx := contextFor(view, seat, mem, rules)
	worst, v, ok := ctx.OwnWorst("")
	if !ok {
		return Action{}
	}
	if float64(rules.CardValue(*view.HeldCard)) < v {
		return Action{Swap: true, HandIndex: worst.Index}
	}
	return Action{}
}

// EffectChoice is the bot's move for the active effect step.
type EffectChoice struct {
	heuristic.Plan
	Skip bool
}

// ChooseEffectTargets picks targets for the active effect from the legal target
// sets. A plan that does not improve the bot's position is skipped.
func ChooseEffectTargets(view game.GameState, seat int, mem *Memory, rules game.Rules, p Policy) EffectChoice {
	plan, ok := heuristic.PlanFor(view.EffectType, contextFor(view, seat, mem, rules))
	if !ok {
		return EffectChoice{Skip: true}
	}
	if plan.Gain <= 0 && !p.roll(p.Profile.NoiseChance) {
		return EffectChoice{Plan: plan, Skip: true}
	}
	return EffectChoice{Plan: plan}
}

// ShouldCallKaboo reports whether the bot should call Kaboo at the start of its
// turn: every player has had a turn, the estimated own hand is at or below the
// tier's threshold and no opponent is known to be lower.
func ShouldCallKaboo(view game.GameState, seat int, mem *Memory, rules game.Rules, p Policy) bool {
	if view.GamePhase != game.PhasePlaying || view.KabooCalled || view.CurrentPlayerIndex != seat || view.TurnPhase != game.TurnDraw {
		return false
	}
	if view.TurnNumber < len(view.Players) {
		return false
	}
	ctx := contextFor(view, seat, mem, rules)
	est, _ := ctx.HandEstimate(seat)
	if p.roll(p.Profile.NoiseChance) {
		est += float64(p.Rand.Intn(7) - 3)
	}
	if est > float64(p.Profile.KabooThreshold) {
		return false
	}
	for i := range view.Players {
		if i == seat {
			continue
		}
		if opp, _ := ctx.HandEstimate(i); opp <= est {
			return false
		}
	}
	return true
}

// ShouldTap returns the own hand positions the bot would tap onto the open window:
// cards it remembers with the window's rank. Nil means do not tap.
func ShouldTap(view game.GameState, seat int, mem *Memory, p Policy) []int {
	t := view.TapState
	if t == nil || t.Phase != game.TapWindow || seat < 0 || seat >= len(view.Players) {
		return nil
	}
	var out []int
	for i, c := range view.Players[seat].Hand {
		if known, ok := mem.Lookup(c.ID); ok && known.Rank == t.Rank {
			out = append(out, i)
		}
	}
	if len(out) == 0 || !p.roll(p.Profile.TapChance) {
		return nil
	}
	return out
}

// ChooseTapGift returns the own hand position to hand over after a successful tap.
func ChooseTapGift(view game.GameState, seat int, mem *Memory, rules game.Rules) int {
	ref, _, ok := contextFor(view, seat, mem, rules).OwnWorst("")
	if !ok {
		return -1
	}
	return ref.Index
}
