package ai

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"kaboo-server/config"
	"kaboo-server/engine"
	"kaboo-server/game"
)

// ErrPaused aborts a bot step sequence at a step boundary.
var ErrPaused = errors.New("bot paused")

// Runner plays one seat through an engine. It only ever reads the seat's own view.
type Runner struct {
	eng    engine.Engine
	seat   int
	rules  game.Rules
	policy Policy
	mem    *Memory
	step   time.Duration

	paused atomic.Bool
	wake   chan struct{}

	round     int
	deal      string
	tapWindow string
	log       *slog.Logger
}

// NewRunner creates a bot for seat. step is the pacing delay used when the profile
// has no delay range of its own.
func NewRunner(eng engine.Engine, seat int, rules game.Rules, profile config.BotProfile, step time.Duration, rng *rand.Rand) *Runner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Runner{
		eng:    eng,
		seat:   seat,
		rules:  rules,
		policy: Policy{Profile: profile, Rand: rng},
		mem:    NewMemory(),
		step:   step,
		wake:   make(chan struct{}, 1),
		log:    slog.With("tag", "ai", "name", profile.Name, "seat", seat),
	}
}

// Memory exposes the bot's memory for inspection.
func (r *Runner) Memory() *Memory {
	return r.mem
}

// Pause suspends the bot at its next step boundary.
func (r *Runner) Pause() {
	r.paused.Store(true)
}

// Resume lets a paused bot continue from the current state.
func (r *Runner) Resume() {
	r.paused.Store(false)
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Paused reports whether the bot is paused.
func (r *Runner) Paused() bool {
	return r.paused.Load()
}

// Run reacts to every state change until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	changes, cancel := r.eng.Subscribe()
	defer cancel()
	for {
		if !r.Paused() {
			if err := r.react(ctx); err != nil && !errors.Is(err, ErrPaused) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.log.Debug("bot step failed", "err", err)
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
		case <-r.wake:
		}
	}
}

func (r *Runner) view(ctx context.Context) (game.GameState, error) {
	v, err := r.eng.State(ctx, r.seat)
	if err != nil {
		return v, err
	}
	// The starter discard identifies a deal, so a reset match that reaches the
	// same round number still clears memory.
	deal := ""
	if len(v.DiscardPile) > 0 {
		deal = v.DiscardPile[0].ID
	}
	if v.RoundNumber != r.round || deal != r.deal {
		r.round = v.RoundNumber
		r.deal = deal
		r.mem.Reset()
		r.tapWindow = ""
	}
	r.mem.Observe(v)
	return v, nil
}

func (r *Runner) react(ctx context.Context) error {
	v, err := r.view(ctx)
	if err != nil {
		return err
	}
	if r.seat < 0 || r.seat >= len(v.Players) {
		return nil
	}
	switch {
	case v.GamePhase == game.PhaseInitialLook && !v.Players[r.seat].Ready:
		return r.initialLook(ctx, v)
	case (v.GamePhase == game.PhasePlaying || v.GamePhase == game.PhaseKabooFinal) && v.CurrentPlayerIndex == r.seat:
		return r.PlayTurn(ctx)
	case v.TapState != nil:
		return r.tap(ctx, v)
	}
	return nil
}

// pace waits one pacing delay. It reports ErrPaused if the bot was paused before
// or during the wait; no move may follow a failed pace.
func (r *Runner) pace(ctx context.Context) error {
	if r.Paused() {
		return ErrPaused
	}
	if d := r.delay(); d > 0 {
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	if r.Paused() {
		return ErrPaused
	}
	return nil
}

func (r *Runner) delay() time.Duration {
	p := r.policy.Profile
	if p.DelayMaxMS <= 0 {
		return r.step
	}
	ms := p.DelayMinMS
	if p.DelayMaxMS > p.DelayMinMS {
		ms += r.policy.Rand.Intn(p.DelayMaxMS - p.DelayMinMS)
	}
	return time.Duration(ms) * time.Millisecond
}

func (r *Runner) initialLook(ctx context.Context, v game.GameState) error {
	looks := 0
	if r.seat < len(v.InitialLooksRemaining) {
		looks = v.InitialLooksRemaining[r.seat]
	}
	for _, idx := range ChoosePeeks(v.Players[r.seat], looks, r.mem, r.policy) {
		if err := r.pace(ctx); err != nil {
			return err
		}
		if err := r.eng.PeekOwn(ctx, r.seat, idx); err != nil {
			return err
		}
		if _, err := r.view(ctx); err != nil {
			return err
		}
	}
	if err := r.pace(ctx); err != nil {
		return err
	}
	r.log.Debug("ready", "remembered", r.mem.Len())
	return r.eng.ReadyToPlay(ctx, r.seat)
}

// PlayTurn runs the bot's turn to completion: Kaboo check, draw, act, effect and
// end turn, pacing before every step. It resumes from whatever step the turn is at.
func (r *Runner) PlayTurn(ctx context.Context) error {
	for {
		if err := r.pace(ctx); err != nil {
			return err
		}
		v, err := r.view(ctx)
		if err != nil {
			return err
		}
		if (v.GamePhase != game.PhasePlaying && v.GamePhase != game.PhaseKabooFinal) || v.CurrentPlayerIndex != r.seat {
			return nil
		}
		switch v.TurnPhase {
		case game.TurnDraw:
			if ShouldCallKaboo(v, r.seat, r.mem, r.rules, r.policy) {
				r.log.Info("calling kaboo", "turn", v.TurnNumber)
				if err = r.eng.CallKaboo(ctx, r.seat); err == nil {
					break
				}
			}
			err = r.eng.DrawCard(ctx, r.seat)
		case game.TurnAction:
			a := ChooseAction(v, r.seat, r.mem, r.rules, r.policy)
			if a.Swap {
				r.log.Debug("swapping held card", "index", a.HandIndex)
				if err = r.eng.SwapCard(ctx, r.seat, a.HandIndex); err == nil {
					break
				}
			}
			err = r.eng.DiscardHeldCard(ctx, r.seat)
		case game.TurnEffect:
			err = r.playEffect(ctx, v)
		case game.TurnEnd:
			if err = r.eng.EndTurn(ctx, r.seat); err == nil {
				r.mem.Forget(r.policy.Profile.ForgetChance, r.policy.Rand)
				return nil
			}
		}
		if err != nil {
			return err
		}
	}
}

func (r *Runner) playEffect(ctx context.Context, v game.GameState) error {
	choice := ChooseEffectTargets(v, r.seat, r.mem, r.rules, r.policy)
	r.log.Debug("effect", "effect", v.EffectType, "step", v.EffectStep, "skip", choice.Skip, "gain", choice.Gain)
	if choice.Skip {
		return r.eng.SkipEffect(ctx, r.seat)
	}
	for _, ref := range choice.Targets {
		if err := r.eng.SelectEffectCard(ctx, r.seat, ref); err != nil {
			return r.eng.SkipEffect(ctx, r.seat)
		}
	}
	if choice.Confirm {
		if err := r.eng.ConfirmEffect(ctx, r.seat); err != nil {
			return r.eng.SkipEffect(ctx, r.seat)
		}
	}
	return nil
}

// tap handles out-of-turn tap windows: decide once per window, then follow
// through selection and hand-offs. The decision is taken on the state read after
// the pacing delay.
func (r *Runner) tap(ctx context.Context, v game.GameState) error {
	t := v.TapState
	switch t.Phase {
	case game.TapWindow:
		top, _ := v.Top()
		key := top.ID
		if key == r.tapWindow || t.TriggerPlayer == r.seat || v.TurnPhase == game.TurnEffect {
			return nil
		}
		r.tapWindow = key
		if err := r.pace(ctx); err != nil {
			r.tapWindow = ""
			return err
		}
		fresh, err := r.view(ctx)
		if err != nil {
			return err
		}
		if now, _ := fresh.Top(); fresh.TapState == nil || fresh.TapState.Phase != game.TapWindow ||
			now.ID != key || fresh.TapState.Rank != t.Rank {
			// The window moved on during the delay; start over from the current state.
			return r.react(ctx)
		}
		if fresh.TurnPhase == game.TurnEffect {
			r.tapWindow = ""
			return nil
		}
		picks := ShouldTap(fresh, r.seat, r.mem, r.policy)
		if len(picks) == 0 {
			return r.eng.PassTap(ctx, r.seat)
		}
		r.log.Debug("tapping", "rank", t.Rank, "cards", len(picks))
		for _, idx := range picks {
			if err := r.eng.SelectTapCard(ctx, r.seat, idx); err != nil {
				return err
			}
		}
		return r.eng.ConfirmTap(ctx, r.seat)
	case game.TapSelecting:
		if t.Tapper == r.seat {
			return r.eng.ConfirmTap(ctx, r.seat)
		}
	case game.TapSwapping:
		if t.Tapper != r.seat {
			return nil
		}
		if err := r.pace(ctx); err != nil {
			return err
		}
		idx := ChooseTapGift(v, r.seat, r.mem, r.rules)
		if idx < 0 {
			return r.eng.SkipTapSwap(ctx, r.seat)
		}
		return r.eng.TapSwap(ctx, r.seat, idx)
	}
	return nil
}
