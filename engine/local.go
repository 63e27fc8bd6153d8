package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"kaboo-server/game"
)

// Timings drive the presentation-only delays of a local game. A zero DealSettle
// finishes dealing immediately; a zero PeekDisplay leaves reveals up until the
// round ends.
type Timings struct {
	DealSettle  time.Duration
	PeekDisplay time.Duration
}

// Local is a locally authoritative engine: moves mutate the game synchronously
// under a mutex. An illegal move is a no-op; the error is logged at debug and
// returned for callers that care.
type Local struct {
	Ops

	mu      sync.Mutex
	g       *game.Game
	timings Timings
	timers  map[*time.Timer]struct{}
	closed  bool
	subs    Broadcaster
	log     *slog.Logger
}

var _ Engine = (*Local)(nil)

// NewLocal wraps g. The engine owns g from now on.
func NewLocal(g *game.Game, t Timings) *Local {
	l := &Local{
		g:       g,
		timings: t,
		timers:  make(map[*time.Timer]struct{}),
		log:     slog.With("tag", "engine", "game", g.ID),
	}
	l.Ops = Ops{l}
	return l
}

// Apply commits m for seat.
func (l *Local) Apply(_ context.Context, seat int, m game.Move) error {
	err := l.Update(func(g *game.Game) error { return g.Apply(seat, m) })
	if err != nil && !errors.Is(err, context.Canceled) {
		l.log.Debug("move ignored", "seat", seat, "move", m.Type, "err", err)
	}
	return err
}

// Update runs fn against the game under the engine lock. Timers and subscribers
// react as for a move when fn changes the version.
func (l *Local) Update(fn func(g *game.Game) error) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return context.Canceled
	}
	before := l.g.Snapshot()
	if err := fn(l.g); err != nil {
		l.mu.Unlock()
		return err
	}
	changed := l.g.Version() != before.Version
	if changed {
		l.afterChange(before)
	}
	l.mu.Unlock()
	if changed {
		l.subs.Notify()
	}
	return nil
}

// afterChange schedules the timers implied by the transition from before to the
// current state. Called with mu held.
func (l *Local) afterChange(before game.GameState) {
	after := l.g.Snapshot()
	if err := l.g.CheckInvariants(); err != nil {
		l.log.Error("invariant violated", "err", err, "version", after.Version)
	}
	if after.GamePhase == game.PhaseDealing && (before.GamePhase != game.PhaseDealing || before.RoundNumber != after.RoundNumber) {
		round := after.RoundNumber
		if l.timings.DealSettle <= 0 {
			_ = l.g.FinishDealing()
		} else {
			l.schedule(l.timings.DealSettle, func() bool {
				if l.g.Snapshot().RoundNumber != round {
					return false
				}
				return l.g.FinishDealing() == nil
			})
		}
	}
	if l.timings.PeekDisplay <= 0 {
		return
	}
	for _, pk := range after.PeekedCards {
		if before.PeekedBy(pk.CardID, pk.Viewer) {
			continue
		}
		l.schedule(l.timings.PeekDisplay, func() bool {
			v := l.g.Version()
			l.g.HidePeek(pk.CardID, pk.Viewer)
			return l.g.Version() != v
		})
	}
}

// schedule runs fn under mu after d and notifies subscribers when fn reports a change.
func (l *Local) schedule(d time.Duration, fn func() bool) {
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		delete(l.timers, t)
		if l.closed {
			l.mu.Unlock()
			return
		}
		before := l.g.Snapshot()
		changed := fn()
		if changed {
			l.afterChange(before)
		}
		l.mu.Unlock()
		if changed {
			l.subs.Notify()
		}
	})
	l.timers[t] = struct{}{}
}

// State returns the game as seen by seat.
func (l *Local) State(_ context.Context, seat int) (game.GameState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.ViewFor(seat), nil
}

// Snapshot returns the unmasked state, for tests and persistence.
func (l *Local) Snapshot() game.GameState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Snapshot()
}

// Subscribe registers for change signals.
func (l *Local) Subscribe() (<-chan struct{}, func()) {
	return l.subs.Subscribe()
}

// Close stops pending timers; later moves fail with context.Canceled.
func (l *Local) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for t := range l.timers {
		t.Stop()
	}
	l.timers = map[*time.Timer]struct{}{}
}
