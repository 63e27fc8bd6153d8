package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"kaboo-server/ai"
	"kaboo-server/auth"
	"kaboo-server/engine"
	"kaboo-server/game"
	"kaboo-server/moveerrors"
	"kaboo-server/remote"
	"kaboo-server/storage"
)

// Session hosts one game. The engine serialises moves; Run persists and
// announces every change.
type Session struct {
	ID  string
	eng *engine.Local
	srv *Server

	mu       sync.Mutex
	limiters map[int]*rate.Limiter
	recorded int
	bots     []*ai.Runner
	log      *slog.Logger
}

func newSession(srv *Server, g *game.Game) *Session {
	return &Session{
		ID:       g.ID,
		eng:      engine.NewLocal(g, srv.timings()),
		srv:      srv,
		limiters: make(map[int]*rate.Limiter),
		recorded: g.Snapshot().RoundNumber,
		log:      slog.With("tag", "server", "game", g.ID),
	}
}

// start launches the change loop and a runner for every bot seat.
func (s *Session) start(ctx context.Context) {
	st := s.eng.Snapshot()
	profile := s.srv.cfg.Profile(st.Settings.BotDifficulty)
	step := time.Duration(s.srv.cfg.BotStepDelayMS) * time.Millisecond
	for seat, p := range st.Players {
		if !p.IsBot {
			continue
		}
		r := ai.NewRunner(s.eng, seat, s.srv.rules, profile, step, rand.New(rand.NewSource(time.Now().UnixNano()+int64(seat))))
		s.bots = append(s.bots, r)
		go func(seat int) {
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error("bot stopped", "seat", seat, "err", err)
			}
		}(seat)
	}
	go s.Run(ctx)
}

// Run persists the canonical state and broadcasts a change event after every
// state change, until ctx is done.
func (s *Session) Run(ctx context.Context) {
	changes, cancel := s.eng.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			s.publish(ctx)
		}
	}
}

func (s *Session) publish(ctx context.Context) {
	st := s.eng.Snapshot()
	if err := s.srv.store.SaveGame(ctx, s.ID, st); err != nil {
		s.log.Error("save game failed", "err", err, "version", st.Version)
	}
	s.mu.Lock()
	record := st.GamePhase == game.PhaseReveal && st.RoundNumber > s.recorded
	if record {
		s.recorded = st.RoundNumber
	}
	s.mu.Unlock()
	if record {
		if err := s.srv.store.SaveRound(ctx, storage.RoundResultsFrom(s.ID, st)); err != nil {
			s.log.Error("save round failed", "err", err, "round", st.RoundNumber)
		}
		s.log.Info("round revealed", "round", st.RoundNumber, "match_over", st.MatchOver)
	}
	s.srv.hub.Broadcast(remote.ChangeEvent{Entity: remote.EntityGame, GameID: s.ID, Version: st.Version})
}

// SeatOf returns the seat of playerID.
func (s *Session) SeatOf(playerID string) (int, bool) {
	for i, p := range s.eng.Snapshot().Players {
		if p.ID == playerID {
			return i, true
		}
	}
	return game.NoPlayer, false
}

// View returns the state as seen by seat.
func (s *Session) View(ctx context.Context, seat int) game.GameState {
	st, _ := s.eng.State(ctx, seat)
	return st
}

// Join seats the caller, or returns the seat they already hold.
func (s *Session) Join(ctx context.Context, id auth.Identity, name string) (int, error) {
	seat := game.NoPlayer
	joined := false
	err := s.eng.Update(func(g *game.Game) error {
		st := g.Snapshot()
		for i, p := range st.Players {
			if p.ID == id.PlayerID {
				seat = i
				return nil
			}
		}
		if len(st.Players) >= s.srv.cfg.MaxPlayers {
			return moveerrors.ErrGameFull
		}
		i, err := g.AddPlayer(game.Player{ID: id.PlayerID, Name: name})
		if err != nil {
			return err
		}
		seat, joined = i, true
		return nil
	})
	if err != nil {
		return game.NoPlayer, err
	}
	if joined {
		if err := s.srv.store.UpsertMember(ctx, s.ID, storage.Member{Seat: seat, PlayerID: id.PlayerID, Name: name}); err != nil {
			s.log.Error("save member failed", "err", err, "seat", seat)
		}
		s.srv.hub.Broadcast(remote.ChangeEvent{Entity: remote.EntityMembers, GameID: s.ID})
		s.log.Info("player joined", "seat", seat, "player", id.PlayerID)
	}
	return seat, nil
}

// Move commits m for seat. Round control is reserved to the host. A non-zero
// base rejects the move when the game has changed since that version.
func (s *Session) Move(seat int, m game.Move, base int64) error {
	if !s.allow(seat) {
		return moveerrors.ErrRateLimited
	}
	err := s.eng.Update(func(g *game.Game) error {
		players := g.Snapshot().Players
		if seat < 0 || seat >= len(players) {
			return moveerrors.ErrNotSeated
		}
		if m.Type.RoundControl() && !players[seat].IsHost {
			return moveerrors.ErrNotHost
		}
		if base != 0 && base != g.Version() {
			return fmt.Errorf("based on %d, game at %d: %w", base, g.Version(), moveerrors.ErrStaleState)
		}
		return g.Apply(seat, m)
	})
	if err != nil {
		s.log.Debug("move rejected", "seat", seat, "move", m.Type, "err", err)
	}
	return err
}

func (s *Session) allow(seat int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[seat]
	if !ok {
		limit := rate.Limit(s.srv.cfg.MoveRateLimit)
		if limit <= 0 {
			limit = rate.Inf
		}
		l = rate.NewLimiter(limit, s.srv.cfg.MoveBurst)
		s.limiters[seat] = l
	}
	return l.Allow()
}

// Close stops the engine timers. Bots and Run end with the server context.
func (s *Session) Close() {
	s.eng.Close()
}
