// Package server is an authoritative host for games: it validates moves with the
// rules engine, answers with canonical state and pushes change events to
// websocket subscribers.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"kaboo-server/auth"
	"kaboo-server/config"
	"kaboo-server/engine"
	"kaboo-server/game"
	"kaboo-server/moveerrors"
	"kaboo-server/storage"
)

// Server owns the live sessions.
type Server struct {
	cfg      *config.Config
	rules    game.Rules
	store    storage.GameStore
	verifier auth.Verifier
	hub      *Hub

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	log      *slog.Logger
}

// New creates a server. store may be a nil *storage.Store for an in-memory
// server; a nil verifier accepts any token as the player id.
func New(cfg *config.Config, store storage.GameStore, verifier auth.Verifier) (*Server, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	if store == nil {
		store = (*storage.Store)(nil)
	}
	if verifier == nil {
		verifier = auth.DevVerifier{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:      cfg,
		rules:    rules,
		store:    store,
		verifier: verifier,
		hub:      NewHub(),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
		log:      slog.With("tag", "server"),
	}, nil
}

// Run serves change events until ctx is done, then closes every session.
func (s *Server) Run(ctx context.Context) error {
	s.hub.Run(ctx)
	s.Close()
	return nil
}

// Close stops all sessions and their bots.
func (s *Server) Close() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}

func (s *Server) timings() engine.Timings {
	return engine.Timings{
		DealSettle:  time.Duration(s.cfg.DealSettleMS) * time.Millisecond,
		PeekDisplay: time.Duration(s.cfg.PeekDisplayMS) * time.Millisecond,
	}
}

// CreateGame opens a game hosted by id with the given number of bot seats.
func (s *Server) CreateGame(ctx context.Context, id auth.Identity, name string, bots int, difficulty string, targetScore int) (*Session, error) {
	if bots < 0 || bots > s.cfg.MaxPlayers-1 {
		return nil, fmt.Errorf("%d bots: %w", bots, moveerrors.ErrGameFull)
	}
	if difficulty == "" {
		difficulty = "medium"
	}
	profile := s.cfg.Profile(difficulty)
	players := []game.Player{{ID: id.PlayerID, Name: name, IsHost: true}}
	for i := 0; i < bots; i++ {
		botName := profile.Name
		if bots > 1 {
			botName = fmt.Sprintf("%s %d", profile.Name, i+1)
		}
		players = append(players, game.Player{ID: "bot:" + uuid.NewString(), Name: botName, IsBot: true})
	}
	g := game.New(uuid.NewString(), s.rules, players, game.Options{
		Settings: game.Settings{BotDifficulty: difficulty, TargetScore: targetScore},
	})

	if err := s.store.SaveGame(ctx, g.ID, g.Snapshot()); err != nil {
		return nil, fmt.Errorf("save game: %w", err)
	}
	for _, m := range storage.MembersFrom(g.Snapshot()) {
		if err := s.store.UpsertMember(ctx, g.ID, m); err != nil {
			return nil, fmt.Errorf("save member: %w", err)
		}
	}

	sess := newSession(s, g)
	s.mu.Lock()
	s.sessions[g.ID] = sess
	s.mu.Unlock()
	sess.start(s.ctx)
	s.log.Info("game created", "game", g.ID, "host", id.PlayerID, "bots", bots, "difficulty", difficulty)
	return sess, nil
}

// Session returns the live session of gameID, restoring it from storage when
// it is not in memory.
func (s *Server) Session(ctx context.Context, gameID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[gameID]; ok {
		return sess, nil
	}
	st, err := s.store.LoadGame(ctx, gameID)
	if err != nil {
		if !errors.Is(err, moveerrors.ErrGameNotFound) {
			s.log.Error("load game failed", "game", gameID, "err", err)
		}
		return nil, moveerrors.ErrGameNotFound
	}
	sess := newSession(s, game.Restore(gameID, s.rules, st, game.Options{}))
	s.sessions[gameID] = sess
	sess.start(s.ctx)
	s.log.Info("game restored", "game", gameID, "version", st.Version)
	return sess, nil
}
