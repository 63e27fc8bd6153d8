package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"kaboo-server/auth"
	"kaboo-server/moveerrors"
	"kaboo-server/remote"
)

const maxBodySize = 64 << 10

var errBadRequest = errors.New("bad request")

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleCreate)
	mux.HandleFunc("POST /api/games/{id}/join", s.handleJoin)
	mux.HandleFunc("GET /api/games/{id}/state", s.handleState)
	mux.HandleFunc("POST /api/games/{id}/moves", s.handleMove)
	mux.HandleFunc("GET /ws", s.handleWS)
	return withCORS(mux)
}

// withCORS sets CORS headers and answers preflight requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) identify(r *http.Request) (auth.Identity, error) {
	return s.verifier.Verify(auth.TokenFromRequest(r))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := s.identify(r)
	if err != nil {
		s.fail(w, http.StatusUnauthorized, err)
		return
	}
	var req remote.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	name, err := s.displayName(req.Name, id)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	sess, err := s.CreateGame(r.Context(), id, name, req.Bots, req.BotDifficulty, req.TargetScore)
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	seat := 0
	st := sess.View(r.Context(), seat)
	writeJSON(w, http.StatusCreated, remote.Reply{OK: true, GameID: sess.ID, Seat: &seat, State: &st})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	id, err := s.identify(r)
	if err != nil {
		s.fail(w, http.StatusUnauthorized, err)
		return
	}
	sess, err := s.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	var req remote.JoinRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	name, err := s.displayName(req.Name, id)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	seat, err := sess.Join(r.Context(), id, name)
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	st := sess.View(r.Context(), seat)
	writeJSON(w, http.StatusOK, remote.Reply{OK: true, GameID: sess.ID, Seat: &seat, State: &st})
}

// handleState answers with the caller's view; callers without a seat get the
// spectator view.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id, err := s.identify(r)
	if err != nil {
		s.fail(w, http.StatusUnauthorized, err)
		return
	}
	sess, err := s.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	seat, _ := sess.SeatOf(id.PlayerID)
	st := sess.View(r.Context(), seat)
	writeJSON(w, http.StatusOK, remote.Reply{OK: true, GameID: sess.ID, Seat: &seat, State: &st})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, err := s.identify(r)
	if err != nil {
		s.fail(w, http.StatusUnauthorized, err)
		return
	}
	sess, err := s.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	seat, ok := sess.SeatOf(id.PlayerID)
	if !ok {
		s.fail(w, http.StatusForbidden, moveerrors.ErrNotSeated)
		return
	}
	var req remote.MoveRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	m, err := remote.DecodeMove(req.Move)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if err := sess.Move(seat, m, req.BaseVersion); err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	st := sess.View(r.Context(), seat)
	writeJSON(w, http.StatusOK, remote.Reply{OK: true, GameID: sess.ID, Seat: &seat, State: &st})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id, err := s.identify(r)
	if err != nil {
		s.fail(w, http.StatusUnauthorized, err)
		return
	}
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("missing game: %w", errBadRequest))
		return
	}
	if _, err := s.Session(r.Context(), gameID); err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	s.hub.ServeWS(w, r, gameID, id.PlayerID)
}

// displayName picks the requested name, or the identity's, within the length limit.
func (s *Server) displayName(requested string, id auth.Identity) (string, error) {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = id.Name
	}
	if n := utf8.RuneCountInString(name); n < 1 || n > s.cfg.MaxNameLength {
		return "", fmt.Errorf("name must be between 1 and %d characters: %w", s.cfg.MaxNameLength, errBadRequest)
	}
	return name, nil
}

// statusFor maps a rejection to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, moveerrors.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, moveerrors.ErrNotSeated), errors.Is(err, moveerrors.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, moveerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, moveerrors.ErrUnknownMove), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, remote.Reply{Reason: moveerrors.Reason(err)})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%v: %w", err, errBadRequest)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
