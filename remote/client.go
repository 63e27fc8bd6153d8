package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"kaboo-server/engine"
	"kaboo-server/game"
	"kaboo-server/moveerrors"
)

const maxReplySize = 1 << 20

// Client is one seat of a remotely hosted game. It never mutates state itself:
// every move is a round trip and the canonical reply replaces the local copy.
type Client struct {
	engine.Ops

	base   string
	gameID string
	seat   int
	token  string
	http   *http.Client

	cell      stateCell
	subs      engine.Broadcaster
	untrusted atomic.Bool
	log       *slog.Logger
}

var _ engine.Engine = (*Client)(nil)

// NewClient plays seat of gameID on the service at baseURL, authenticating with token.
// A nil hc uses a client with a 10 second timeout.
func NewClient(baseURL, gameID string, seat int, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		gameID: gameID,
		seat:   seat,
		token:  token,
		http:   hc,
		log:    slog.With("tag", "remote", "game", gameID),
	}
	c.Ops = engine.Ops{Submitter: c}
	return c
}

// Seat returns the seat this client plays.
func (c *Client) Seat() int {
	return c.seat
}

// Trusted reports whether the local state may be acted on. It is false between a
// loss of the change channel and the full re-fetch after reconnecting.
func (c *Client) Trusted() bool {
	return !c.untrusted.Load()
}

func (c *Client) markUntrusted() {
	if !c.untrusted.Swap(true) {
		c.log.Warn("change channel lost; moves blocked until re-fetch")
	}
}

func (c *Client) markTrusted() {
	if c.untrusted.Swap(false) {
		c.log.Info("state re-fetched; moves allowed")
	}
}

// Apply implements engine.Submitter.
func (c *Client) Apply(ctx context.Context, seat int, m game.Move) error {
	if seat != c.seat {
		return fmt.Errorf("seat %d: %w", seat, moveerrors.ErrNotSeated)
	}
	_, err := c.Submit(ctx, m)
	return err
}

// Submit sends m and returns the canonical state of the reply. A rejection is
// returned as *RejectedError after the canonical state has been re-fetched.
func (c *Client) Submit(ctx context.Context, m game.Move) (game.GameState, error) {
	if !c.Trusted() {
		return game.GameState{}, moveerrors.ErrUntrusted
	}
	payload, err := EncodeMove(m)
	if err != nil {
		return game.GameState{}, err
	}
	body, err := json.Marshal(MoveRequest{Move: payload})
	if err != nil {
		return game.GameState{}, err
	}
	st, err := c.do(ctx, http.MethodPost, "/moves", body)
	if err != nil {
		var rej *RejectedError
		if errors.As(err, &rej) {
			if _, ferr := c.Refresh(ctx); ferr != nil {
				c.log.Warn("re-fetch after rejection failed", "err", ferr)
			}
		}
		return game.GameState{}, err
	}
	return st, nil
}

// Refresh fetches the full canonical state.
func (c *Client) Refresh(ctx context.Context) (game.GameState, error) {
	return c.do(ctx, http.MethodGet, "/state", nil)
}

// State returns the newest canonical state, fetching it on first use.
func (c *Client) State(ctx context.Context, seat int) (game.GameState, error) {
	if seat != c.seat {
		return game.GameState{}, fmt.Errorf("seat %d: %w", seat, moveerrors.ErrNotSeated)
	}
	if st, ok := c.cell.get(); ok {
		return st, nil
	}
	return c.Refresh(ctx)
}

// Subscribe registers for change signals. A signal follows every newer canonical
// state applied, whether from a move reply or a re-fetch.
func (c *Client) Subscribe() (<-chan struct{}, func()) {
	return c.subs.Subscribe()
}

func (c *Client) do(ctx context.Context, method, suffix string, body []byte) (game.GameState, error) {
	u := c.base + "/api/games/" + url.PathEscape(c.gameID) + suffix
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return game.GameState{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return game.GameState{}, err
	}
	defer resp.Body.Close()

	var reply Reply
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplySize)).Decode(&reply); err != nil {
		return game.GameState{}, fmt.Errorf("%s %s: status %d: %w", method, suffix, resp.StatusCode, err)
	}
	if !reply.OK {
		return game.GameState{}, &RejectedError{Reason: reply.Reason, Status: resp.StatusCode}
	}
	if reply.State == nil {
		return game.GameState{}, fmt.Errorf("%s %s: reply without state", method, suffix)
	}
	c.accept(*reply.State)
	st, _ := c.cell.get()
	return st, nil
}

// accept applies st when it is newer than the held state.
func (c *Client) accept(st game.GameState) {
	if c.cell.offer(st) {
		c.subs.Notify()
		return
	}
	c.log.Debug("stale state discarded", "version", st.Version)
}
