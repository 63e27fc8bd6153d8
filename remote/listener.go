package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	pongWait   = 60 * time.Second
	writeWait  = 10 * time.Second
	minBackoff = 250 * time.Millisecond
	maxBackoff = 10 * time.Second
)

// Listener keeps a change-notification subscription open for a Client and
// re-fetches canonical state on every relevant event. While disconnected the
// client is untrusted; trust returns after the reconnect re-fetch succeeds.
type Listener struct {
	client *Client
	url    string
	dialer *websocket.Dialer
	log    *slog.Logger
}

// NewListener subscribes to changes of the client's game.
func NewListener(c *Client) *Listener {
	u := c.base
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	q := url.Values{"game": {c.gameID}, "token": {c.token}}
	return &Listener{
		client: c,
		url:    u + "/ws?" + q.Encode(),
		dialer: websocket.DefaultDialer,
		log:    slog.With("tag", "remote", "game", c.gameID),
	}
}

// Run keeps the subscription alive until ctx is done, reconnecting with backoff.
func (l *Listener) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		connected, err := l.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.client.markUntrusted()
		if connected {
			backoff = minBackoff
		}
		l.log.Warn("change channel closed", "err", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// session runs one connection. connected reports whether the dial and the
// initial re-fetch succeeded.
func (l *Listener) session(ctx context.Context) (connected bool, err error) {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	if _, err := l.client.Refresh(ctx); err != nil {
		return false, err
	}
	l.client.markTrusted()

	g, gctx := errgroup.WithContext(ctx)
	refetch := make(chan struct{}, 1)

	g.Go(func() error {
		<-gctx.Done()
		conn.Close()
		return nil
	})
	g.Go(func() error {
		return l.read(conn, refetch)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-refetch:
				if _, err := l.client.Refresh(gctx); err != nil && gctx.Err() == nil {
					l.log.Warn("re-fetch failed", "err", err)
				}
			}
		}
	})
	return true, g.Wait()
}

// read forwards relevant change events to refetch. Events coalesce.
func (l *Listener) read(conn *websocket.Conn, refetch chan<- struct{}) error {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev ChangeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			l.log.Debug("ignoring malformed event", "err", err)
			continue
		}
		if ev.GameID != l.client.gameID || (ev.Entity != EntityGame && ev.Entity != EntityMembers) {
			continue
		}
		if cur, ok := l.client.cell.get(); ok && ev.Entity == EntityGame && ev.Version != 0 && ev.Version <= cur.Version {
			continue
		}
		select {
		case refetch <- struct{}{}:
		default:
		}
	}
}
