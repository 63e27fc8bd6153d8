package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaboo-server/game"
	"kaboo-server/moveerrors"
)

// fakeService answers state fetches with a settable version and hands every
// websocket connection to the test.
type fakeService struct {
	mu        sync.Mutex
	version   int64
	fetches   int
	failFetch bool
	conns     chan *websocket.Conn
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	svc := &fakeService{version: 1, conns: make(chan *websocket.Conn, 8)}
	up := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/games/g1/state", func(w http.ResponseWriter, r *http.Request) {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		svc.fetches++
		if svc.failFetch {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(Reply{Reason: "unavailable"})
			return
		}
		json.NewEncoder(w).Encode(Reply{OK: true, State: &game.GameState{Version: svc.version}})
	})
	mux.HandleFunc("POST /api/games/g1/moves", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(Reply{Reason: moveerrors.ErrNotYourTurn.Error()})
	})
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		svc.conns <- conn
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return svc, ts
}

func (s *fakeService) set(version int64, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version, s.failFetch = version, fail
}

func (s *fakeService) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func runListener(t *testing.T, c *Client) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewListener(c).Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}

func currentVersion(c *Client) int64 {
	st, _ := c.cell.get()
	return st.Version
}

func TestSubmitRejectionRefetchesCanonicalState(t *testing.T) {
	svc, ts := newFakeService(t)
	svc.set(7, false)
	c := NewClient(ts.URL, "g1", 0, "alice", nil)

	err := c.DrawCard(context.Background(), 0)
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusConflict, rej.Status)
	assert.ErrorIs(t, err, moveerrors.ErrNotYourTurn)

	assert.Equal(t, 1, svc.fetchCount())
	assert.EqualValues(t, 7, currentVersion(c))

	assert.ErrorIs(t, c.DrawCard(context.Background(), 1), moveerrors.ErrNotSeated)
}

func TestListenerRefetchesOnChangeEvent(t *testing.T) {
	svc, ts := newFakeService(t)
	c := NewClient(ts.URL, "g1", 0, "alice", nil)
	changes, cancel := c.Subscribe()
	defer cancel()
	runListener(t, c)

	conn := <-svc.conns
	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no state after connecting")
	}
	require.EqualValues(t, 1, currentVersion(c))

	svc.set(5, false)
	require.NoError(t, conn.WriteJSON(ChangeEvent{Entity: EntityGame, GameID: "other", Version: 5}))
	require.NoError(t, conn.WriteJSON(ChangeEvent{Entity: EntityMembers, GameID: "g1"}))
	assert.Eventually(t, func() bool { return currentVersion(c) == 5 }, 2*time.Second, 10*time.Millisecond)
}

func TestDisconnectBlocksMovesUntilRefetch(t *testing.T) {
	svc, ts := newFakeService(t)
	c := NewClient(ts.URL, "g1", 0, "alice", nil)
	runListener(t, c)

	conn := <-svc.conns
	require.Eventually(t, func() bool { return svc.fetchCount() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, c.Trusted())

	svc.set(9, true)
	conn.Close()
	require.Eventually(t, func() bool { return !c.Trusted() }, 2*time.Second, 10*time.Millisecond)

	_, err := c.Submit(context.Background(), game.Move{Type: game.MoveDrawFromDeck})
	assert.ErrorIs(t, err, moveerrors.ErrUntrusted)

	svc.set(9, false)
	assert.Eventually(t, c.Trusted, 5*time.Second, 20*time.Millisecond)
	assert.EqualValues(t, 9, currentVersion(c))
}
