package keymap

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaboo-server/engine"
	"kaboo-server/game"
	"kaboo-server/moveerrors"
)

func TestParse(t *testing.T) {
	km, err := Parse(map[string]string{"Space": "draw", "Esc": "SKIP"})
	require.NoError(t, err)
	a, ok := km.Lookup("space")
	assert.True(t, ok)
	assert.Equal(t, ActionDraw, a)
	a, _ = km.Lookup("escape")
	assert.Equal(t, ActionSkip, a)

	_, err = Parse(map[string]string{"q": "fly"})
	assert.ErrorContains(t, err, "fly")
}

func TestDefaultCoversEveryAction(t *testing.T) {
	km := Default()
	for a := range actions {
		assert.NotEmpty(t, km.Bindings(a), "action %s", a)
	}
}

func newTable(t *testing.T) (*engine.Local, *Dispatcher) {
	t.Helper()
	g := game.New("keys", game.DefaultRules(), []game.Player{
		game.NewPlayer("a", "A"), game.NewPlayer("b", "B"),
	}, game.Options{Rand: rand.New(rand.NewSource(5))})
	l := engine.NewLocal(g, engine.Timings{})
	t.Cleanup(l.Close)
	return l, NewDispatcher(l, 0, Default())
}

func TestDispatchSuppressedOutsidePlay(t *testing.T) {
	ctx := context.Background()
	l, d := newTable(t)

	_, err := d.Handle(ctx, "d", Focus{})
	assert.ErrorIs(t, err, ErrSuppressed, "waiting phase")

	require.NoError(t, l.StartRound(ctx, 0))
	for _, f := range []Focus{{TextInput: true}, {Modal: true}, {Paused: true}} {
		_, err := d.Handle(ctx, "1", f)
		assert.ErrorIs(t, err, ErrSuppressed)
	}
	assert.Equal(t, 2, l.Snapshot().InitialLooksRemaining[0])

	_, err = d.Handle(ctx, "q", Focus{})
	assert.ErrorIs(t, err, ErrUnbound)
}

func TestDispatchInitialLookAndTurn(t *testing.T) {
	ctx := context.Background()
	l, d := newTable(t)
	require.NoError(t, l.StartRound(ctx, 0))

	a, err := d.Handle(ctx, "1", Focus{})
	require.NoError(t, err)
	assert.Equal(t, ActionSelect1, a)
	assert.Equal(t, 1, l.Snapshot().InitialLooksRemaining[0])

	_, err = d.Handle(ctx, "Enter", Focus{})
	require.NoError(t, err)
	require.NoError(t, l.ReadyToPlay(ctx, 1))
	require.Equal(t, game.PhasePlaying, l.Snapshot().GamePhase)

	_, err = d.Handle(ctx, "d", Focus{})
	require.NoError(t, err)
	_, err = d.Handle(ctx, "d", Focus{})
	assert.ErrorIs(t, err, moveerrors.ErrAlreadyDrawn)

	held := *l.Snapshot().HeldCard
	_, err = d.Handle(ctx, "3", Focus{})
	require.NoError(t, err)
	_, err = d.Handle(ctx, "s", Focus{})
	require.NoError(t, err)
	assert.Equal(t, held.ID, l.Snapshot().Players[0].Hand[2].ID)
}

func TestConfirmWithoutContext(t *testing.T) {
	ctx := context.Background()
	l, d := newTable(t)
	require.NoError(t, l.StartRound(ctx, 0))
	require.NoError(t, l.ReadyToPlay(ctx, 0))
	require.NoError(t, l.ReadyToPlay(ctx, 1))

	_, err := d.Handle(ctx, "enter", Focus{})
	assert.ErrorIs(t, err, ErrNoContext)
}
