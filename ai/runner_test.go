package ai

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaboo-server/config"
	"kaboo-server/engine"
	"kaboo-server/game"
)

func quickProfile(difficulty string) config.BotProfile {
	p := config.Defaults().Profile(difficulty)
	p.DelayMinMS, p.DelayMaxMS = 0, 0
	return p
}

func localTable(t *testing.T, n int, seed int64) *engine.Local {
	t.Helper()
	seats := make([]game.Player, n)
	for i := range seats {
		seats[i] = game.NewPlayer(string(rune('a'+i)), string(rune('A'+i)))
	}
	g := game.New("bots", game.DefaultRules(), seats, game.Options{Rand: rand.New(rand.NewSource(seed))})
	l := engine.NewLocal(g, engine.Timings{})
	t.Cleanup(l.Close)
	return l
}

func TestBotsPlayARoundToReveal(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		l := localTable(t, 3, seed)
		ctx, cancel := context.WithCancel(context.Background())
		for seat, diff := range []string{"easy", "medium", "hard"} {
			r := NewRunner(l, seat, game.DefaultRules(), quickProfile(diff), 0, rand.New(rand.NewSource(seed+int64(seat))))
			go r.Run(ctx)
		}

		require.NoError(t, l.StartRound(ctx, 0))
		require.Eventually(t, func() bool {
			return l.Snapshot().GamePhase == game.PhaseReveal
		}, 10*time.Second, 10*time.Millisecond, "seed %d", seed)
		cancel()

		s := l.Snapshot()
		assert.True(t, s.KabooCalled)
		for _, p := range s.Players {
			for _, c := range p.Hand {
				assert.True(t, c.FaceUp)
			}
		}
	}
}

func TestPausedBotWaitsAtStepBoundary(t *testing.T) {
	l := localTable(t, 2, 7)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := NewRunner(l, 1, game.DefaultRules(), quickProfile("hard"), time.Millisecond, rand.New(rand.NewSource(1)))
	bot.Pause()
	go bot.Run(ctx)

	require.NoError(t, l.StartRound(ctx, 0))
	require.NoError(t, l.ReadyToPlay(ctx, 0))
	time.Sleep(50 * time.Millisecond)
	s := l.Snapshot()
	assert.Equal(t, game.PhaseInitialLook, s.GamePhase)
	assert.False(t, s.Players[1].Ready)
	assert.Equal(t, 2, s.InitialLooksRemaining[1])

	bot.Resume()
	require.Eventually(t, func() bool {
		return l.Snapshot().GamePhase == game.PhasePlaying
	}, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, l.Snapshot().InitialLooksRemaining[1], "bot used both initial looks")
}

func TestPauseAbortsTurnBeforeNextMove(t *testing.T) {
	l := localTable(t, 2, 9)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, l.StartRound(ctx, 0))
	require.NoError(t, l.ReadyToPlay(ctx, 0))
	require.NoError(t, l.ReadyToPlay(ctx, 1))

	bot := NewRunner(l, 0, game.DefaultRules(), quickProfile("hard"), time.Millisecond, rand.New(rand.NewSource(1)))
	bot.Pause()
	before := l.Snapshot()
	assert.ErrorIs(t, bot.PlayTurn(ctx), ErrPaused)
	assert.Equal(t, before, l.Snapshot())

	bot.Resume()
	require.NoError(t, bot.PlayTurn(ctx))
	assert.Equal(t, 1, l.Snapshot().CurrentPlayerIndex)
}

func card(id string, r game.Rank) game.Card {
	return game.Card{ID: id, Suit: game.Hearts, Rank: r}
}

func TestTapDecisionFollowsWindowAfterDelay(t *testing.T) {
	ctx := context.Background()
	hands := [][]game.Card{
		{card("a1", "2"), card("a2", "2"), card("a3", "2"), card("a4", "2")},
		{card("b1", "4"), card("b2", "4"), card("b3", "4"), card("b4", "4")},
		{card("c1", "5"), card("c2", "6"), card("c3", "6"), card("c4", "6")},
	}
	draw := []game.Card{card("d1", "5"), card("d2", "3"), card("d3", "9"), card("d4", "9")}
	g := game.New("tap", game.DefaultRules(), []game.Player{
		game.NewPlayer("a", "A"), game.NewPlayer("b", "B"), game.NewPlayer("c", "C"),
	}, game.Options{Deck: game.StackDeck(hands, card("s", "4"), draw)})
	l := engine.NewLocal(g, engine.Timings{})
	t.Cleanup(l.Close)

	require.NoError(t, l.StartRound(ctx, 0))
	for seat := 0; seat < 3; seat++ {
		require.NoError(t, l.ReadyToPlay(ctx, seat))
	}

	profile := quickProfile("hard")
	profile.TapChance = 100
	bot := NewRunner(l, 2, game.DefaultRules(), profile, 100*time.Millisecond, rand.New(rand.NewSource(1)))
	_, err := bot.view(ctx)
	require.NoError(t, err)
	bot.Memory().Remember(card("c1", "5"))

	require.NoError(t, l.DrawCard(ctx, 0))
	require.NoError(t, l.DiscardHeldCard(ctx, 0))
	v, err := bot.view(ctx)
	require.NoError(t, err)
	require.NotNil(t, v.TapState)
	require.Equal(t, game.Rank("5"), v.TapState.Rank)

	done := make(chan error, 1)
	go func() { done <- bot.tap(ctx, v) }()

	// A new window opens while the bot waits out its delay.
	require.NoError(t, l.EndTurn(ctx, 0))
	require.NoError(t, l.DrawCard(ctx, 1))
	require.NoError(t, l.DiscardHeldCard(ctx, 1))

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not finish its tap step")
	}

	s := l.Snapshot()
	assert.Len(t, s.Players[2].Hand, 4, "no penalty card for a window the bot never judged")
	require.NotNil(t, s.TapState)
	assert.Equal(t, game.Rank("3"), s.TapState.Rank)
	assert.Contains(t, s.TapState.Passed, 2)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
}

func TestMemoryClearedWhenMatchResets(t *testing.T) {
	ctx := context.Background()
	l := localTable(t, 2, 5)
	bot := NewRunner(l, 1, game.DefaultRules(), quickProfile("hard"), 0, rand.New(rand.NewSource(1)))

	require.NoError(t, l.StartRound(ctx, 0))
	_, err := bot.view(ctx)
	require.NoError(t, err)
	bot.Memory().Remember(l.Snapshot().Players[1].Hand[0])
	require.Equal(t, 1, bot.Memory().Len())

	require.NoError(t, l.Update(func(g *game.Game) error {
		g.ResetMatch()
		return g.StartRound()
	}))
	v, err := bot.view(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v.RoundNumber)
	assert.Zero(t, bot.Memory().Len())
}
