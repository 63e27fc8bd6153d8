package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"kaboo-server/moveerrors"
)

// Options tune a Game for tests, replays and restored sessions.
type Options struct {
	// Rand drives shuffling. Defaults to a time-seeded source.
	Rand *rand.Rand
	// Deck, when set, is dealt in the given order (top is the last element) instead
	// of a freshly shuffled deck. It is reused for every round.
	Deck     []Card
	Settings Settings
}

// Game is the single writer of one GameState. Its methods are synchronous and
// atomic; a method that returns an error leaves the state untouched. Callers
// must serialise access.
type Game struct {
	ID    string
	rules Rules
	rng   *rand.Rand
	deck  []Card
	state GameState
}

// New creates a game in the waiting phase with the given seats.
func New(id string, rules Rules, players []Player, opts Options) *Game {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	settings := opts.Settings
	settings.PlayerCount = len(players)
	if settings.TargetScore == 0 {
		settings.TargetScore = rules.TargetScore
	}
	seats := make([]Player, len(players))
	for i, p := range players {
		p.Hand = []Card{}
		seats[i] = p
	}
	return &Game{
		ID:    id,
		rules: rules,
		rng:   rng,
		deck:  append([]Card{}, opts.Deck...),
		state: GameState{
			GamePhase:          PhaseWaiting,
			CurrentPlayerIndex: NoPlayer,
			Players:            seats,
			DrawPile:           []Card{},
			DiscardPile:        []Card{},
			KabooCallerIndex:   SystemCaller,
			Settings:           settings,
		},
	}
}

// Restore rebuilds a game around a previously snapshotted canonical state.
func Restore(id string, rules Rules, state GameState, opts Options) *Game {
	g := New(id, rules, nil, opts)
	g.state = state.Clone()
	return g
}

// Rules returns the rules the game was created with.
func (g *Game) Rules() Rules {
	return g.rules
}

// Snapshot returns a deep copy of the full state.
func (g *Game) Snapshot() GameState {
	return g.state.Clone()
}

// ViewFor returns the state as seen by the given player.
func (g *Game) ViewFor(playerIdx int) GameState {
	return g.state.View(playerIdx)
}

// Phase returns the current game phase.
func (g *Game) Phase() GamePhase {
	return g.state.GamePhase
}

// Version returns the mutation counter.
func (g *Game) Version() int64 {
	return g.state.Version
}

// AddPlayer seats a new player while the game is waiting.
func (g *Game) AddPlayer(p Player) (int, error) {
	if g.state.GamePhase != PhaseWaiting {
		return NoPlayer, moveerrors.ErrWrongPhase
	}
	p.Hand = []Card{}
	g.state.Players = append(g.state.Players, p)
	g.state.Settings.PlayerCount = len(g.state.Players)
	g.bump()
	return len(g.state.Players) - 1, nil
}

// SetPlayerName renames a seat; allowed in any phase.
func (g *Game) SetPlayerName(playerIdx int, name string) error {
	if err := g.validPlayer(playerIdx); err != nil {
		return err
	}
	g.state.Players[playerIdx].Name = name
	g.bump()
	return nil
}

func (g *Game) bump() {
	g.state.Version++
}

func (g *Game) validPlayer(playerIdx int) error {
	if playerIdx < 0 || playerIdx >= len(g.state.Players) {
		return fmt.Errorf("player %d: %w", playerIdx, moveerrors.ErrInvalidPlayer)
	}
	return nil
}

// requireTurn checks that playerIdx is the actor and the turn is at phase.
func (g *Game) requireTurn(playerIdx int, phase TurnPhase) error {
	if err := g.validPlayer(playerIdx); err != nil {
		return err
	}
	if !g.state.GamePhase.inTurns() {
		return moveerrors.ErrWrongPhase
	}
	if g.state.CurrentPlayerIndex != playerIdx {
		return moveerrors.ErrNotYourTurn
	}
	if g.state.TurnPhase != phase {
		if phase == TurnDraw && g.state.HeldCard != nil {
			return moveerrors.ErrAlreadyDrawn
		}
		return moveerrors.ErrWrongPhase
	}
	return nil
}

func (g *Game) popDraw() (Card, bool) {
	n := len(g.state.DrawPile)
	if n == 0 {
		return Card{}, false
	}
	c := g.state.DrawPile[n-1]
	g.state.DrawPile = g.state.DrawPile[:n-1]
	return c, true
}

func (g *Game) pushDiscard(c Card) {
	c.FaceUp = true
	g.state.DiscardPile = append(g.state.DiscardPile, c)
}

func (g *Game) addPeek(cardID string, viewer int) {
	if g.state.PeekedBy(cardID, viewer) {
		return
	}
	g.state.PeekedCards = append(g.state.PeekedCards, Peek{CardID: cardID, Viewer: viewer})
}

// HidePeek ends the reveal of cardID to viewer. Other viewers of the same card keep
// theirs. Hiding a card that is not revealed is a no-op.
func (g *Game) HidePeek(cardID string, viewer int) {
	kept := g.state.PeekedCards[:0]
	removed := false
	for _, pk := range g.state.PeekedCards {
		if pk.CardID == cardID && pk.Viewer == viewer {
			removed = true
			continue
		}
		kept = append(kept, pk)
	}
	g.state.PeekedCards = kept
	if removed {
		g.bump()
	}
}

func (g *Game) logger() *slog.Logger {
	return slog.With("tag", "game", "game", g.ID)
}
