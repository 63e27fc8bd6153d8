package game

// GamePhase is the round-level phase.
type GamePhase int

const (
	PhaseWaiting GamePhase = iota
	PhaseDealing
	PhaseInitialLook
	PhasePlaying
	PhaseKabooFinal
	PhaseReveal
)

var gamePhaseNames = []string{"waiting", "dealing", "initial_look", "playing", "kaboo_final", "reveal"}

// String returns the protocol string for a GamePhase.
func (p GamePhase) String() string {
	if int(p) < 0 || int(p) >= len(gamePhaseNames) {
		return "unknown"
	}
	return gamePhaseNames[p]
}

func (p GamePhase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *GamePhase) UnmarshalText(b []byte) error {
	for i, n := range gamePhaseNames {
		if n == string(b) {
			*p = GamePhase(i)
			return nil
		}
	}
	return &enumError{kind: "game phase", value: string(b)}
}

// inTurns reports whether the turn cycle runs in this phase.
func (p GamePhase) inTurns() bool {
	return p == PhasePlaying || p == PhaseKabooFinal
}

// TurnPhase is the step of the acting player's turn. TurnNone outside playing/kaboo_final.
type TurnPhase int

const (
	TurnNone TurnPhase = iota
	TurnDraw
	TurnAction
	TurnEffect
	TurnEnd
)

var turnPhaseNames = []string{"", "draw", "action", "effect", "end_turn"}

// String returns the protocol string for a TurnPhase.
func (tp TurnPhase) String() string {
	if int(tp) < 0 || int(tp) >= len(turnPhaseNames) {
		return "unknown"
	}
	return turnPhaseNames[tp]
}

func (tp TurnPhase) MarshalText() ([]byte, error) { return []byte(tp.String()), nil }

func (tp *TurnPhase) UnmarshalText(b []byte) error {
	for i, n := range turnPhaseNames {
		if n == string(b) {
			*tp = TurnPhase(i)
			return nil
		}
	}
	return &enumError{kind: "turn phase", value: string(b)}
}

// TapPhase is the step of an out-of-turn tap.
type TapPhase int

const (
	TapWindow TapPhase = iota
	TapSelecting
	TapSwapping
)

var tapPhaseNames = []string{"window", "selecting", "swapping"}

func (tp TapPhase) String() string {
	if int(tp) < 0 || int(tp) >= len(tapPhaseNames) {
		return "unknown"
	}
	return tapPhaseNames[tp]
}

func (tp TapPhase) MarshalText() ([]byte, error) { return []byte(tp.String()), nil }

func (tp *TapPhase) UnmarshalText(b []byte) error {
	for i, n := range tapPhaseNames {
		if n == string(b) {
			*tp = TapPhase(i)
			return nil
		}
	}
	return &enumError{kind: "tap phase", value: string(b)}
}

// SystemCaller is the Kaboo caller index used when the round ends because the
// draw pile ran out. It is also the caller index while no Kaboo has been called.
const SystemCaller = -1

// NoPlayer marks an unset player index.
const NoPlayer = -1

// TapState records an open tap window and its progress.
type TapState struct {
	Phase TapPhase `json:"phase"`
	// TriggerPlayer discarded the card that opened the window.
	TriggerPlayer int  `json:"triggerPlayer"`
	Rank          Rank `json:"rank"`
	// Tapper is NoPlayer until someone activates.
	Tapper         int      `json:"tapper"`
	Selected       []string `json:"selected"`
	SwapsRemaining int      `json:"swapsRemaining"`
	Passed         []int    `json:"passed,omitempty"`
}

// Peek is a card currently revealed to one viewer.
type Peek struct {
	CardID string `json:"cardId"`
	Viewer int    `json:"viewer"`
}

// CardRef addresses a hand card by position.
type CardRef struct {
	Player int `json:"player"`
	Index  int `json:"index"`
}

// Settings are the table settings chosen when the game was created.
type Settings struct {
	PlayerCount   int    `json:"playerCount"`
	BotDifficulty string `json:"botDifficulty,omitempty"`
	TargetScore   int    `json:"targetScore"`
}

// GameState is the root aggregate of a game. It is also the persisted and
// transmitted shape.
type GameState struct {
	GamePhase             GamePhase  `json:"gamePhase"`
	TurnPhase             TurnPhase  `json:"turnPhase"`
	CurrentPlayerIndex    int        `json:"currentPlayerIndex"`
	Players               []Player   `json:"players"`
	DrawPile              []Card     `json:"drawPile"`
	DiscardPile           []Card     `json:"discardPile"`
	HeldCard              *Card      `json:"heldCard"`
	EffectType            EffectType `json:"effectType"`
	EffectStep            EffectStep `json:"effectStep"`
	SelectedCards         []string   `json:"selectedCards"`
	TapState              *TapState  `json:"tapState"`
	KabooCalled           bool       `json:"kabooCalled"`
	KabooCallerIndex      int        `json:"kabooCallerIndex"`
	FinalRoundTurnsLeft   int        `json:"finalRoundTurnsLeft"`
	TurnNumber            int        `json:"turnNumber"`
	RoundNumber           int        `json:"roundNumber"`
	InitialLooksRemaining []int      `json:"initialLooksRemaining"`
	PeekedCards           []Peek     `json:"peekedCards"`
	Settings              Settings   `json:"settings"`
	MatchOver             bool       `json:"matchOver"`
	DeckSize              int        `json:"deckSize"`
	// Version increases with every accepted mutation. Clients use it to discard
	// canonical states older than the one already applied.
	Version int64 `json:"version"`
}

// Top returns the visible top of the discard pile.
func (s *GameState) Top() (Card, bool) {
	if len(s.DiscardPile) == 0 {
		return Card{}, false
	}
	return s.DiscardPile[len(s.DiscardPile)-1], true
}

// Locate returns the position of a hand card by id.
func (s *GameState) Locate(cardID string) (CardRef, bool) {
	for p := range s.Players {
		for i, c := range s.Players[p].Hand {
			if c.ID == cardID {
				return CardRef{Player: p, Index: i}, true
			}
		}
	}
	return CardRef{}, false
}

// CardAt returns the hand card at ref.
func (s *GameState) CardAt(ref CardRef) (Card, bool) {
	if ref.Player < 0 || ref.Player >= len(s.Players) {
		return Card{}, false
	}
	h := s.Players[ref.Player].Hand
	if ref.Index < 0 || ref.Index >= len(h) {
		return Card{}, false
	}
	return h[ref.Index], true
}

// PeekedBy reports whether viewer currently has cardID revealed.
func (s *GameState) PeekedBy(cardID string, viewer int) bool {
	for _, pk := range s.PeekedCards {
		if pk.CardID == cardID && pk.Viewer == viewer {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (s *GameState) Clone() GameState {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Hand = append([]Card{}, p.Hand...)
		out.Players[i] = p
	}
	out.DrawPile = append([]Card{}, s.DrawPile...)
	out.DiscardPile = append([]Card{}, s.DiscardPile...)
	if s.HeldCard != nil {
		c := *s.HeldCard
		out.HeldCard = &c
	}
	out.SelectedCards = append([]string{}, s.SelectedCards...)
	if s.TapState != nil {
		t := *s.TapState
		t.Selected = append([]string{}, s.TapState.Selected...)
		t.Passed = append([]int{}, s.TapState.Passed...)
		out.TapState = &t
	}
	out.InitialLooksRemaining = append([]int{}, s.InitialLooksRemaining...)
	out.PeekedCards = append([]Peek{}, s.PeekedCards...)
	return out
}

// View returns the state as seen by viewer: faces of cards the viewer cannot see
// are stripped. Face-up cards, the viewer's own peeks and the viewer's held card
// stay visible. A viewer of NoPlayer sees only face-up cards.
func (s *GameState) View(viewer int) GameState {
	out := s.Clone()
	for p := range out.Players {
		for i, c := range out.Players[p].Hand {
			if !c.FaceUp && !s.PeekedBy(c.ID, viewer) {
				out.Players[p].Hand[i] = c.masked()
			}
		}
	}
	for i, c := range out.DrawPile {
		out.DrawPile[i] = c.masked()
	}
	if out.HeldCard != nil && viewer != s.CurrentPlayerIndex {
		m := out.HeldCard.masked()
		out.HeldCard = &m
	}
	peeks := out.PeekedCards[:0]
	for _, pk := range out.PeekedCards {
		if pk.Viewer == viewer {
			peeks = append(peeks, pk)
		}
	}
	out.PeekedCards = peeks
	return out
}
