package game

import (
	"math/rand"
	"strconv"

	"github.com/google/uuid"
)

// Suit of a card. Jokers carry SuitJoker.
type Suit string

const (
	Spades    Suit = "spades"
	Hearts    Suit = "hearts"
	Diamonds  Suit = "diamonds"
	Clubs     Suit = "clubs"
	SuitJoker Suit = "joker"
)

// Rank of a card. The empty rank marks a card whose face the viewer cannot see.
type Rank string

const (
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
	Joker Rank = "joker"
)

// Suits lists the four regular suits in deal order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Ranks lists the thirteen regular ranks.
var Ranks = []Rank{"2", "3", "4", "5", "6", "7", "8", "9", "10", Jack, Queen, King, Ace}

// Card is a single playing card. ID is unique within a game and survives every
// move between containers; FaceUp is the only other field that ever changes.
type Card struct {
	ID     string `json:"id"`
	Suit   Suit   `json:"suit,omitempty"`
	Rank   Rank   `json:"rank,omitempty"`
	FaceUp bool   `json:"faceUp"`
}

// Known reports whether the card's face is present in this copy.
func (c Card) Known() bool {
	return c.Rank != ""
}

// masked returns the card as seen by someone who cannot see its face.
func (c Card) masked() Card {
	return Card{ID: c.ID}
}

// numericValue returns the face value of ranks 2..10.
func (r Rank) numericValue() (int, bool) {
	n, err := strconv.Atoi(string(r))
	if err != nil || n < 2 || n > 10 {
		return 0, false
	}
	return n, true
}

// NewDeck builds the 52 regular cards followed by the requested number of jokers.
// Every card receives a fresh random id.
func NewDeck(jokers int) []Card {
	deck := make([]Card, 0, len(Suits)*len(Ranks)+jokers)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{ID: uuid.NewString(), Suit: s, Rank: r})
		}
	}
	for i := 0; i < jokers; i++ {
		deck = append(deck, Card{ID: uuid.NewString(), Suit: SuitJoker, Rank: Joker})
	}
	return deck
}

// Shuffle randomizes the order of cards in place.
func Shuffle(cards []Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// StackDeck returns a deck ordered so that dealing it (HandSize rounds, one card per
// player per round, starter discard last) produces exactly the given hands and starter
// card, with draw left in the stock so that draw[0] is drawn first.
// All hands must have the same length.
func StackDeck(hands [][]Card, starter Card, draw []Card) []Card {
	handSize := 0
	if len(hands) > 0 {
		handSize = len(hands[0])
	}
	var dealt []Card
	for i := 0; i < handSize; i++ {
		for _, h := range hands {
			dealt = append(dealt, h[i])
		}
	}
	dealt = append(dealt, starter)

	// The draw pile top is its last element, and dealing pops from the top, so the
	// deck is: remaining stock (bottom..top), then dealt cards in reverse pop order.
	deck := make([]Card, 0, len(draw)+len(dealt))
	for i := len(draw) - 1; i >= 0; i-- {
		deck = append(deck, draw[i])
	}
	for i := len(dealt) - 1; i >= 0; i-- {
		deck = append(deck, dealt[i])
	}
	return deck
}
