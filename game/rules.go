package game

import "strings"

// EffectType identifies the special action unlocked by discarding a rank.
type EffectType int

const (
	EffectNone EffectType = iota
	EffectPeekOwn
	EffectPeekOpponent
	EffectBlindSwap
	EffectSemiBlindSwap
	EffectFullVisionSwap
)

var effectNames = []string{"", "peek_own", "peek_opponent", "blind_swap", "semi_blind_swap", "full_vision_swap"}

// String returns the protocol string for an EffectType.
func (e EffectType) String() string {
	if int(e) < 0 || int(e) >= len(effectNames) {
		return "unknown"
	}
	return effectNames[e]
}

// ParseEffectType is the inverse of String. The empty string parses as EffectNone.
func ParseEffectType(s string) (EffectType, bool) {
	for i, n := range effectNames {
		if n == s {
			return EffectType(i), true
		}
	}
	return EffectNone, false
}

func (e EffectType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *EffectType) UnmarshalText(b []byte) error {
	v, ok := ParseEffectType(string(b))
	if !ok {
		return &enumError{kind: "effect type", value: string(b)}
	}
	*e = v
	return nil
}

// twoStep reports whether the effect reveals first and then offers a swap.
func (e EffectType) twoStep() bool {
	return e == EffectSemiBlindSwap || e == EffectFullVisionSwap
}

// EffectStep is the sub-step of a two-step effect.
type EffectStep int

const (
	StepNone EffectStep = iota
	StepSelect
	StepAction
)

var stepNames = []string{"", "select", "action"}

func (s EffectStep) String() string {
	if int(s) < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

func (s EffectStep) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *EffectStep) UnmarshalText(b []byte) error {
	for i, n := range stepNames {
		if n == string(b) {
			*s = EffectStep(i)
			return nil
		}
	}
	return &enumError{kind: "effect step", value: string(b)}
}

// Rules is the configuration data of a game: deal size, scoring and the rank→effect table.
type Rules struct {
	HandSize     int
	InitialLooks int
	Jokers       int
	KabooPenalty int
	TargetScore  int
	// FaceValues overrides the value of any rank; ranks 2..10 default to their number.
	FaceValues map[Rank]int
	Effects    map[Rank]EffectType
}

// DefaultRules returns the standard table: 7/8 peek own, 9/10 peek opponent,
// J blind swap, Q semi-blind swap, K full-vision swap; J=11, Q=12, K=13, A=1, joker=-1.
func DefaultRules() Rules {
	return Rules{
		HandSize:     4,
		InitialLooks: 2,
		Jokers:       2,
		KabooPenalty: 20,
		TargetScore:  100,
		FaceValues: map[Rank]int{
			Jack:  11,
			Queen: 12,
			King:  13,
			Ace:   1,
			Joker: -1,
		},
		Effects: map[Rank]EffectType{
			"7":   EffectPeekOwn,
			"8":   EffectPeekOwn,
			"9":   EffectPeekOpponent,
			"10":  EffectPeekOpponent,
			Jack:  EffectBlindSwap,
			Queen: EffectSemiBlindSwap,
			King:  EffectFullVisionSwap,
		},
	}
}

// CardValue returns the scoring value of a card. Unknown faces score 0.
func (r Rules) CardValue(c Card) int {
	if v, ok := r.FaceValues[c.Rank]; ok {
		return v
	}
	if v, ok := c.Rank.numericValue(); ok {
		return v
	}
	return 0
}

// HandValue sums the card values of a hand. Negative totals are valid.
func (r Rules) HandValue(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += r.CardValue(c)
	}
	return total
}

// EffectFor returns the effect unlocked by discarding rank.
func (r Rules) EffectFor(rank Rank) EffectType {
	return r.Effects[rank]
}

type enumError struct {
	kind, value string
}

func (e *enumError) Error() string {
	return "invalid " + e.kind + ": " + strings.TrimSpace(e.value)
}
