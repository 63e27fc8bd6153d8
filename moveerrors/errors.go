package moveerrors

import "errors"

// Move rejection sentinels. Shared by game, engine, remote and server so that a
// reason produced by the authoritative side can be matched on the client side.
var (
	ErrWrongPhase       = errors.New("not allowed in the current phase")
	ErrNotYourTurn      = errors.New("it is not your turn")
	ErrAlreadyDrawn     = errors.New("a card has already been drawn this turn")
	ErrNothingHeld      = errors.New("no card is held")
	ErrDeckEmpty        = errors.New("the draw pile is empty")
	ErrNoLooksRemaining = errors.New("no initial looks remaining")
	ErrInvalidTarget    = errors.New("invalid card selection")
	ErrInvalidPlayer    = errors.New("invalid player index")
	ErrKabooCalled      = errors.New("kaboo has already been called this round")
	ErrNoEffect         = errors.New("no effect is active")
	ErrTapClosed        = errors.New("no tap window is open")
	ErrTapTaken         = errors.New("another player is already tapping")
	ErrNotTapper        = errors.New("you are not the active tapper")
	ErrMatchOver        = errors.New("the match is over")
	ErrUnknownMove      = errors.New("unknown move type")

	ErrGameNotFound = errors.New("game not found")
	ErrSeatTaken    = errors.New("seat already taken")
	ErrGameFull     = errors.New("game is full")
	ErrNotSeated    = errors.New("you are not seated in this game")
	ErrNotHost      = errors.New("only the host can do that")
	ErrRateLimited  = errors.New("too many moves")
	ErrStaleState   = errors.New("move based on a stale state")
	ErrUntrusted    = errors.New("state not refreshed since connectivity loss")
)

var byReason = func() map[string]error {
	m := make(map[string]error)
	for _, err := range []error{
		ErrWrongPhase, ErrNotYourTurn, ErrAlreadyDrawn, ErrNothingHeld, ErrDeckEmpty,
		ErrNoLooksRemaining, ErrInvalidTarget, ErrInvalidPlayer, ErrKabooCalled,
		ErrNoEffect, ErrTapClosed, ErrTapTaken, ErrNotTapper, ErrMatchOver, ErrUnknownMove,
		ErrGameNotFound, ErrSeatTaken, ErrGameFull, ErrNotSeated, ErrNotHost, ErrRateLimited,
		ErrStaleState, ErrUntrusted,
	} {
		m[err.Error()] = err
	}
	return m
}()

// FromReason maps a reason string received over the wire back to its sentinel.
// It returns nil when the reason is not one of ours.
func FromReason(reason string) error {
	return byReason[reason]
}

// Reason returns the wire reason for err: the message of the first sentinel it wraps,
// or err.Error() when none matches.
func Reason(err error) string {
	for msg, s := range byReason {
		if errors.Is(err, s) {
			return msg
		}
	}
	return err.Error()
}
