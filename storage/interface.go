package storage

import (
	"context"

	"kaboo-server/game"
)

// GameStore abstracts persistence of canonical games, seat memberships and round
// results. Implementations can be swapped for testing or other backends.
type GameStore interface {
	// Read
	LoadGame(ctx context.Context, id string) (game.GameState, error)
	ListMembers(ctx context.Context, gameID string) ([]Member, error)
	ListRoundResults(ctx context.Context, gameID string) ([]RoundResult, error)

	// Write
	SaveGame(ctx context.Context, id string, state game.GameState) error
	UpsertMember(ctx context.Context, gameID string, m Member) error
	InsertRoundResult(ctx context.Context, r RoundResult) error
	SaveRound(ctx context.Context, results []RoundResult) error

	// Lifecycle
	Close()
}

// Ensure *Store implements GameStore at compile time.
var _ GameStore = (*Store)(nil)
