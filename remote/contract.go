// Package remote plays a game hosted by an authoritative service. Moves are sent
// over HTTP and answered with canonical state; change notifications arrive over a
// websocket and trigger a full re-fetch.
package remote

import (
	"encoding/json"
	"fmt"

	"kaboo-server/game"
	"kaboo-server/moveerrors"
)

// Change notification entities.
const (
	EntityGame    = "games"
	EntityMembers = "game_members"
)

// MoveRequest is the body of POST /api/games/{id}/moves. A non-zero BaseVersion
// asks the service to reject the move when the game has moved past it.
type MoveRequest struct {
	Move        json.RawMessage `json:"move"`
	BaseVersion int64           `json:"baseVersion,omitempty"`
}

// Reply answers every game request: either OK with the canonical state as seen
// by the caller, or a failure reason.
type Reply struct {
	OK     bool            `json:"ok"`
	State  *game.GameState `json:"state,omitempty"`
	Seat   *int            `json:"seat,omitempty"`
	GameID string          `json:"gameId,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// ChangeEvent is pushed to subscribers when a game or its memberships change.
type ChangeEvent struct {
	Entity  string `json:"entity"`
	GameID  string `json:"gameId"`
	Version int64  `json:"version,omitempty"`
}

// CreateRequest is the body of POST /api/games.
type CreateRequest struct {
	Name          string `json:"name"`
	Bots          int    `json:"bots"`
	BotDifficulty string `json:"botDifficulty,omitempty"`
	TargetScore   int    `json:"targetScore,omitempty"`
}

// JoinRequest is the body of POST /api/games/{id}/join.
type JoinRequest struct {
	Name string `json:"name"`
}

// EncodeMove renders m as its tagged payload, e.g. {"type":"SNAP","cardIndex":2}.
func EncodeMove(m game.Move) ([]byte, error) {
	if !m.Type.Valid() {
		return nil, fmt.Errorf("%q: %w", m.Type, moveerrors.ErrUnknownMove)
	}
	return json.Marshal(m)
}

// DecodeMove parses a tagged move payload.
func DecodeMove(data []byte) (game.Move, error) {
	var m game.Move
	if err := json.Unmarshal(data, &m); err != nil {
		return game.Move{}, fmt.Errorf("decode move: %w", err)
	}
	if !m.Type.Valid() {
		return game.Move{}, fmt.Errorf("%q: %w", m.Type, moveerrors.ErrUnknownMove)
	}
	if m.OwnCardIndex < 0 || m.CardIndex < 0 || m.PlayerIndex < 0 {
		return game.Move{}, fmt.Errorf("negative index: %w", moveerrors.ErrInvalidTarget)
	}
	return m, nil
}

// RejectedError is a move the service refused. It unwraps to the matching
// moveerrors sentinel when the reason is a known one.
type RejectedError struct {
	Reason string
	Status int
}

func (e *RejectedError) Error() string {
	return "move rejected: " + e.Reason
}

func (e *RejectedError) Unwrap() error {
	return moveerrors.FromReason(e.Reason)
}
