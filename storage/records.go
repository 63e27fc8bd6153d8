package storage

import (
	"time"

	"kaboo-server/game"
)

// Member is one occupied seat of a game.
type Member struct {
	Seat     int       `json:"seat"`
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"isHost"`
	IsBot    bool      `json:"isBot"`
	JoinedAt time.Time `json:"joinedAt"`
}

// RoundResult is one player's outcome for one finished round.
type RoundResult struct {
	GameID      string `json:"gameId"`
	Round       int    `json:"round"`
	Seat        int    `json:"seat"`
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	TotalScore  int    `json:"totalScore"`
	CalledKaboo bool   `json:"calledKaboo"`
	// Leading is true for the players holding the lowest total after this round.
	Leading bool `json:"leading"`
}

// MembersFrom lists the seats of state as membership rows.
func MembersFrom(state game.GameState) []Member {
	out := make([]Member, 0, len(state.Players))
	for i, p := range state.Players {
		out = append(out, Member{Seat: i, PlayerID: p.ID, Name: p.Name, IsHost: p.IsHost, IsBot: p.IsBot})
	}
	return out
}

// RoundResultsFrom returns one row per player for a state in the reveal phase,
// or nil for any other phase.
func RoundResultsFrom(gameID string, state game.GameState) []RoundResult {
	if state.GamePhase != game.PhaseReveal {
		return nil
	}
	leading := make(map[int]bool)
	for _, i := range state.Winners() {
		leading[i] = true
	}
	out := make([]RoundResult, 0, len(state.Players))
	for i, p := range state.Players {
		out = append(out, RoundResult{
			GameID:      gameID,
			Round:       state.RoundNumber,
			Seat:        i,
			PlayerID:    p.ID,
			Name:        p.Name,
			Score:       p.Score,
			TotalScore:  p.TotalScore,
			CalledKaboo: state.KabooCalled && state.KabooCallerIndex == i,
			Leading:     leading[i],
		})
	}
	return out
}
