package game

// scoreRound sets each player's round score, applies the caller penalty and
// accumulates totals.
func (g *Game) scoreRound() {
	s := &g.state
	for i := range s.Players {
		s.Players[i].Score = g.rules.HandValue(s.Players[i].Hand)
	}
	if s.KabooCalled && s.KabooCallerIndex >= 0 && s.KabooCallerIndex < len(s.Players) {
		caller := s.KabooCallerIndex
		if !strictlyLowest(s.Players, caller) {
			s.Players[caller].Score += g.rules.KabooPenalty
		}
	}
	s.MatchOver = false
	for i := range s.Players {
		s.Players[i].TotalScore += s.Players[i].Score
		if s.Players[i].TotalScore >= s.Settings.TargetScore {
			s.MatchOver = true
		}
	}
}

// strictlyLowest reports whether players[idx] has a round score below every other player.
func strictlyLowest(players []Player, idx int) bool {
	for i, p := range players {
		if i != idx && p.Score <= players[idx].Score {
			return false
		}
	}
	return true
}

// Winners returns the indices of the players with the lowest total score.
func (s *GameState) Winners() []int {
	var out []int
	for i, p := range s.Players {
		switch {
		case len(out) == 0 || p.TotalScore < s.Players[out[0]].TotalScore:
			out = []int{i}
		case p.TotalScore == s.Players[out[0]].TotalScore:
			out = append(out, i)
		}
	}
	return out
}
