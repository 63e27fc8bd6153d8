package game

// Player is one seat at the table. Hand order is significant: positions address
// cards for swaps and peeks.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Hand       []Card `json:"hand"`
	Score      int    `json:"score"`
	TotalScore int    `json:"totalScore"`
	IsHost     bool   `json:"isHost"`
	Ready      bool   `json:"ready"`
	IsBot      bool   `json:"isBot,omitempty"`
}

// NewPlayer creates a seat with an empty hand.
func NewPlayer(id, name string) Player {
	return Player{ID: id, Name: name, Hand: []Card{}}
}

func (p *Player) indexOf(cardID string) int {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

func (p *Player) removeAt(i int) Card {
	c := p.Hand[i]
	p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
	return c
}
