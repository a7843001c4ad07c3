package entity

// Seat values. NoSeat doubles as "no winner".
const (
	SeatOne = 0
	SeatTwo = 1
	NoSeat  = -1
)

type Player struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Hand          []Card       `json:"hand"`
	Captured      []Card       `json:"captured"`
	Score         int          `json:"score"`
	CompletedYaku []YakuResult `json:"completed_yaku"`
	IsBot         bool         `json:"is_bot,omitempty"`
}

func (that *Player) clone() Player {
	cloned := *that
	cloned.Hand = append([]Card(nil), that.Hand...)
	cloned.Captured = append([]Card(nil), that.Captured...)
	cloned.CompletedYaku = append([]YakuResult(nil), that.CompletedYaku...)
	return cloned
}

// HandCardIndex returns the position of a card in the hand, or -1.
func (that *Player) HandCardIndex(cardID int) int {
	for i, card := range that.Hand {
		if card.ID == cardID {
			return i
		}
	}
	return -1
}
