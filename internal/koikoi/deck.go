package koikoi

import (
	"errors"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
)

// ErrDealRetriesExhausted means no legal opening deal was found within the
// retry budget. With a sane catalog this points at a shuffle defect, so round
// creation aborts instead of papering over it.
var ErrDealRetriesExhausted = errors.New("no legal deal found within the retry budget")

const dealRetryBudget = 50

const (
	handSize  = 8
	fieldSize = 8
)

// DealResult is one legal opening: two 8-card hands, an 8-card field and the
// 24-card draw pile.
type DealResult struct {
	Hands [2][]entity.Card
	Field []entity.Card
	Deck  []entity.Card
}

// Shuffle permutes cards in place using the given generator.
func Shuffle(cards []entity.Card, rng Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Deal shuffles the catalog and splits it by taking 4-card chunks in the
// order hand1, field, hand2, hand1, field, hand2. A deal that leaves four
// cards of one month in either hand or on the field would auto-complete a
// four-card yaku, so it is thrown away and redealt with a fresh shuffle.
func Deal(rng Rand) (*DealResult, error) {
	for attempt := 0; attempt < dealRetryBudget; attempt++ {
		cards := entity.Catalog()
		Shuffle(cards, rng)

		result := &DealResult{}
		chunks := [][]entity.Card{
			cards[0:4], cards[4:8], cards[8:12],
			cards[12:16], cards[16:20], cards[20:24],
		}

		result.Hands[0] = append(append([]entity.Card{}, chunks[0]...), chunks[3]...)
		result.Field = append(append([]entity.Card{}, chunks[1]...), chunks[4]...)
		result.Hands[1] = append(append([]entity.Card{}, chunks[2]...), chunks[5]...)
		result.Deck = append([]entity.Card{}, cards[24:]...)

		if hasFourOfOneMonth(result.Hands[0]) || hasFourOfOneMonth(result.Hands[1]) || hasFourOfOneMonth(result.Field) {
			continue
		}

		return result, nil
	}

	return nil, ErrDealRetriesExhausted
}

func hasFourOfOneMonth(cards []entity.Card) bool {
	var counts [13]int
	for _, card := range cards {
		counts[card.Month]++
		if counts[card.Month] == 4 {
			return true
		}
	}
	return false
}
