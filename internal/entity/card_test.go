package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	// Given: the fixed catalog
	cards := Catalog()

	// Then: it holds exactly 48 cards with unique ids, 4 per month
	require.Len(t, cards, DeckSize)

	seenIDs := make(map[int]bool)
	monthCounts := make(map[int]int)
	typeCounts := make(map[CardType]int)

	for _, card := range cards {
		require.False(t, seenIDs[card.ID], "duplicate card id %d", card.ID)
		seenIDs[card.ID] = true

		require.GreaterOrEqual(t, card.Month, 1)
		require.LessOrEqual(t, card.Month, 12)
		monthCounts[card.Month]++
		typeCounts[card.Type]++
	}

	for month := 1; month <= 12; month++ {
		assert.Equal(t, 4, monthCounts[month], "month %d", month)
	}

	// Then: the uneven type distribution matches the real deck
	assert.Equal(t, 5, typeCounts[TypeHikari])
	assert.Equal(t, 9, typeCounts[TypeTane])
	assert.Equal(t, 10, typeCounts[TypeTanzaku])
	assert.Equal(t, 24, typeCounts[TypeKasu])
}

func TestCatalog_SpecialCards(t *testing.T) {
	tests := []struct {
		name     string
		id       int
		month    int
		cardType CardType
	}{
		{"Crane", CardCrane, 1, TypeHikari},
		{"Curtain", CardCurtain, 3, TypeHikari},
		{"Butterfly", CardButterfly, 6, TypeTane},
		{"Boar", CardBoar, 7, TypeTane},
		{"Moon", CardMoon, 8, TypeHikari},
		{"Sake Cup", CardSakeCup, 9, TypeTane},
		{"Deer", CardDeer, 10, TypeTane},
		{"Rain Man", CardRainMan, 11, TypeHikari},
		{"Phoenix", CardPhoenix, 12, TypeHikari},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, ok := CardByID(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.month, card.Month)
			assert.Equal(t, tt.cardType, card.Type)
		})
	}
}

func TestCatalog_Ribbons(t *testing.T) {
	// Given: the catalog
	cards := Catalog()

	// Then: three poetry ribbons, three blue ribbons, four plain ribbons
	counts := make(map[RibbonColor]int)
	for _, card := range cards {
		if card.Type == TypeTanzaku {
			counts[card.Ribbon]++
		}
	}

	assert.Equal(t, 3, counts[RibbonPoetry])
	assert.Equal(t, 3, counts[RibbonBlue])
	assert.Equal(t, 4, counts[RibbonPlain])
}

func TestCardByID_OutOfRange(t *testing.T) {
	_, ok := CardByID(0)
	assert.False(t, ok)

	_, ok = CardByID(DeckSize + 1)
	assert.False(t, ok)
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	// Given: two catalog copies
	first := Catalog()
	second := Catalog()

	// When: one copy is mutated
	first[0].Month = 99

	// Then: the other copy is unaffected
	assert.Equal(t, 1, second[0].Month)
}
