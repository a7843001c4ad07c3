package entity

import "fmt"

type CardType string

const (
	TypeHikari  CardType = "hikari"
	TypeTane    CardType = "tane"
	TypeTanzaku CardType = "tanzaku"
	TypeKasu    CardType = "kasu"
)

type RibbonColor string

const (
	RibbonNone   RibbonColor = ""
	RibbonPoetry RibbonColor = "poetry"
	RibbonBlue   RibbonColor = "blue"
	RibbonPlain  RibbonColor = "plain"
)

// Card ids of the cards that individual yaku care about.
const (
	CardCrane     = 1
	CardCurtain   = 9
	CardButterfly = 21
	CardBoar      = 25
	CardMoon      = 29
	CardSakeCup   = 33
	CardDeer      = 37
	CardRainMan   = 41
	CardPhoenix   = 45
)

const DeckSize = 48

// Card is a single hanafuda card. Values are immutable: the catalog is built
// once at process start and only ever copied.
type Card struct {
	ID     int         `json:"id"`
	Month  int         `json:"month"`
	Type   CardType    `json:"type"`
	Points int         `json:"points"`
	Ribbon RibbonColor `json:"ribbon,omitempty"`
	Name   string      `json:"name"`
}

func (that Card) IsRainMan() bool { return that.ID == CardRainMan }

func (that Card) IsSakeCup() bool { return that.ID == CardSakeCup }

func (that Card) IsCurtain() bool { return that.ID == CardCurtain }

func (that Card) IsMoon() bool { return that.ID == CardMoon }

func (that Card) IsTwelfthMonth() bool { return that.Month == 12 }

var monthFlowers = [13]string{"", "Pine", "Plum", "Cherry", "Wisteria", "Iris", "Peony",
	"Bush Clover", "Pampas", "Chrysanthemum", "Maple", "Willow", "Paulownia"}

var catalog = buildCatalog()

// Catalog returns a fresh copy of the fixed 48-card deck in month order.
func Catalog() []Card {
	cards := make([]Card, len(catalog))
	copy(cards, catalog)
	return cards
}

// CardByID looks up a card in the catalog.
func CardByID(id int) (Card, bool) {
	if id < 1 || id > DeckSize {
		return Card{}, false
	}
	return catalog[id-1], true
}

type cardSpec struct {
	cardType CardType
	ribbon   RibbonColor
	name     string
}

// buildCatalog lays out 4 cards per month. The type distribution per month is
// uneven: months 1, 3, 8, 11 and 12 carry a hikari card, month 11 carries only
// one kasu, month 12 carries three.
func buildCatalog() []Card {
	specs := [13][]cardSpec{
		1:  {{TypeHikari, RibbonNone, "Crane"}, {TypeTanzaku, RibbonPoetry, "Poetry Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		2:  {{TypeTane, RibbonNone, "Bush Warbler"}, {TypeTanzaku, RibbonPoetry, "Poetry Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		3:  {{TypeHikari, RibbonNone, "Curtain"}, {TypeTanzaku, RibbonPoetry, "Poetry Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		4:  {{TypeTane, RibbonNone, "Cuckoo"}, {TypeTanzaku, RibbonPlain, "Red Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		5:  {{TypeTane, RibbonNone, "Eight-Plank Bridge"}, {TypeTanzaku, RibbonPlain, "Red Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		6:  {{TypeTane, RibbonNone, "Butterflies"}, {TypeTanzaku, RibbonBlue, "Blue Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		7:  {{TypeTane, RibbonNone, "Boar"}, {TypeTanzaku, RibbonPlain, "Red Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		8:  {{TypeHikari, RibbonNone, "Full Moon"}, {TypeTane, RibbonNone, "Geese"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		9:  {{TypeTane, RibbonNone, "Sake Cup"}, {TypeTanzaku, RibbonBlue, "Blue Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		10: {{TypeTane, RibbonNone, "Deer"}, {TypeTanzaku, RibbonBlue, "Blue Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
		11: {{TypeHikari, RibbonNone, "Rain Man"}, {TypeTane, RibbonNone, "Swallow"}, {TypeTanzaku, RibbonPlain, "Red Ribbon"}, {TypeKasu, RibbonNone, "Kasu"}},
		12: {{TypeHikari, RibbonNone, "Phoenix"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}, {TypeKasu, RibbonNone, "Kasu"}},
	}

	points := map[CardType]int{
		TypeHikari:  20,
		TypeTane:    10,
		TypeTanzaku: 5,
		TypeKasu:    1,
	}

	cards := make([]Card, 0, DeckSize)
	id := 1
	for month := 1; month <= 12; month++ {
		for _, spec := range specs[month] {
			cards = append(cards, Card{
				ID:     id,
				Month:  month,
				Type:   spec.cardType,
				Points: points[spec.cardType],
				Ribbon: spec.ribbon,
				Name:   fmt.Sprintf("%s %s", monthFlowers[month], spec.name),
			})
			id++
		}
	}

	return cards
}
