package koikoi

import "github.com/rocketscienceinc/koikoi-backend/internal/entity"

// capturedStats is everything the yaku checks need to know about a captured
// pile, computed in one pass so CalculateYaku stays order-independent.
type capturedStats struct {
	lights       []entity.Card
	hasRainMan   bool
	hasCurtain   bool
	hasMoon      bool
	hasSakeCup   bool
	hasBoar      bool
	hasDeer      bool
	hasButterfly bool
	hasMonth12   bool
	taneCount    int
	tanzakuCount int
	kasuCount    int
	poetryCount  int
	blueCount    int
	monthCounts  [13]int
}

func collectStats(captured []entity.Card) capturedStats {
	var stats capturedStats

	for _, card := range captured {
		stats.monthCounts[card.Month]++
		if card.IsTwelfthMonth() {
			stats.hasMonth12 = true
		}

		switch card.Type {
		case entity.TypeHikari:
			stats.lights = append(stats.lights, card)
			switch card.ID {
			case entity.CardRainMan:
				stats.hasRainMan = true
			case entity.CardCurtain:
				stats.hasCurtain = true
			case entity.CardMoon:
				stats.hasMoon = true
			}
		case entity.TypeTane:
			stats.taneCount++
			switch card.ID {
			case entity.CardSakeCup:
				stats.hasSakeCup = true
			case entity.CardBoar:
				stats.hasBoar = true
			case entity.CardDeer:
				stats.hasDeer = true
			case entity.CardButterfly:
				stats.hasButterfly = true
			}
		case entity.TypeTanzaku:
			stats.tanzakuCount++
			switch card.Ribbon {
			case entity.RibbonPoetry:
				stats.poetryCount++
			case entity.RibbonBlue:
				stats.blueCount++
			case entity.RibbonPlain, entity.RibbonNone:
			}
		case entity.TypeKasu:
			stats.kasuCount++
		}
	}

	return stats
}

// CalculateYaku reports every combination the captured pile currently
// achieves under the given rules. Pure: same cards in any order yield the
// same result. Disabled or zero-valued combinations never appear.
func CalculateYaku(captured []entity.Card, rules entity.RuleConfig) []entity.YakuResult {
	stats := collectStats(captured)
	results := make([]entity.YakuResult, 0, 4)

	if result, ok := lightYaku(stats, rules); ok {
		results = append(results, result)
	}

	if rules.FourOfAMonth.Enabled && rules.FourOfAMonth.Points > 0 {
		for month := 1; month <= 12; month++ {
			if stats.monthCounts[month] == 4 {
				results = append(results, entity.YakuResult{Kind: entity.YakuFourOfAMonth, Points: rules.FourOfAMonth.Points})
				break
			}
		}
	}

	if rules.BoarDeerButterfly.Enabled && rules.BoarDeerButterfly.Points > 0 &&
		stats.hasBoar && stats.hasDeer && stats.hasButterfly {
		points := rules.BoarDeerButterfly.Points + (stats.taneCount - 3)
		results = append(results, entity.YakuResult{Kind: entity.YakuBoarDeerButterfly, Points: points})
	}

	if rules.PoetryRibbons.Enabled && rules.PoetryRibbons.Points > 0 && stats.poetryCount == 3 {
		points := rules.PoetryRibbons.Points + (stats.tanzakuCount - 3)
		results = append(results, entity.YakuResult{Kind: entity.YakuPoetryRibbons, Points: points})
	}

	if rules.BlueRibbons.Enabled && rules.BlueRibbons.Points > 0 && stats.blueCount == 3 {
		points := rules.BlueRibbons.Points + (stats.tanzakuCount - 3)
		results = append(results, entity.YakuResult{Kind: entity.YakuBlueRibbons, Points: points})
	}

	// The two sake pairings share the cup and can both be achieved at once.
	// The house blockers kill them outright, whatever their settings say.
	hanamiBlocked := rules.RainBlocksHanami && stats.hasRainMan
	if rules.FlowerViewingSake.Enabled && rules.FlowerViewingSake.Points > 0 &&
		stats.hasCurtain && stats.hasSakeCup && !hanamiBlocked {
		results = append(results, entity.YakuResult{Kind: entity.YakuFlowerViewingSake, Points: rules.FlowerViewingSake.Points})
	}

	tsukimiBlocked := rules.FogBlocksTsukimi && stats.hasMonth12
	if rules.MoonViewingSake.Enabled && rules.MoonViewingSake.Points > 0 &&
		stats.hasMoon && stats.hasSakeCup && !tsukimiBlocked {
		results = append(results, entity.YakuResult{Kind: entity.YakuMoonViewingSake, Points: rules.MoonViewingSake.Points})
	}

	if rules.Animals.Enabled && rules.Animals.Points > 0 && stats.taneCount >= 5 {
		points := rules.Animals.Points + (stats.taneCount - 5)
		results = append(results, entity.YakuResult{Kind: entity.YakuAnimals, Points: points})
	}

	if rules.Ribbons.Enabled && rules.Ribbons.Points > 0 && stats.tanzakuCount >= 5 {
		points := rules.Ribbons.Points + (stats.tanzakuCount - 5)
		results = append(results, entity.YakuResult{Kind: entity.YakuRibbons, Points: points})
	}

	if rules.Plains.Enabled && rules.Plains.Points > 0 && stats.kasuCount >= 10 {
		points := rules.Plains.Points + (stats.kasuCount - 10)
		results = append(results, entity.YakuResult{Kind: entity.YakuPlains, Points: points})
	}

	return results
}

// lightYaku resolves the mutually exclusive light family, highest tier first.
func lightYaku(stats capturedStats, rules entity.RuleConfig) (entity.YakuResult, bool) {
	lightCount := len(stats.lights)

	switch {
	case lightCount == 5:
		if rules.FiveLights.Enabled && rules.FiveLights.Points > 0 {
			return entity.YakuResult{Kind: entity.YakuFiveLights, Points: rules.FiveLights.Points}, true
		}
	case lightCount == 4 && stats.hasRainMan:
		if rules.RainFourLights.Enabled && rules.RainFourLights.Points > 0 {
			return entity.YakuResult{Kind: entity.YakuRainFourLights, Points: rules.RainFourLights.Points}, true
		}
	case lightCount == 4:
		if rules.FourLights.Enabled && rules.FourLights.Points > 0 {
			return entity.YakuResult{Kind: entity.YakuFourLights, Points: rules.FourLights.Points}, true
		}
	case lightCount == 3 && !stats.hasRainMan:
		if rules.ThreeLights.Enabled && rules.ThreeLights.Points > 0 {
			return entity.YakuResult{Kind: entity.YakuThreeLights, Points: rules.ThreeLights.Points}, true
		}
	}

	return entity.YakuResult{}, false
}
