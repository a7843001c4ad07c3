package entity

// YakuKind names a scoring combination of captured cards.
type YakuKind string

const (
	YakuFiveLights        YakuKind = "fiveLights"
	YakuFourLights        YakuKind = "fourLights"
	YakuRainFourLights    YakuKind = "rainFourLights"
	YakuThreeLights       YakuKind = "threeLights"
	YakuFourOfAMonth      YakuKind = "fourOfAMonth"
	YakuBoarDeerButterfly YakuKind = "boarDeerButterfly"
	YakuPoetryRibbons     YakuKind = "poetryRibbons"
	YakuBlueRibbons       YakuKind = "blueRibbons"
	YakuFlowerViewingSake YakuKind = "flowerViewingSake"
	YakuMoonViewingSake   YakuKind = "moonViewingSake"
	YakuAnimals           YakuKind = "animals"
	YakuRibbons           YakuKind = "ribbons"
	YakuPlains            YakuKind = "plains"
)

// YakuResult is one achieved combination together with its current value.
// The value of a counting yaku grows as its set grows, so the same kind can
// reappear with a higher point count.
type YakuResult struct {
	Kind   YakuKind `json:"kind"`
	Points int      `json:"points"`
}

// TotalYakuPoints sums the values of a set of achieved combinations.
func TotalYakuPoints(results []YakuResult) int {
	total := 0
	for _, result := range results {
		total += result.Points
	}
	return total
}
