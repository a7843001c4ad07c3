package entity

import (
	"encoding/json"
	"fmt"
)

type BonusMode string

const (
	BonusNone           BonusMode = "none"
	BonusAdditive       BonusMode = "additive"
	BonusMultiplicative BonusMode = "multiplicative"
)

type NoYakuPolicy string

const (
	NoYakuNone NoYakuPolicy = "none"
	NoYakuSeat NoYakuPolicy = "seat"
)

type DealerRotation string

const (
	DealerWinnerStays DealerRotation = "winnerStays"
	DealerLoserDeals  DealerRotation = "loserDeals"
	DealerAlternate   DealerRotation = "alternate"
)

type OvertimeMode string

const (
	OvertimeFixed         OvertimeMode = "fixed"
	OvertimeUntilDecision OvertimeMode = "untilDecision"
)

// YakuSetting gates one combination. A yaku only ever scores while Enabled is
// true and Points is positive.
type YakuSetting struct {
	Enabled bool `json:"enabled"`
	Points  int  `json:"points"`
}

// RuleConfig is the complete, normalized rule set of one match.
type RuleConfig struct {
	FiveLights        YakuSetting `json:"five_lights"`
	FourLights        YakuSetting `json:"four_lights"`
	RainFourLights    YakuSetting `json:"rain_four_lights"`
	ThreeLights       YakuSetting `json:"three_lights"`
	FourOfAMonth      YakuSetting `json:"four_of_a_month"`
	BoarDeerButterfly YakuSetting `json:"boar_deer_butterfly"`
	PoetryRibbons     YakuSetting `json:"poetry_ribbons"`
	BlueRibbons       YakuSetting `json:"blue_ribbons"`
	FlowerViewingSake YakuSetting `json:"flower_viewing_sake"`
	MoonViewingSake   YakuSetting `json:"moon_viewing_sake"`
	Animals           YakuSetting `json:"animals"`
	Ribbons           YakuSetting `json:"ribbons"`
	Plains            YakuSetting `json:"plains"`

	KoiKoiBonusMode      BonusMode      `json:"koikoi_bonus_mode"`
	Showdown             bool           `json:"showdown"`
	SelfKoiKoiFactor     int            `json:"self_koikoi_factor"`
	OpponentKoiKoiFactor int            `json:"opponent_koikoi_factor"`
	NoYakuPolicy         NoYakuPolicy   `json:"no_yaku_policy"`
	NoYakuDealerPoints   int            `json:"no_yaku_dealer_points"`
	NoYakuNonDealer      int            `json:"no_yaku_non_dealer_points"`
	RainBlocksHanami     bool           `json:"rain_blocks_hanami"`
	FogBlocksTsukimi     bool           `json:"fog_blocks_tsukimi"`
	KoiKoiLimit          int            `json:"koikoi_limit"`
	DealerRotation       DealerRotation `json:"dealer_rotation"`
	OvertimeEnabled      bool           `json:"overtime_enabled"`
	OvertimeMode         OvertimeMode   `json:"overtime_mode"`
	OvertimeRounds       int            `json:"overtime_rounds"`
	TargetScore          int            `json:"target_score"`
}

const (
	maxYakuPoints    = 99
	minBonusFactor   = 1
	maxBonusFactor   = 5
	maxKoiKoiLimit   = 12
	maxOvertimeRound = 12
)

// DefaultRules returns the classic scoring table.
func DefaultRules() RuleConfig {
	return RuleConfig{
		FiveLights:        YakuSetting{Enabled: true, Points: 10},
		FourLights:        YakuSetting{Enabled: true, Points: 8},
		RainFourLights:    YakuSetting{Enabled: true, Points: 7},
		ThreeLights:       YakuSetting{Enabled: true, Points: 5},
		FourOfAMonth:      YakuSetting{Enabled: false, Points: 4},
		BoarDeerButterfly: YakuSetting{Enabled: true, Points: 5},
		PoetryRibbons:     YakuSetting{Enabled: true, Points: 5},
		BlueRibbons:       YakuSetting{Enabled: true, Points: 5},
		FlowerViewingSake: YakuSetting{Enabled: true, Points: 5},
		MoonViewingSake:   YakuSetting{Enabled: true, Points: 5},
		Animals:           YakuSetting{Enabled: true, Points: 1},
		Ribbons:           YakuSetting{Enabled: true, Points: 1},
		Plains:            YakuSetting{Enabled: true, Points: 1},

		KoiKoiBonusMode:      BonusMultiplicative,
		Showdown:             false,
		SelfKoiKoiFactor:     2,
		OpponentKoiKoiFactor: 2,
		NoYakuPolicy:         NoYakuNone,
		NoYakuDealerPoints:   0,
		NoYakuNonDealer:      0,
		RainBlocksHanami:     false,
		FogBlocksTsukimi:     false,
		KoiKoiLimit:          maxKoiKoiLimit,
		DealerRotation:       DealerWinnerStays,
		OvertimeEnabled:      false,
		OvertimeMode:         OvertimeFixed,
		OvertimeRounds:       3,
		TargetScore:          0,
	}
}

// DecodeRules overlays a partial JSON rule object on the defaults. Fields
// absent from the payload keep their default values.
func DecodeRules(raw json.RawMessage) (RuleConfig, error) {
	rules := DefaultRules()
	if len(raw) == 0 {
		return rules, nil
	}

	if err := json.Unmarshal(raw, &rules); err != nil {
		return RuleConfig{}, fmt.Errorf("failed to unmarshal rule config: %w", err)
	}

	return rules.Normalized(), nil
}

// Normalized clamps every numeric field into its valid range and replaces
// unknown enum values with defaults. Normalizing an already-normalized config
// returns an equal config.
func (that RuleConfig) Normalized() RuleConfig {
	defaults := DefaultRules()

	that.FiveLights.Points = clamp(that.FiveLights.Points, 0, maxYakuPoints)
	that.FourLights.Points = clamp(that.FourLights.Points, 0, maxYakuPoints)
	that.RainFourLights.Points = clamp(that.RainFourLights.Points, 0, maxYakuPoints)
	that.ThreeLights.Points = clamp(that.ThreeLights.Points, 0, maxYakuPoints)
	that.FourOfAMonth.Points = clamp(that.FourOfAMonth.Points, 0, maxYakuPoints)
	that.BoarDeerButterfly.Points = clamp(that.BoarDeerButterfly.Points, 0, maxYakuPoints)
	that.PoetryRibbons.Points = clamp(that.PoetryRibbons.Points, 0, maxYakuPoints)
	that.BlueRibbons.Points = clamp(that.BlueRibbons.Points, 0, maxYakuPoints)
	that.FlowerViewingSake.Points = clamp(that.FlowerViewingSake.Points, 0, maxYakuPoints)
	that.MoonViewingSake.Points = clamp(that.MoonViewingSake.Points, 0, maxYakuPoints)
	that.Animals.Points = clamp(that.Animals.Points, 0, maxYakuPoints)
	that.Ribbons.Points = clamp(that.Ribbons.Points, 0, maxYakuPoints)
	that.Plains.Points = clamp(that.Plains.Points, 0, maxYakuPoints)

	that.SelfKoiKoiFactor = clamp(that.SelfKoiKoiFactor, minBonusFactor, maxBonusFactor)
	that.OpponentKoiKoiFactor = clamp(that.OpponentKoiKoiFactor, minBonusFactor, maxBonusFactor)
	that.NoYakuDealerPoints = clamp(that.NoYakuDealerPoints, 0, maxYakuPoints)
	that.NoYakuNonDealer = clamp(that.NoYakuNonDealer, 0, maxYakuPoints)
	that.KoiKoiLimit = clamp(that.KoiKoiLimit, 0, maxKoiKoiLimit)
	that.OvertimeRounds = clamp(that.OvertimeRounds, 0, maxOvertimeRound)
	that.TargetScore = clamp(that.TargetScore, 0, maxYakuPoints)

	switch that.KoiKoiBonusMode {
	case BonusNone, BonusAdditive, BonusMultiplicative:
	default:
		that.KoiKoiBonusMode = defaults.KoiKoiBonusMode
	}

	switch that.NoYakuPolicy {
	case NoYakuNone, NoYakuSeat:
	default:
		that.NoYakuPolicy = defaults.NoYakuPolicy
	}

	switch that.DealerRotation {
	case DealerWinnerStays, DealerLoserDeals, DealerAlternate:
	default:
		that.DealerRotation = defaults.DealerRotation
	}

	switch that.OvertimeMode {
	case OvertimeFixed, OvertimeUntilDecision:
	default:
		that.OvertimeMode = defaults.OvertimeMode
	}

	return that
}

// NoYakuPoints returns the seat value awarded when a round is stopped without
// a single achieved combination.
func (that RuleConfig) NoYakuPoints(isDealer bool) int {
	if that.NoYakuPolicy != NoYakuSeat {
		return 0
	}
	if isDealer {
		return that.NoYakuDealerPoints
	}
	return that.NoYakuNonDealer
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
