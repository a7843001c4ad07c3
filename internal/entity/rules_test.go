package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleConfig_NormalizedIdempotent(t *testing.T) {
	// Given: a config full of out-of-range values
	rules := RuleConfig{
		FiveLights:           YakuSetting{Enabled: true, Points: 500},
		ThreeLights:          YakuSetting{Enabled: true, Points: -3},
		SelfKoiKoiFactor:     9,
		OpponentKoiKoiFactor: 0,
		KoiKoiLimit:          77,
		OvertimeRounds:       -1,
		NoYakuDealerPoints:   200,
	}

	// When: the config is normalized once and twice
	once := rules.Normalized()
	twice := once.Normalized()

	// Then: normalizing an already-normalized config changes nothing
	require.Equal(t, once, twice)
}

func TestRuleConfig_NormalizedClamps(t *testing.T) {
	// Given: a config with every numeric out of range
	rules := RuleConfig{
		FiveLights:           YakuSetting{Enabled: true, Points: 500},
		ThreeLights:          YakuSetting{Enabled: true, Points: -3},
		SelfKoiKoiFactor:     9,
		OpponentKoiKoiFactor: 0,
		KoiKoiLimit:          77,
		OvertimeRounds:       99,
		TargetScore:          1000,
	}

	// When: normalized
	normalized := rules.Normalized()

	// Then: every field lands inside its valid range
	assert.Equal(t, 99, normalized.FiveLights.Points)
	assert.Equal(t, 0, normalized.ThreeLights.Points)
	assert.Equal(t, 5, normalized.SelfKoiKoiFactor)
	assert.Equal(t, 1, normalized.OpponentKoiKoiFactor)
	assert.Equal(t, 12, normalized.KoiKoiLimit)
	assert.Equal(t, 12, normalized.OvertimeRounds)
	assert.Equal(t, 99, normalized.TargetScore)
}

func TestRuleConfig_NormalizedFillsEnums(t *testing.T) {
	// Given: a config with empty and bogus enum values
	rules := RuleConfig{
		KoiKoiBonusMode: "turbo",
		DealerRotation:  "",
		OvertimeMode:    "sometimes",
		NoYakuPolicy:    "",
	}

	// When: normalized
	normalized := rules.Normalized()

	// Then: unknown enums fall back to the defaults
	defaults := DefaultRules()
	assert.Equal(t, defaults.KoiKoiBonusMode, normalized.KoiKoiBonusMode)
	assert.Equal(t, defaults.DealerRotation, normalized.DealerRotation)
	assert.Equal(t, defaults.OvertimeMode, normalized.OvertimeMode)
	assert.Equal(t, defaults.NoYakuPolicy, normalized.NoYakuPolicy)
}

func TestDecodeRules(t *testing.T) {
	t.Run("empty payload yields defaults", func(t *testing.T) {
		rules, err := DecodeRules(nil)
		require.NoError(t, err)
		require.Equal(t, DefaultRules(), rules)
	})

	t.Run("partial payload overlays defaults", func(t *testing.T) {
		// Given: a partial override touching two fields
		raw := json.RawMessage(`{"koikoi_bonus_mode":"additive","three_lights":{"enabled":true,"points":6}}`)

		// When: decoded
		rules, err := DecodeRules(raw)
		require.NoError(t, err)

		// Then: overridden fields change, everything else keeps its default
		assert.Equal(t, BonusAdditive, rules.KoiKoiBonusMode)
		assert.Equal(t, 6, rules.ThreeLights.Points)
		assert.Equal(t, DefaultRules().FourLights, rules.FourLights)
		assert.Equal(t, DefaultRules().SelfKoiKoiFactor, rules.SelfKoiKoiFactor)
	})

	t.Run("malformed payload is rejected", func(t *testing.T) {
		_, err := DecodeRules(json.RawMessage(`{broken`))
		require.Error(t, err)
	})
}

func TestRuleConfig_NoYakuPoints(t *testing.T) {
	// Given: a seat-points policy with differentiated values
	rules := DefaultRules()
	rules.NoYakuPolicy = NoYakuSeat
	rules.NoYakuDealerPoints = 6
	rules.NoYakuNonDealer = 3

	assert.Equal(t, 6, rules.NoYakuPoints(true))
	assert.Equal(t, 3, rules.NoYakuPoints(false))

	// Given: the default policy
	rules.NoYakuPolicy = NoYakuNone
	assert.Equal(t, 0, rules.NoYakuPoints(true))
}
