package tuya

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-tuya/internal/platform"
	iot "github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

func TestSelectRegistry_AliasesShareCanonicalSlice(t *testing.T) {
	r := NewSelectRegistry()

	aliases := map[string]string{
		"cz": "kg", "pc": "kg",
		"bxx": "ms", "gyms": "ms", "jtmspro": "ms", "hotelms": "ms", "ms_category": "ms",
		"jtmsbh": "ms", "mk": "ms", "videolock": "ms", "photolock": "ms",
	}

	for alias, canonical := range aliases {
		t.Run(alias, func(t *testing.T) {
			got, ok := r.Lookup(alias)
			require.True(t, ok)
			want, ok := r.Lookup(canonical)
			require.True(t, ok)

			assert.Equal(t, want, got)
			require.NotEmpty(t, got)
			assert.Same(t, &want[0], &got[0], "alias must share the canonical backing array")

			c, ok := r.AliasOf(alias)
			assert.True(t, ok)
			assert.Equal(t, canonical, c)
		})
	}
}

func TestSelectRegistry_LookupUnknownCategory(t *testing.T) {
	r := NewSelectRegistry()

	descs, ok := r.Lookup("not-a-category")
	assert.False(t, ok)
	assert.Nil(t, descs)

	_, ok = r.AliasOf("kg")
	assert.False(t, ok, "canonical categories are not aliases")
}

func TestSelectRegistry_Categories(t *testing.T) {
	cats := NewSelectRegistry().Categories()

	assert.True(t, slices.IsSorted(cats))
	for _, c := range []string{"dgnbj", "kfj", "kg", "ms", "qn", "sgbj", "sp", "tdq", "tgkg", "tgq", "szjqr", "sd", "fs", "cl", "jsq", "kj", "cs", "cz", "photolock"} {
		assert.Contains(t, cats, c)
	}
	assert.Len(t, cats, 28)
}

func TestSelectRegistry_Order(t *testing.T) {
	r := NewSelectRegistry()

	tests := []struct {
		category string
		want     []iot.DPCode
	}{
		{"kg", []iot.DPCode{iot.DPCodeRelayStatus, iot.DPCodeLightMode}},
		{"kfj", []iot.DPCode{iot.DPCodeCupNumber, iot.DPCodeConcentrationSet, iot.DPCodeMaterial, iot.DPCodeMode}},
		{"tgkg", []iot.DPCode{iot.DPCodeRelayStatus, iot.DPCodeLightMode, iot.DPCodeLEDType1, iot.DPCodeLEDType2, iot.DPCodeLEDType3}},
		{"tgq", []iot.DPCode{iot.DPCodeLEDType1, iot.DPCodeLEDType2}},
		{"fs", []iot.DPCode{iot.DPCodeFanVertical, iot.DPCodeFanHorizontal, iot.DPCodeCountdown, iot.DPCodeCountdownSet}},
		{"cs", []iot.DPCode{iot.DPCodeCountdownSet, iot.DPCodeDehumiditySetEnum}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			descs, ok := r.Lookup(tt.category)
			require.True(t, ok)

			got := make([]iot.DPCode, len(descs))
			for i, d := range descs {
				got[i] = d.Key
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectRegistry_LockLanguageDisabledByDefault(t *testing.T) {
	descs, ok := NewSelectRegistry().Lookup("ms")
	require.True(t, ok)
	require.Len(t, descs, 19)

	last := descs[len(descs)-1]
	assert.Equal(t, iot.DPCodeLanguage, last.Key)
	assert.False(t, last.EnabledByDefault())
	assert.Equal(t, platform.EntityCategoryConfig, last.EntityCategory)

	for _, d := range descs[:len(descs)-1] {
		assert.True(t, d.EnabledByDefault(), d.Key)
	}
}

func TestSelectDescription_EntityDescription(t *testing.T) {
	d := SelectDescription{
		Key:               iot.DPCodeSprayMode,
		Name:              "Spray mode",
		EntityCategory:    platform.EntityCategoryConfig,
		Icon:              "mdi:spray",
		DisabledByDefault: true,
		TranslationKey:    "humidifier_spray_mode",
	}

	assert.Equal(t, platform.EntityDescription{
		Key:              "spray_mode",
		Name:             "Spray mode",
		EntityCategory:   platform.EntityCategoryConfig,
		Icon:             "mdi:spray",
		TranslationKey:   "humidifier_spray_mode",
		EnabledByDefault: false,
	}, d.entityDescription())
}
