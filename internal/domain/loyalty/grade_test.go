package loyalty

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestGrade(t *testing.T) {
	tests := []struct {
		name  string
		stays int64
		paid  int64
		want  Tier
	}{
		{"new client", 0, 0, TierBronze},
		{"just below silver", 2, 99_999, TierBronze},
		{"silver by stays", 3, 0, TierSilver},
		{"silver by amount", 0, 100_000, TierSilver},
		{"gold by stays", 10, 0, TierGold},
		{"gold by amount", 1, 250_000, TierGold},
		{"platinum by stays", 20, 0, TierPlatinum},
		{"platinum by amount", 0, 500_000, TierPlatinum},
		{"negative inputs still map", -5, -100, TierBronze},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestGrade(tt.stays, tt.paid))
		})
	}
}

func TestIsUpgrade(t *testing.T) {
	assert.True(t, IsUpgrade(TierBronze, TierSilver))
	assert.True(t, IsUpgrade(TierSilver, TierPlatinum))
	assert.False(t, IsUpgrade(TierGold, TierGold))
	assert.False(t, IsUpgrade(TierPlatinum, TierBronze))
}

func TestGrade_ApplySuggestion(t *testing.T) {
	g, err := NewGrade(uuid.New(), TierBronze)
	require.NoError(t, err)

	changed := g.ApplySuggestion(TierSilver)
	assert.True(t, changed)
	assert.Equal(t, TierSilver, g.Tier())

	changed = g.ApplySuggestion(TierSilver)
	assert.False(t, changed, "same tier is a no-op")
}

func TestGrade_OverrideBlocksAutomaticRecompute(t *testing.T) {
	g, err := NewGrade(uuid.New(), TierSilver)
	require.NoError(t, err)

	staffID := uuid.New()
	require.NoError(t, g.Override(TierGold, staffID))
	assert.True(t, g.IsOverride())
	require.NotNil(t, g.OverriddenBy())
	assert.Equal(t, staffID, *g.OverriddenBy())
	assert.NotNil(t, g.OverriddenAt())

	// Automatic suggestions must not move an overridden grade, in either
	// direction, until the override is explicitly reset.
	assert.False(t, g.ApplySuggestion(TierPlatinum))
	assert.Equal(t, TierGold, g.Tier())
	assert.False(t, g.ApplySuggestion(TierBronze))
	assert.Equal(t, TierGold, g.Tier())

	require.NoError(t, g.ResetToAutomatic(TierSilver))
	assert.False(t, g.IsOverride())
	assert.Nil(t, g.OverriddenBy())
	assert.Equal(t, TierSilver, g.Tier())

	assert.True(t, g.ApplySuggestion(TierGold), "automatic recompute works again after reset")
}

func TestGrade_OverrideValidation(t *testing.T) {
	g, err := NewGrade(uuid.New(), TierBronze)
	require.NoError(t, err)

	assert.Error(t, g.Override(Tier("diamond"), uuid.New()))
	assert.Error(t, g.Override(TierGold, uuid.Nil))
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("gold")
	require.NoError(t, err)
	assert.Equal(t, TierGold, tier)

	_, err = ParseTier("wood")
	assert.Error(t, err)
}
