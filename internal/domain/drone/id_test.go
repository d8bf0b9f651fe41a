package drone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIDStartsAtZero(t *testing.T) {
	assert.Equal(t, "GK_2025_00", NextID("GK", 2025, nil))
}

func TestNextIDUsesMaxSuffix(t *testing.T) {
	existing := []string{"GK_2025_00", "GK_2025_07", "GK_2025_03", "GK_2024_42", "XX_2025_99", "GK_2025_ab"}
	assert.Equal(t, "GK_2025_08", NextID("GK", 2025, existing))
}

func TestNextIDGrowsPastTwoDigits(t *testing.T) {
	assert.Equal(t, "GK_2025_100", NextID("GK", 2025, []string{"GK_2025_99"}))
	assert.Equal(t, "GK_2025_101", NextID("GK", 2025, []string{"GK_2025_99", "GK_2025_100"}))
}

func TestParseIDSequence(t *testing.T) {
	seq, ok := ParseIDSequence("GK_2025_12", "GK", 2025)
	assert.True(t, ok)
	assert.Equal(t, 12, seq)

	_, ok = ParseIDSequence("GK_2025_", "GK", 2025)
	assert.False(t, ok)
	_, ok = ParseIDSequence("GK_2025_-1", "GK", 2025)
	assert.False(t, ok)
	_, ok = ParseIDSequence("GKX2025_01", "GK", 2025)
	assert.False(t, ok)
}
