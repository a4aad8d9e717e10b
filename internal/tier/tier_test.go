package tier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kzn-tools/kaizen/internal/tier"
)

func TestParse(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		expected tier.Tier
	}{
		{"free", "free", tier.Free},
		{"pro lowercase", "pro", tier.Pro},
		{"pro uppercase", "PRO", tier.Pro},
		{"enterprise", "enterprise", tier.Enterprise},
		{"unknown defaults to free", "platinum", tier.Free},
		{"empty defaults to free", "", tier.Free},
	}
	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tier.Parse(tt.input))
		})
	}
}

func TestMeetsOrdering(t *testing.T) {
	t.Parallel()
	assert.True(t, tier.Enterprise.Meets(tier.Pro))
	assert.True(t, tier.Pro.Meets(tier.Free))
	assert.False(t, tier.Free.Meets(tier.Pro))
	assert.True(t, tier.Free.Meets(tier.Free))
}

func TestString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "free", tier.Free.String())
	assert.Equal(t, "pro", tier.Pro.String())
	assert.Equal(t, "enterprise", tier.Enterprise.String())
}
