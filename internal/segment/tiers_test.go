package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motorscout/deals-cli/internal/model"
)

func TestTierForMileage(t *testing.T) {
	tests := []struct {
		name string
		km   int
		want model.MileageTier
	}{
		{"fresh", 45000, model.TierLow},
		{"boundary low/mid", 100000, model.TierMid},
		{"typical", 180000, model.TierMid},
		{"high", 250000, model.TierHigh},
		{"very high", 340000, model.TierVeryHigh},
		{"legacy", 420000, model.TierLegacy},
		{"terminal", 510000, model.TierTerminal},
		{"unknown goes conservative", 0, model.TierHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierForMileage(tt.km))
		})
	}
}

func TestFallbackTiersNearestFirst(t *testing.T) {
	got := fallbackTiers(model.TierMid)
	assert.Equal(t, model.TierLow, got[0])
	assert.Equal(t, model.TierHigh, got[1])
	assert.Len(t, got, 5)
}
