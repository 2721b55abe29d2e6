package segment

import "github.com/motorscout/deals-cli/internal/model"

// tierBounds are the upper (exclusive) mileage bounds of each band, in order.
var tierBounds = []struct {
	limit int
	tier  model.MileageTier
}{
	{100_000, model.TierLow},
	{200_000, model.TierMid},
	{300_000, model.TierHigh},
	{400_000, model.TierVeryHigh},
	{500_000, model.TierLegacy},
}

// TierForMileage maps a mileage reading to its band. Unknown mileage (0) is
// placed in the high band rather than low: an unreported odometer must not
// make a listing look artificially young.
func TierForMileage(km int) model.MileageTier {
	if km <= 0 {
		return model.TierHigh
	}
	for _, b := range tierBounds {
		if km < b.limit {
			return b.tier
		}
	}
	return model.TierTerminal
}

// defaultRefMileage is the assumed segment-average mileage when a cohort has
// no known odometer readings of its own.
var defaultRefMileage = map[model.MileageTier]float64{
	model.TierLow:      60_000,
	model.TierMid:      150_000,
	model.TierHigh:     250_000,
	model.TierVeryHigh: 350_000,
	model.TierLegacy:   450_000,
	model.TierTerminal: 550_000,
}

// fallbackTiers lists the tiers to probe, nearest first, when a listing's own
// tier has no broad statistic.
func fallbackTiers(t model.MileageTier) []model.MileageTier {
	order := []model.MileageTier{
		model.TierLow, model.TierMid, model.TierHigh,
		model.TierVeryHigh, model.TierLegacy, model.TierTerminal,
	}
	pos := 0
	for i, o := range order {
		if o == t {
			pos = i
			break
		}
	}
	out := make([]model.MileageTier, 0, len(order)-1)
	for d := 1; d < len(order); d++ {
		if pos-d >= 0 {
			out = append(out, order[pos-d])
		}
		if pos+d < len(order) {
			out = append(out, order[pos+d])
		}
	}
	return out
}
