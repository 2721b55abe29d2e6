package dealscore

import "github.com/motorscout/deals-cli/internal/model"

// liquidityLabels maps score bands to a label and an expected time to sell.
var liquidityLabels = []struct {
	min   float64
	label string
	days  int
}{
	{75, "very fast", 7},
	{55, "fast", 14},
	{35, "average", 30},
	{0, "slow", 60},
}

// Liquidity estimates how quickly a listing will sell: a brand-tier base,
// boosted by the discount, adjusted for odometer and age, clamped to [0,100].
func (c *Classifier) Liquidity(l *model.Listing, discount float64, age int) model.LiquidityEstimate {
	score := c.liquidity.MainstreamBase
	switch {
	case contains(c.market.FastBrands, l.Make):
		score = c.liquidity.FastBrandBase
	case contains(c.market.PremiumBrands, l.Make):
		score = c.liquidity.PremiumBase
	}

	if discount > 0 {
		boost := discount * c.liquidity.DiscountFactor
		if boost > c.liquidity.MaxDiscountBoost {
			boost = c.liquidity.MaxDiscountBoost
		}
		score += boost
	}

	switch {
	case l.Mileage > 0 && l.Mileage < 100_000:
		score += 10
	case l.Mileage > 250_000:
		score -= 15
	case l.Mileage > 200_000:
		score -= 10
	}

	switch {
	case age <= 5:
		score += 10
	case age > 15:
		score -= 10
	}

	score = clamp(score, 0, 100)

	est := model.LiquidityEstimate{Score: score}
	for _, band := range liquidityLabels {
		if score >= band.min {
			est.Label = band.label
			est.DaysToSell = band.days
			break
		}
	}
	return est
}
