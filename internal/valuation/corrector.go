// Package valuation turns a segment median into a per-listing fair value by
// running an ordered pipeline of named correction steps.
package valuation

import (
	"math"

	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/segment"
)

// stepContext carries everything a correction step may read. Steps never
// write to it.
type stepContext struct {
	cfg     config.ValuationConfig
	market  *config.MarketData
	listing *model.Listing
	key     model.SegmentKey
	match   segment.Match
	idx     *segment.Index
	age     int
}

// correctionStep is one pure rule of the pipeline: value in, value out.
// Rules are listed once, in evaluation order, so adding a rule never means
// copying the whole function.
type correctionStep struct {
	name  string
	apply func(value float64, ctx *stepContext) float64
}

var steps = []correctionStep{
	{"tier_multiplier", applyTierMultiplier},
	{"mileage_within_tier", applyMileageCorrection},
	{"pre_service_discount", applyPreServiceDiscount},
	{"equipment_bonus", applyEquipmentBonus},
	{"weak_engine_penalty", applyWeakEnginePenalty},
	{"next_year_clamp", applyNextYearClamp},
	{"median_floor", applyFloor},
}

// tierMultipliers step the median down for higher wear bands. The terminal
// band is handled separately as a fixed fraction of the median.
var tierMultipliers = map[model.MileageTier]float64{
	model.TierLow:      1.0,
	model.TierMid:      1.0,
	model.TierHigh:     0.90,
	model.TierVeryHigh: 0.80,
	model.TierLegacy:   0.70,
}

// Result is the corrected valuation for one listing.
type Result struct {
	BaseMedian  float64
	FairValue   float64
	Accuracy    model.MatchAccuracy
	RefMileage  float64
	ScamSuspect bool
}

// Corrector runs the correction pipeline against a statistics index.
type Corrector struct {
	cfg    config.ValuationConfig
	market *config.MarketData
}

func New(cfg config.ValuationConfig, market *config.MarketData) *Corrector {
	return &Corrector{cfg: cfg, market: market}
}

// Correct resolves the listing's statistic and applies every correction step
// in order. The boolean is false when no statistic could be found at all.
func (c *Corrector) Correct(l *model.Listing, key model.SegmentKey, idx *segment.Index) (Result, bool) {
	match := idx.Resolve(key)
	if match.Accuracy == model.MatchNone {
		return Result{Accuracy: model.MatchNone}, false
	}

	ctx := &stepContext{
		cfg:     c.cfg,
		market:  c.market,
		listing: l,
		key:     key,
		match:   match,
		idx:     idx,
		age:     idx.ReferenceYear() - l.Year,
	}

	value := match.Value
	for _, step := range steps {
		next := step.apply(value, ctx)
		if next != value {
			zap.L().Debug("valuation: step applied",
				zap.String("step", step.name),
				zap.String("listing", l.ID),
				zap.Float64("before", value),
				zap.Float64("after", next),
			)
			value = next
		}
	}

	res := Result{
		BaseMedian: match.Value,
		FairValue:  math.Round(value),
		Accuracy:   match.Accuracy,
		RefMileage: match.RefMileage,
	}

	// Outlier guard: an enormous implied discount on a recent car priced far
	// below the corrected value is a scam signature, not a bargain. The
	// listing price becomes the reference so the classifier sees no deal.
	discount := (res.FairValue - l.Price) / res.FairValue * 100
	if discount > c.cfg.ScamDiscountThreshold &&
		l.Price < res.FairValue*c.cfg.ScamPriceRatio &&
		idx.SuspiciouslyCheap(l.Year, l.Price) {
		res.FairValue = l.Price
		res.ScamSuspect = true
	}

	return res, true
}

// applyTierMultiplier steps the value down for higher wear bands, with a
// further discount past the old-age threshold. The terminal band is valued
// at a fixed scrap-adjacent fraction of the median instead.
func applyTierMultiplier(value float64, ctx *stepContext) float64 {
	if ctx.key.Tier == model.TierTerminal {
		return ctx.match.Value * ctx.cfg.TerminalValueFraction
	}
	mult := tierMultipliers[ctx.key.Tier]
	if mult < 1.0 && ctx.age > ctx.cfg.OldAgeYears {
		mult -= 0.05
	}
	return value * mult
}

// applyMileageCorrection penalizes mileage above the tier reference and
// rewards mileage below it. The penalty rate grows when the listing is far
// outside the reference and doubles past the old-age threshold; both
// directions are capped.
func applyMileageCorrection(value float64, ctx *stepContext) float64 {
	km := ctx.listing.Mileage
	if km <= 0 || ctx.match.RefMileage <= 0 {
		return value
	}

	diff := float64(km) - ctx.match.RefMileage
	if diff > 0 {
		penalty := diff / 10_000 * ctx.cfg.MileagePenaltyPer10K
		if diff > float64(ctx.cfg.FarOutsideKm) {
			penalty *= ctx.cfg.FarOutsideFactor
		}
		if ctx.age > ctx.cfg.OldAgeYears {
			penalty *= 2
		}
		if penalty > ctx.cfg.MaxMileagePenalty {
			penalty = ctx.cfg.MaxMileagePenalty
		}
		return value * (1 - penalty)
	}

	bonus := -diff / 10_000 * ctx.cfg.LowMileageBonusPer10K
	if bonus > ctx.cfg.MaxLowMileageBonus {
		bonus = ctx.cfg.MaxLowMileageBonus
	}
	return value * (1 + bonus)
}

// serviceMarks are odometer readings associated with major service bills.
var serviceMarks = []int{120_000, 180_000, 240_000}

// applyPreServiceDiscount reflects buyer hesitation toward premium cars
// sitting just below a major service interval.
func applyPreServiceDiscount(value float64, ctx *stepContext) float64 {
	if ctx.listing.Mileage <= 0 || !contains(ctx.market.PremiumBrands, ctx.listing.Make) {
		return value
	}
	for _, mark := range serviceMarks {
		gap := mark - ctx.listing.Mileage
		if gap > 0 && gap <= ctx.cfg.PreServiceWindowKm {
			return value * (1 - ctx.cfg.PreServiceDiscount)
		}
	}
	return value
}

// applyEquipmentBonus rewards equipment only on broad matches. A specific
// match already groups by equipment level; applying the bonus there would
// count it twice.
func applyEquipmentBonus(value float64, ctx *stepContext) float64 {
	if ctx.match.Accuracy == model.MatchSpecific {
		return value
	}
	switch ctx.key.Equipment {
	case model.EquipFull:
		return value * (1 + ctx.cfg.EquipFullBonus)
	case model.EquipMedium:
		return value * (1 + ctx.cfg.EquipMediumBonus)
	}
	return value
}

// applyWeakEnginePenalty discounts body styles the market expects to carry a
// larger engine when they are listed with the weakest petrol unit.
func applyWeakEnginePenalty(value float64, ctx *stepContext) float64 {
	if ctx.key.Engine != model.EngineBase || ctx.listing.Fuel != model.FuelPetrol {
		return value
	}
	if !contains(ctx.market.SUVModels, ctx.listing.Model) {
		return value
	}
	return value * (1 - ctx.cfg.WeakEnginePenalty)
}

// applyNextYearClamp keeps the corrected value consistent with the next
// model year: thin samples occasionally invert the age/price relationship.
func applyNextYearClamp(value float64, ctx *stepContext) float64 {
	next, ok := ctx.idx.NextYearBroad(ctx.key)
	if !ok || next.Median <= 0 {
		return value
	}
	if value > next.Median*ctx.cfg.NextYearClampTrigger {
		return next.Median * ctx.cfg.NextYearClampTo
	}
	return value
}

// applyFloor stops accumulated penalties from driving the value below a
// fraction of the uncorrected median.
func applyFloor(value float64, ctx *stepContext) float64 {
	fraction := ctx.cfg.FloorFraction
	if ctx.key.Tier == model.TierTerminal {
		fraction = ctx.cfg.TerminalFloorFraction
	}
	floor := ctx.match.Value * fraction
	if value < floor {
		return floor
	}
	return value
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
