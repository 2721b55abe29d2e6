package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/segment"
)

const testYear = 2026

func buildIndex(t *testing.T, corpus []model.Listing) *segment.Index {
	t.Helper()
	idx := segment.Build(corpus, config.DefaultSegment(testYear))
	require.False(t, idx.Empty())
	return idx
}

func newCorrector() *Corrector {
	return New(config.DefaultValuation(), config.DefaultMarketData())
}

func cohort(n int, price float64, year, km int) []model.Listing {
	out := make([]model.Listing, n)
	for i := range out {
		out[i] = model.Listing{
			Make:       "Škoda",
			Model:      "Octavia",
			Year:       year,
			Mileage:    km,
			Price:      price,
			CapturedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func TestCorrect_MedianPassesThroughAtReferenceMileage(t *testing.T) {
	idx := buildIndex(t, cohort(5, 12000, 2018, 180000))

	l := model.Listing{ID: "x", Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 180000, Price: 9000}
	res, ok := newCorrector().Correct(&l, segment.KeyFor(&l), idx)
	require.True(t, ok)

	assert.Equal(t, model.MatchBroad, res.Accuracy)
	assert.Equal(t, 12000.0, res.BaseMedian)
	assert.Equal(t, 12000.0, res.FairValue)

	discount := (res.FairValue - l.Price) / res.FairValue * 100
	assert.InDelta(t, 25.0, discount, 0.001)
}

func TestCorrect_MileagePenaltyAboveReference(t *testing.T) {
	idx := buildIndex(t, cohort(5, 12000, 2018, 150000))

	l := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 190000, Price: 9000}
	res, ok := newCorrector().Correct(&l, segment.KeyFor(&l), idx)
	require.True(t, ok)

	// 40k over reference: 4 steps of 2.5% off 12000.
	assert.Equal(t, 10800.0, res.FairValue)
}

func TestCorrect_LowMileageBonusCapped(t *testing.T) {
	idx := buildIndex(t, cohort(5, 12000, 2018, 195000))

	l := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 105000, Price: 11000}
	res, ok := newCorrector().Correct(&l, segment.KeyFor(&l), idx)
	require.True(t, ok)

	// 90k below reference would be +13.5%; cap holds at +15% so it applies in full.
	assert.InDelta(t, 12000*1.135, res.FairValue, 1)
}

func TestCorrect_FloorHolds(t *testing.T) {
	cfg := config.DefaultValuation()
	idx := buildIndex(t, cohort(5, 12000, 2008, 210000))

	// Old car far above reference mileage stacks the doubled penalty and the
	// high-tier multiplier; the floor must still hold.
	l := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2008, Mileage: 295000, Price: 3000}
	res, ok := New(cfg, config.DefaultMarketData()).Correct(&l, segment.KeyFor(&l), idx)
	require.True(t, ok)

	assert.GreaterOrEqual(t, res.FairValue, res.BaseMedian*cfg.FloorFraction)
}

func TestCorrect_TerminalTierFixedFraction(t *testing.T) {
	idx := buildIndex(t, cohort(5, 8000, 2008, 520000))

	l := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2008, Mileage: 540000, Price: 2000}
	res, ok := newCorrector().Correct(&l, segment.KeyFor(&l), idx)
	require.True(t, ok)

	// Fixed terminal fraction of the median, then mileage penalty, floored at
	// the terminal fraction.
	assert.GreaterOrEqual(t, res.FairValue, 8000*0.25)
	assert.LessOrEqual(t, res.FairValue, 8000*0.35)
}

func TestCorrect_EquipmentBonusBroadOnly(t *testing.T) {
	idx := buildIndex(t, cohort(5, 12000, 2018, 150000))

	l := model.Listing{
		Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 150000, Price: 11000,
		Title:       "Škoda Octavia",
		Description: "panoráma, koža, navigácia, LED, ťažné zariadenie",
	}
	res, ok := newCorrector().Correct(&l, segment.KeyFor(&l), idx)
	require.True(t, ok)

	assert.Equal(t, model.MatchBroad, res.Accuracy)
	assert.Equal(t, 12000*1.12, res.FairValue)
}

func TestCorrect_NextYearClamp(t *testing.T) {
	corpus := append(cohort(5, 14000, 2018, 150000), cohort(5, 11000, 2019, 150000)...)
	idx := buildIndex(t, corpus)

	l := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 150000, Price: 10000}
	res, ok := newCorrector().Correct(&l, segment.KeyFor(&l), idx)
	require.True(t, ok)

	// 2018 median 14000 exceeds the 2019 median by more than 10%; clamp to
	// 105% of the next year.
	assert.Equal(t, 11000*1.05, res.FairValue)
}

func TestCorrect_ScamGuard(t *testing.T) {
	idx := buildIndex(t, cohort(5, 15000, 2024, 40000))

	l := model.Listing{ID: "scam", Make: "Škoda", Model: "Octavia", Year: 2024, Mileage: 40000, Price: 2000}
	res, ok := newCorrector().Correct(&l, segment.KeyFor(&l), idx)
	require.True(t, ok)

	assert.True(t, res.ScamSuspect)
	assert.Equal(t, 2000.0, res.FairValue)
}

func TestCorrect_NoStatistics(t *testing.T) {
	idx := segment.Build(cohort(5, 12000, 2018, 150000), config.DefaultSegment(testYear))

	l := model.Listing{Make: "BMW", Model: "X5", Year: 2020, Mileage: 90000, Price: 30000}
	res, ok := newCorrector().Correct(&l, segment.KeyFor(&l), idx)
	assert.False(t, ok)
	assert.Equal(t, model.MatchNone, res.Accuracy)
}
