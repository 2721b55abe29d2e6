// Package segment groups a deduplicated corpus into market cohorts and
// computes the per-cohort price statistics that valuation reads.
package segment

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/normalize"
)

// benchmarkMaxKm bounds the odometer of listings eligible for the
// new-vehicle benchmark sample.
const benchmarkMaxKm = 30_000

// Match is the statistic resolved for one listing's key, together with how
// trustworthy the match is and the mileage reference the cohort implies.
type Match struct {
	Accuracy   model.MatchAccuracy
	Stats      model.SegmentStats
	Value      float64
	RefMileage float64
}

// Index holds the read-only statistics for one scoring run. Built once in
// phase 1; nothing may write to it afterwards.
type Index struct {
	cfg       config.SegmentConfig
	refYear   int
	broad     map[model.SegmentKey]model.SegmentStats
	specific  map[model.SegmentKey]model.SegmentStats
	benchmark map[string]float64
}

// KeyFor derives the specific segment key for a listing. Engine and
// equipment components stay empty when the listing lacks the data, in which
// case the key only ever matches broadly.
func KeyFor(l *model.Listing) model.SegmentKey {
	_, level := normalize.ExtractEquipment(normalize.Fold(l.Text()))
	return model.SegmentKey{
		Make:      l.Make,
		Model:     l.Model,
		Year:      l.Year,
		Tier:      TierForMileage(l.Mileage),
		Engine:    normalize.EngineBucket(l.PowerKW),
		Equipment: level,
	}
}

// Build computes cohort statistics for the whole corpus.
func Build(listings []model.Listing, cfg config.SegmentConfig) *Index {
	refYear := cfg.ReferenceYear
	if refYear == 0 {
		refYear = time.Now().Year()
	}

	idx := &Index{
		cfg:       cfg,
		refYear:   refYear,
		broad:     make(map[model.SegmentKey]model.SegmentStats),
		specific:  make(map[model.SegmentKey]model.SegmentStats),
		benchmark: make(map[string]float64),
	}

	broadGroups := make(map[model.SegmentKey][]*model.Listing)
	specificGroups := make(map[model.SegmentKey][]*model.Listing)
	benchPrices := make(map[string][]float64)
	var filtered, demos int

	for i := range listings {
		l := &listings[i]
		if !usableForStats(l) {
			continue
		}
		idx.collectBenchmark(l, benchPrices)
		if !priceInBounds(l, cfg, refYear) {
			filtered++
			continue
		}
		if isDemoUnit(l, cfg, refYear) {
			demos++
			continue
		}

		key := KeyFor(l)
		bk := key.Broad()
		broadGroups[bk] = append(broadGroups[bk], l)
		if key.IsSpecific() {
			specificGroups[key] = append(specificGroups[key], l)
		}
	}

	for mm, prices := range benchPrices {
		sort.Float64s(prices)
		idx.benchmark[mm] = percentile(prices, cfg.BenchmarkPercentile)
	}

	for key, cohort := range broadGroups {
		idx.broad[key] = idx.cohortStats(key, cohort)
	}
	for key, cohort := range specificGroups {
		idx.specific[key] = idx.cohortStats(key, cohort)
	}

	zap.L().Info("segment: statistics built",
		zap.Int("broad_segments", len(idx.broad)),
		zap.Int("specific_segments", len(idx.specific)),
		zap.Int("benchmarks", len(idx.benchmark)),
		zap.Int("price_filtered", filtered),
		zap.Int("demo_excluded", demos),
	)

	return idx
}

// collectBenchmark feeds the new-vehicle benchmark sample: very recent,
// low-odometer, non-performance listings within the global price bound. A
// high percentile of this sample approximates the model's list price without
// letting top trims define it.
func (idx *Index) collectBenchmark(l *model.Listing, acc map[string][]float64) {
	if idx.refYear-l.Year > 1 {
		return
	}
	if l.Mileage <= 0 || l.Mileage > benchmarkMaxKm {
		return
	}
	if b := normalize.EngineBucket(l.PowerKW); b == model.EngineHigh || b == model.EngineExtreme {
		return
	}
	if l.Price < idx.cfg.MinPrice || l.Price > idx.cfg.MaxPrice {
		return
	}
	mm := l.Make + "|" + l.Model
	acc[mm] = append(acc[mm], l.Price)
}

// cohortStats caps the cohort to the most recent samples, computes the
// statistics and applies the aged-depreciation ceiling.
func (idx *Index) cohortStats(key model.SegmentKey, cohort []*model.Listing) model.SegmentStats {
	sort.SliceStable(cohort, func(i, j int) bool {
		return cohort[i].CapturedAt.After(cohort[j].CapturedAt)
	})
	if len(cohort) > idx.cfg.MaxSamples {
		cohort = cohort[:idx.cfg.MaxSamples]
	}

	stats := computeStats(cohort)

	// A thin sample of pampered older cars can report a median above what
	// depreciation allows. Cap aged cohorts against the new-vehicle benchmark.
	if idx.refYear-key.Year >= idx.cfg.BenchmarkCapMinAge {
		if bench, ok := idx.benchmark[key.Make+"|"+key.Model]; ok && bench > 0 {
			ceiling := bench * idx.cfg.BenchmarkCapRatio
			if stats.Median > ceiling {
				stats.Median = ceiling
			}
			if stats.Max > ceiling {
				stats.Max = ceiling
			}
		}
	}

	return stats
}

// Resolve finds the best statistic for a key: the specific cohort when its
// sample count is trustworthy, the broad cohort otherwise, and a thin broad
// cohort contributes only its minimum price. When the listing's own tier has
// no cohort at all, neighbouring tiers are probed and also treated as a
// minimum-price match.
func (idx *Index) Resolve(key model.SegmentKey) Match {
	if key.IsSpecific() {
		if stats, ok := idx.specific[key]; ok && stats.Count >= idx.cfg.MinSpecificSamples {
			return Match{
				Accuracy:   model.MatchSpecific,
				Stats:      stats,
				Value:      stats.Median,
				RefMileage: refMileage(stats, key.Tier),
			}
		}
	}

	bk := key.Broad()
	if stats, ok := idx.broad[bk]; ok {
		if stats.Count >= idx.cfg.MinBroadSamples {
			return Match{
				Accuracy:   model.MatchBroad,
				Stats:      stats,
				Value:      stats.Median,
				RefMileage: refMileage(stats, key.Tier),
			}
		}
		return Match{
			Accuracy:   model.MatchBroadMin,
			Stats:      stats,
			Value:      stats.Min,
			RefMileage: refMileage(stats, key.Tier),
		}
	}

	for _, tier := range fallbackTiers(key.Tier) {
		nk := bk
		nk.Tier = tier
		if stats, ok := idx.broad[nk]; ok {
			return Match{
				Accuracy:   model.MatchBroadMin,
				Stats:      stats,
				Value:      stats.Min,
				RefMileage: refMileage(stats, tier),
			}
		}
	}

	return Match{Accuracy: model.MatchNone}
}

// NextYearBroad returns the broad statistic for the following model year in
// the same tier, used by the cross-year sanity clamp.
func (idx *Index) NextYearBroad(key model.SegmentKey) (model.SegmentStats, bool) {
	nk := key.Broad()
	nk.Year++
	stats, ok := idx.broad[nk]
	return stats, ok
}

// Benchmark returns the new-vehicle benchmark price for a make/model, if a
// sample existed.
func (idx *Index) Benchmark(make, carModel string) (float64, bool) {
	b, ok := idx.benchmark[fmt.Sprintf("%s|%s", make, carModel)]
	return b, ok
}

// ReferenceYear is the year all age computations in this run are anchored to.
func (idx *Index) ReferenceYear() int {
	return idx.refYear
}

// SuspiciouslyCheap reports whether a price is implausibly low for a recent
// model year, the same bound the extreme-price filter applies.
func (idx *Index) SuspiciouslyCheap(year int, price float64) bool {
	return year >= idx.refYear-idx.cfg.RecentYearWindow && price < idx.cfg.RecentMinPrice
}

// Empty reports whether the run produced no usable statistics at all. This is
// the only fatal condition for a batch.
func (idx *Index) Empty() bool {
	return len(idx.broad) == 0
}

// Segments returns the number of broad cohorts carrying statistics.
func (idx *Index) Segments() int {
	return len(idx.broad)
}

func refMileage(stats model.SegmentStats, tier model.MileageTier) float64 {
	if stats.AvgMileage > 0 {
		return stats.AvgMileage
	}
	return defaultRefMileage[tier]
}
