package segment

import (
	"math"
	"sort"

	"github.com/motorscout/deals-cli/internal/model"
)

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// percentile returns the p-th percentile (0 < p <= 1) of a sorted slice using
// the nearest-rank method.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(n))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	return sorted[rank]
}

// computeStats builds SegmentStats from a cohort. Listings must already be
// capped to the sample limit.
func computeStats(cohort []*model.Listing) model.SegmentStats {
	prices := make([]float64, 0, len(cohort))
	var kmSum float64
	var kmCount int
	for _, l := range cohort {
		prices = append(prices, l.Price)
		if l.Mileage > 0 {
			kmSum += float64(l.Mileage)
			kmCount++
		}
	}
	sort.Float64s(prices)

	stats := model.SegmentStats{
		Count:  len(prices),
		Median: median(prices),
	}
	if len(prices) > 0 {
		stats.Min = prices[0]
		stats.Max = prices[len(prices)-1]
	}
	if kmCount > 0 {
		stats.AvgMileage = kmSum / float64(kmCount)
	}
	return stats
}
