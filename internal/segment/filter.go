package segment

import (
	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/model"
)

// priceInBounds applies the extreme-price filter: a global price bound plus a
// higher minimum for recent model years, where very cheap asks are almost
// always data errors or scams.
func priceInBounds(l *model.Listing, cfg config.SegmentConfig, refYear int) bool {
	if l.Price < cfg.MinPrice || l.Price > cfg.MaxPrice {
		return false
	}
	if l.Year >= refYear-cfg.RecentYearWindow && l.Price < cfg.RecentMinPrice {
		return false
	}
	return true
}

// isDemoUnit reports whether a listing looks like a dealer demonstrator or
// pre-registration unit: a 2-5 year old car with a near-zero odometer. These
// sell at near-list prices and would skew the used-market statistics upward.
func isDemoUnit(l *model.Listing, cfg config.SegmentConfig, refYear int) bool {
	age := refYear - l.Year
	if age < 2 || age > 5 {
		return false
	}
	return l.Mileage > 0 && l.Mileage < cfg.DemoMaxMileage
}

// usableForStats reports whether a listing may contribute to cohort
// statistics at all.
func usableForStats(l *model.Listing) bool {
	return l.Make != "" && l.Model != "" && l.Year >= 2000 && l.Price > 0
}
