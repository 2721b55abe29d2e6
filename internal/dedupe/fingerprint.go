// Package dedupe collapses listings describing the same physical vehicle
// across sources into one canonical record.
package dedupe

import (
	"fmt"
	"math"
	"strings"

	"github.com/motorscout/deals-cli/internal/model"
)

// Fingerprint derives the identity key for a listing.
//
// A valid 17-character VIN is authoritative and used alone. Otherwise a fuzzy
// key is composed from make, model, year, price rounded to 100, mileage
// rounded to 1000 and the first location token. That is tolerant of small
// cross-source formatting differences while still requiring agreement on the
// car's identity and price bracket. Listings without make/model/year get an
// empty fingerprint and are never merged.
func Fingerprint(l *model.Listing) string {
	if l.HasValidVIN() {
		return "vin:" + strings.ToUpper(l.VIN)
	}
	if l.Make == "" || l.Model == "" || l.Year == 0 {
		return ""
	}

	price := int(math.Round(l.Price/100) * 100)
	km := "na"
	if l.Mileage > 0 {
		km = fmt.Sprintf("%d", int(math.Round(float64(l.Mileage)/1000)*1000))
	}
	loc := "na"
	if l.Location != "" {
		first := strings.Fields(strings.Split(l.Location, ",")[0])
		if len(first) > 0 {
			loc = strings.ToLower(first[0])
		}
	}

	return fmt.Sprintf("fuzzy:%s|%s|%d|%d|%s|%s", l.Make, l.Model, l.Year, price, km, loc)
}
