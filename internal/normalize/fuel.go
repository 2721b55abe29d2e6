package normalize

import (
	"regexp"

	"github.com/motorscout/deals-cli/internal/model"
)

// fuelRule is one row of the fuel extraction table. Rules are evaluated in
// slice order; the first match wins, except hybrid which overrides any
// earlier match when present.
type fuelRule struct {
	name    string
	pattern *regexp.Regexp
	fuel    model.FuelType
}

// Ordering encodes the priority: gas codes, diesel engine codes, electric
// models/keywords, then petrol engine codes. Hybrid is handled separately as
// an override.
var fuelRules = []fuelRule{
	{"gas_codes", regexp.MustCompile(`\b(?:cng|lpg|g-tec|gtec)\b`), model.FuelGas},
	{"diesel_codes", regexp.MustCompile(`\b(?:tdi|crd|cdti|hdi|tdci|dci|jtd|cdi|sdv6|sdv8|ddis|did)\b`), model.FuelDiesel},
	{"diesel_badges", regexp.MustCompile(`\b\d(?:\.\d)?d\b|\b\d{2,3}d\b`), model.FuelDiesel},
	{"electric", regexp.MustCompile(`\b(?:elektro|electric|ev|id\.3|id\.4|id\.5|tesla|enyaq|taycan|eqa|eqb|eqc|eqe|eqs)\b`), model.FuelElectric},
	{"petrol_codes", regexp.MustCompile(`\b(?:tsi|tfsi|vtec|gti|benzin)\b`), model.FuelPetrol},
	{"petrol_badges", regexp.MustCompile(`\b\d{3}i\b`), model.FuelPetrol},
}

var hybridPattern = regexp.MustCompile(`\b(?:hybrid|phev|mhev)\b`)

// InferFuel fills the fuel type from folded text. An existing value is kept,
// unless it says electric while the text carries an unambiguous combustion
// engine code and no hybrid phrase, in which case the contradiction is corrected.
func InferFuel(folded string, existing model.FuelType) model.FuelType {
	inferred := model.FuelUnknown
	for _, r := range fuelRules {
		if r.pattern.MatchString(folded) {
			inferred = r.fuel
			break
		}
	}
	if hybridPattern.MatchString(folded) {
		inferred = model.FuelHybrid
	}

	if existing == model.FuelUnknown {
		return inferred
	}
	// Contradiction: labelled electric, engine code says combustion.
	if existing == model.FuelElectric &&
		(inferred == model.FuelDiesel || inferred == model.FuelPetrol) {
		return inferred
	}
	return existing
}
