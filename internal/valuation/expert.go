package valuation

import (
	"math"
	"strings"

	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/normalize"
)

func foldedText(l *model.Listing) string {
	return normalize.Fold(l.Text())
}

// Expert estimates a fair value from first principles: list price, a
// depreciation curve, odometer deviation from the fleet norm and notable
// equipment. It is a cross-check on the statistical valuation, useful when
// the market sample for a model is thin.
type Expert struct {
	market  *config.MarketData
	refYear int
}

func NewExpert(market *config.MarketData, refYear int) *Expert {
	return &Expert{market: market, refYear: refYear}
}

const (
	defaultBasePrice  = 25_000
	standardRetention = 0.85
	premiumRetention  = 0.82
	techInflationRate = 0.03
	techInflationFrom = 2015
)

// Estimate returns the expert fair value for a listing. Zero when the
// listing lacks a year.
func (e *Expert) Estimate(l *model.Listing) float64 {
	if l.Year == 0 {
		return 0
	}

	base := e.originalPrice(l)
	value := e.depreciate(base, l)
	value = e.mileageCorrection(value, l)
	value = e.featureAdjustment(value, l)

	if value < 500 {
		value = 500
	}
	return math.Round(value)
}

// originalPrice looks the entry-trim list price up in the base-price table
// and adjusts it for engine output and the model year's technology content.
func (e *Expert) originalPrice(l *model.Listing) float64 {
	base := float64(defaultBasePrice)
	if models, ok := e.market.BasePrices[l.Make]; ok {
		for name, price := range models {
			if strings.EqualFold(name, l.Model) {
				base = price
				break
			}
		}
	}

	if l.PowerKW > 140 {
		base *= 1.25
	} else if l.PowerKW > 110 {
		base *= 1.10
	}

	if l.Year > techInflationFrom {
		base *= 1 + float64(l.Year-techInflationFrom)*techInflationRate
	}
	return base
}

func (e *Expert) depreciate(base float64, l *model.Listing) float64 {
	age := e.refYear - l.Year
	if age < 0 {
		return base
	}

	retention := standardRetention
	if contains(e.market.PremiumBrands, l.Make) {
		retention = premiumRetention
	}
	if age == 0 {
		return base * standardRetention
	}

	value := base * math.Pow(retention, float64(age))
	if value < 1000 {
		value = 1000
	}
	return value
}

// mileageCorrection compares the odometer against the fuel-specific annual
// norm and charges or credits per kilometre of deviation, with stepped
// penalties past psychologically loaded readings.
func (e *Expert) mileageCorrection(value float64, l *model.Listing) float64 {
	if l.Mileage <= 0 {
		return value
	}
	age := e.refYear - l.Year
	if age < 0 {
		age = 0
	}

	annualNorm := 15_000.0
	switch l.Fuel {
	case model.FuelDiesel:
		annualNorm = 25_000
	case model.FuelElectric:
		annualNorm = 12_000
	}

	expected := math.Max(10_000, float64(age)*annualNorm)
	diff := float64(l.Mileage) - expected

	rate := 0.04
	if value > 30_000 {
		rate = 0.08
	}
	value -= diff * rate

	if l.Mileage > 200_000 {
		value -= 1000
	}
	if l.Mileage > 300_000 {
		value -= 2000
	}
	return value
}

// expertFeatureValues price the equipment an expert would call out, keyed by
// folded text fragments.
var expertFeatureValues = []struct {
	fragments []string
	value     float64
}{
	{[]string{"4x4", "4wd", "quattro", "4motion", "xdrive"}, 1200},
	{[]string{"dsg", "automat"}, 1200},
	{[]string{"panorama", "stresne okno"}, 500},
	{[]string{"koza", "alcantara", "leather"}, 600},
	{[]string{"full led", "matrix", "xenon"}, 700},
	{[]string{"virtual cockpit"}, 400},
}

func (e *Expert) featureAdjustment(value float64, l *model.Listing) float64 {
	folded := foldedText(l)
	for _, f := range expertFeatureValues {
		for _, fragment := range f.fragments {
			if strings.Contains(folded, fragment) {
				value += f.value
				break
			}
		}
	}
	if l.Transmission == model.TransmissionAutomatic && !strings.Contains(folded, "automat") && !strings.Contains(folded, "dsg") {
		value += 1200
	}
	return value
}
