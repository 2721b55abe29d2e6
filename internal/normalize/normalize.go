package normalize

import (
	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/model"
)

// Apply fills the missing structured fields of a listing from its free text
// and returns a copy; the input is never mutated. Fields the source supplied
// are preserved, except the fuel-contradiction case handled by InferFuel.
func Apply(l model.Listing) model.Listing {
	folded := Fold(l.Text())

	if l.Make == "" || l.Model == "" {
		carMake, carModel := ExtractMakeModel(l.Title)
		if l.Make == "" {
			l.Make = carMake
		}
		if l.Model == "" {
			l.Model = carModel
		}
	}

	l.Fuel = InferFuel(folded, l.Fuel)
	l.Transmission = InferTransmission(folded, l.Model, l.Transmission)
	l.Drivetrain = InferDrivetrain(folded, l.Drivetrain)
	l.Mileage = InferMileage(l.Title, l.Description, l.Mileage)
	l.SellerType = InferSellerType(l.SellerName, l.Description, l.SellerType)

	return l
}

// Batch normalizes a whole corpus, logging a summary of what was filled.
func Batch(listings []model.Listing) []model.Listing {
	out := make([]model.Listing, len(listings))
	var filledMake, filledKm int
	for i, l := range listings {
		n := Apply(l)
		if l.Make == "" && n.Make != "" {
			filledMake++
		}
		if l.Mileage == 0 && n.Mileage > 0 {
			filledKm++
		}
		out[i] = n
	}
	zap.L().Info("normalize: corpus normalized",
		zap.Int("listings", len(listings)),
		zap.Int("filled_make", filledMake),
		zap.Int("filled_mileage", filledKm),
	)
	return out
}
