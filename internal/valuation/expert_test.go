package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/model"
)

func TestExpertEstimate_DepreciatesWithAge(t *testing.T) {
	e := NewExpert(config.DefaultMarketData(), testYear)

	newer := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2022, Mileage: 60000, Fuel: model.FuelPetrol}
	older := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2014, Mileage: 180000, Fuel: model.FuelPetrol}

	assert.Greater(t, e.Estimate(&newer), e.Estimate(&older))
}

func TestExpertEstimate_HighMileagePenalized(t *testing.T) {
	e := NewExpert(config.DefaultMarketData(), testYear)

	normal := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 120000, Fuel: model.FuelPetrol}
	worn := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 310000, Fuel: model.FuelPetrol}

	assert.Greater(t, e.Estimate(&normal), e.Estimate(&worn))
}

func TestExpertEstimate_DieselNormForgivesMileage(t *testing.T) {
	e := NewExpert(config.DefaultMarketData(), testYear)

	diesel := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 180000, Fuel: model.FuelDiesel}
	petrol := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 180000, Fuel: model.FuelPetrol}

	// Same odometer reads as less excessive against the diesel annual norm.
	assert.Greater(t, e.Estimate(&diesel), e.Estimate(&petrol))
}

func TestExpertEstimate_FeaturesAddValue(t *testing.T) {
	e := NewExpert(config.DefaultMarketData(), testYear)

	plain := model.Listing{Make: "Škoda", Model: "Octavia", Year: 2018, Mileage: 150000, Fuel: model.FuelPetrol, Title: "Škoda Octavia"}
	loaded := plain
	loaded.Description = "4x4, DSG automat, panoráma, koža, matrix svetlá"

	assert.Greater(t, e.Estimate(&loaded), e.Estimate(&plain))
}

func TestExpertEstimate_NeverBelowScrapFloor(t *testing.T) {
	e := NewExpert(config.DefaultMarketData(), testYear)

	wreck := model.Listing{Make: "Fiat", Model: "Punto", Year: 2002, Mileage: 450000, Fuel: model.FuelPetrol}
	assert.GreaterOrEqual(t, e.Estimate(&wreck), 500.0)
}

func TestExpertEstimate_NoYear(t *testing.T) {
	e := NewExpert(config.DefaultMarketData(), testYear)
	l := model.Listing{Make: "Škoda", Model: "Octavia", Mileage: 120000}
	assert.Equal(t, 0.0, e.Estimate(&l))
}
