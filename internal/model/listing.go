// Package model defines the core data types shared across the scoring engine.
package model

import (
	"time"
)

// FuelType is the normalized fuel classification of a listing.
type FuelType string

const (
	FuelDiesel   FuelType = "diesel"
	FuelPetrol   FuelType = "petrol"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
	FuelGas      FuelType = "cng_lpg"
	FuelUnknown  FuelType = ""
)

// Transmission is the normalized gearbox classification.
type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
	TransmissionUnknown   Transmission = ""
)

// Drivetrain is the normalized drive classification.
type Drivetrain string

const (
	DriveAWD     Drivetrain = "awd"
	DriveRWD     Drivetrain = "rwd"
	DriveFWD     Drivetrain = "fwd"
	DriveUnknown Drivetrain = ""
)

// SellerType distinguishes private sellers from dealers.
type SellerType string

const (
	SellerPrivate SellerType = "private"
	SellerDealer  SellerType = "dealer"
	SellerUnknown SellerType = ""
)

// Listing is a single advertisement snapshot produced by the ingestion side.
// The engine treats it as immutable input; scoring output lives on ScoredListing.
type Listing struct {
	ID           string       `json:"id"`
	Source       string       `json:"source"`
	URL          string       `json:"url"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Make         string       `json:"make,omitempty"`
	Model        string       `json:"model,omitempty"`
	Year         int          `json:"year,omitempty"`
	Mileage      int          `json:"mileage,omitempty"` // km; 0 means unknown
	Price        float64      `json:"price"`
	Fuel         FuelType     `json:"fuel,omitempty"`
	PowerKW      int          `json:"power_kw,omitempty"`
	Transmission Transmission `json:"transmission,omitempty"`
	Drivetrain   Drivetrain   `json:"drivetrain,omitempty"`
	VIN          string       `json:"vin,omitempty"`
	Location     string       `json:"location,omitempty"`
	SellerName   string       `json:"seller_name,omitempty"`
	SellerType   SellerType   `json:"seller_type,omitempty"`
	CapturedAt   time.Time    `json:"captured_at"`
}

// Text returns the combined free text used by heuristic extraction.
func (l *Listing) Text() string {
	if l.Description == "" {
		return l.Title
	}
	return l.Title + " " + l.Description
}

// HasValidVIN reports whether the listing carries a plausible 17-character VIN.
func (l *Listing) HasValidVIN() bool {
	return len(l.VIN) == 17
}

// CrossRef records the same vehicle seen on another source.
type CrossRef struct {
	Source string  `json:"source"`
	URL    string  `json:"url"`
	Price  float64 `json:"price"`
}
