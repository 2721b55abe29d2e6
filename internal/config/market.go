package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// MarketData holds the versioned keyword lists and price tables the engine
// depends on. Loaded once at startup and passed explicitly; never mutated.
type MarketData struct {
	Version int `yaml:"version"`

	// DisqualifyKeywords zero a listing's score regardless of discount.
	// Slovak, Czech and English phrases; matched diacritic-insensitively.
	DisqualifyKeywords []string `yaml:"disqualify_keywords"`

	// ServiceKeywords indicate documented service history.
	ServiceKeywords []string `yaml:"service_keywords"`

	PremiumBrands []string `yaml:"premium_brands"`
	FastBrands    []string `yaml:"fast_brands"` // fast-moving mainstream brands

	// SUVModels are body styles the market expects to carry a larger engine.
	SUVModels []string `yaml:"suv_models"`

	// BasePrices approximates entry-trim list prices per make and model,
	// used by the depreciation-curve cross-check.
	BasePrices map[string]map[string]float64 `yaml:"base_prices"`
}

// LoadMarketData reads a MarketData yaml file. Missing path returns defaults.
func LoadMarketData(path string) (*MarketData, error) {
	if path == "" {
		return DefaultMarketData(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultMarketData(), nil
		}
		return nil, eris.Wrapf(err, "config: read market data %s", path)
	}
	var md MarketData
	if err := yaml.Unmarshal(raw, &md); err != nil {
		return nil, eris.Wrapf(err, "config: parse market data %s", path)
	}
	if len(md.DisqualifyKeywords) == 0 {
		md.DisqualifyKeywords = DefaultMarketData().DisqualifyKeywords
	}
	return &md, nil
}

// DefaultMarketData returns the built-in tables.
func DefaultMarketData() *MarketData {
	return &MarketData{
		Version: 1,
		DisqualifyKeywords: []string{
			// Slovak
			"havarovane", "havarovany", "havarovana", "poskodene", "poskodeny",
			"motor ko", "motor defekt", "nefunkcny motor", "nepojazdne",
			"nepojazdny", "na nahradne diely", "na diely", "na suciastky",
			"bez stk", "bez ek", "bez emisnej kontroly", "odpisane", "odpisany",
			"vazne poskodene", "totalna skoda", "po havarii", "rozbite",
			"rozbity", "rozpredam", "chyba motora", "puknuty blok", "zadrety",
			"odstupim leasing",
			// Czech
			"po nehode", "motor nefunguje",
			// English
			"crashed", "total loss", "salvage", "parts only", "not running",
			"engine failure", "broken engine", "frame damage", "flood damage",
			"missing papers", "no papers",
		},
		ServiceKeywords: []string{
			"servisna knizka", "servisna historia", "servisovane",
			"servisni knizka", "full service history", "service book",
			"serviska",
		},
		PremiumBrands: []string{
			"BMW", "Mercedes-Benz", "Audi", "Porsche", "Land Rover",
			"Jaguar", "Volvo", "Lexus",
		},
		FastBrands: []string{
			"Škoda", "Volkswagen", "Toyota", "Hyundai", "Kia", "Ford",
		},
		SUVModels: []string{
			"X5", "X6", "X7", "Q7", "Q8", "Touareg", "Cayenne", "GLE", "GLS",
			"Kodiaq", "Tiguan", "Santa Fe", "Sorento", "Land Cruiser",
		},
		BasePrices: map[string]map[string]float64{
			"Škoda": {
				"Fabia": 16000, "Scala": 20000, "Octavia": 26000,
				"Superb": 38000, "Karoq": 28000, "Kodiaq": 38000,
				"Enyaq": 45000,
			},
			"Volkswagen": {
				"Polo": 18000, "Golf": 26000, "Passat": 36000,
				"Tiguan": 34000, "Touareg": 65000, "Arteon": 45000,
			},
			"BMW": {
				"Rad 3": 45000, "Rad 5": 58000, "X1": 40000, "X3": 52000,
				"X5": 75000,
			},
			"Audi": {
				"A3": 35000, "A4": 42000, "A6": 55000, "Q3": 40000,
				"Q5": 52000, "Q7": 72000,
			},
			"Mercedes-Benz": {
				"A-Class": 35000, "C-Class": 45000, "E-Class": 58000,
				"GLC": 55000, "GLE": 75000,
			},
			"Toyota": {
				"Yaris": 17000, "Corolla": 25000, "RAV4": 36000,
				"Land Cruiser": 65000,
			},
			"Hyundai": {
				"i20": 16000, "i30": 21000, "Tucson": 30000,
				"Santa Fe": 44000,
			},
		},
	}
}
