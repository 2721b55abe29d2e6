package model

import "fmt"

// MileageTier is one of the fixed, non-overlapping mileage bands.
type MileageTier string

const (
	TierLow      MileageTier = "low"       // < 100k
	TierMid      MileageTier = "mid"       // 100k–200k
	TierHigh     MileageTier = "high"      // 200k–300k
	TierVeryHigh MileageTier = "very_high" // 300k–400k
	TierLegacy   MileageTier = "legacy"    // 400k–500k
	TierTerminal MileageTier = "terminal"  // >= 500k
)

// EngineBucket groups listings by power output.
type EngineBucket string

const (
	EngineBase    EngineBucket = "base"     // <= 80 kW
	EngineMid     EngineBucket = "mid"      // 81–110 kW
	EngineMidHigh EngineBucket = "mid_high" // 111–150 kW
	EngineHigh    EngineBucket = "high"     // 151–200 kW
	EngineExtreme EngineBucket = "extreme"  // > 200 kW
	EngineUnknown EngineBucket = ""
)

// EquipmentLevel is the coarse trim classification derived from text.
type EquipmentLevel string

const (
	EquipBasic  EquipmentLevel = "basic"
	EquipMedium EquipmentLevel = "medium"
	EquipFull   EquipmentLevel = "full"
)

// SegmentKey identifies a market cohort. The broad form uses make, model, year
// and mileage tier; the specific form additionally pins engine bucket and
// equipment level. It is a grouping key only, never persisted on its own.
type SegmentKey struct {
	Make      string         `json:"make"`
	Model     string         `json:"model"`
	Year      int            `json:"year"`
	Tier      MileageTier    `json:"tier"`
	Engine    EngineBucket   `json:"engine,omitempty"`
	Equipment EquipmentLevel `json:"equipment,omitempty"`
}

// Broad strips the specific components, leaving the make/model/year/tier key.
func (k SegmentKey) Broad() SegmentKey {
	k.Engine = EngineUnknown
	k.Equipment = ""
	return k
}

// IsSpecific reports whether the key pins engine and equipment.
func (k SegmentKey) IsSpecific() bool {
	return k.Engine != EngineUnknown && k.Equipment != ""
}

func (k SegmentKey) String() string {
	if k.IsSpecific() {
		return fmt.Sprintf("%s|%s|%d|%s|%s|%s", k.Make, k.Model, k.Year, k.Tier, k.Engine, k.Equipment)
	}
	return fmt.Sprintf("%s|%s|%d|%s", k.Make, k.Model, k.Year, k.Tier)
}

// SegmentStats holds the per-cohort price statistics. Computed once per run
// from listings that passed the extreme-price filter; read-only afterwards.
type SegmentStats struct {
	Count      int     `json:"count"`
	Median     float64 `json:"median"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	AvgMileage float64 `json:"avg_mileage"`
}

// MatchAccuracy records which statistic a correction was based on.
type MatchAccuracy string

const (
	MatchSpecific MatchAccuracy = "specific"  // specific key, enough samples
	MatchBroad    MatchAccuracy = "broad"     // broad key, enough samples
	MatchBroadMin MatchAccuracy = "broad_min" // broad key, thin sample: min price
	MatchNone     MatchAccuracy = "none"      // no usable statistic
)
