package model

import "time"

// DealClass is the categorical verdict derived from the discount percentage.
type DealClass string

const (
	DealGolden       DealClass = "golden"
	DealGood         DealClass = "good"
	DealFair         DealClass = "fair"
	DealOverpriced   DealClass = "overpriced"
	DealDisqualified DealClass = "disqualified"
	DealUnrated      DealClass = "unrated"
)

// LiquidityEstimate predicts how quickly a listing is likely to sell.
type LiquidityEstimate struct {
	Score      float64 `json:"score"` // 0–100
	Label      string  `json:"label"`
	DaysToSell int     `json:"days_to_sell"`
}

// RiskBand is the coarse risk classification.
type RiskBand string

const (
	RiskLow    RiskBand = "low"
	RiskMedium RiskBand = "medium"
	RiskHigh   RiskBand = "high"
)

// RiskEstimate flags listings likely to hide problems.
type RiskEstimate struct {
	Score   float64  `json:"score"` // 0–100
	Band    RiskBand `json:"band"`
	Signals []string `json:"signals,omitempty"`
}

// Trend is the direction of a segment's median price over time.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendFlat    Trend = "flat"
	TrendUnknown Trend = ""
)

// ScoredListing is the terminal output of a scoring run: the input listing
// plus every computed field. Created once per run and never mutated; a re-run
// produces a fresh value.
type ScoredListing struct {
	Listing Listing `json:"listing"`

	Fingerprint string     `json:"fingerprint"`
	CrossRefs   []CrossRef `json:"cross_refs,omitempty"`

	Tier          MileageTier    `json:"tier"`
	EngineBucket  EngineBucket   `json:"engine_bucket,omitempty"`
	Equipment     EquipmentLevel `json:"equipment"`
	Features      []string       `json:"features,omitempty"`
	MatchAccuracy MatchAccuracy  `json:"match_accuracy"`

	BaseMedian  float64 `json:"base_median"`  // uncorrected segment statistic
	FairValue   float64 `json:"fair_value"`   // corrected value
	ExpertValue float64 `json:"expert_value"` // depreciation-curve cross-check

	Discount float64   `json:"discount"` // percent
	Class    DealClass `json:"class"`
	Score    float64   `json:"score"` // 0–100 composite deal score

	Liquidity LiquidityEstimate `json:"liquidity"`
	Risk      RiskEstimate      `json:"risk"`

	Trend        Trend    `json:"trend,omitempty"`
	Flags        []string `json:"flags,omitempty"`
	Disqualified []string `json:"disqualified_by,omitempty"`
	AIVerdict    string   `json:"ai_verdict,omitempty"`

	ScoredAt time.Time `json:"scored_at"`
}

// IsDeal reports whether the listing classified into one of the two top
// classes and was not disqualified.
func (s *ScoredListing) IsDeal() bool {
	return (s.Class == DealGolden || s.Class == DealGood) && len(s.Disqualified) == 0
}
