package dealscore

import (
	"strings"

	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/normalize"
)

// Risk adds fixed points per signal and maps the clamped total to a band.
func (c *Classifier) Risk(l *model.Listing, fairValue float64, age int) model.RiskEstimate {
	var score float64
	var signals []string

	if !l.HasValidVIN() {
		score += c.risk.MissingVINPoints
		signals = append(signals, "missing_vin")
	}

	if fairValue > 0 && l.Price < fairValue*c.risk.CheapPriceRatio {
		score += c.risk.CheapPricePoints
		signals = append(signals, "price_far_below_market")
	}

	if c.noServiceHistory(l, age) {
		score += c.risk.NoHistoryPoints
		signals = append(signals, "low_mileage_no_history")
	}

	if l.SellerName == "" || normalize.LooksDisguised(l) {
		score += c.risk.HiddenSellerPoints
		signals = append(signals, "hidden_seller")
	}

	est := model.RiskEstimate{
		Score:   clamp(score, 0, 100),
		Signals: signals,
	}
	switch {
	case est.Score >= 60:
		est.Band = model.RiskHigh
	case est.Score >= 30:
		est.Band = model.RiskMedium
	default:
		est.Band = model.RiskLow
	}
	return est
}

// noServiceHistory flags an old car with a suspiciously low odometer and no
// mention of service records. Odometer tampering usually looks exactly like
// this.
func (c *Classifier) noServiceHistory(l *model.Listing, age int) bool {
	if age < c.risk.NoHistoryMinAge {
		return false
	}
	if l.Mileage <= 0 || l.Mileage > c.risk.NoHistoryMaxMileage {
		return false
	}
	folded := normalize.Fold(l.Text())
	for _, kw := range c.market.ServiceKeywords {
		if strings.Contains(folded, kw) {
			return false
		}
	}
	return true
}
