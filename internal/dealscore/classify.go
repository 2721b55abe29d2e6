// Package dealscore converts a corrected fair value into the final verdict:
// discount, deal class, liquidity and risk. Every function here is pure.
package dealscore

import (
	"strings"

	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/normalize"
)

// Classifier holds the threshold table and keyword lists for one run.
type Classifier struct {
	deal      config.DealConfig
	liquidity config.LiquidityConfig
	risk      config.RiskConfig
	market    *config.MarketData
}

func New(deal config.DealConfig, liquidity config.LiquidityConfig, risk config.RiskConfig, market *config.MarketData) *Classifier {
	return &Classifier{deal: deal, liquidity: liquidity, risk: risk, market: market}
}

// Verdict is the classification for one listing.
type Verdict struct {
	Discount     float64
	Class        model.DealClass
	Score        float64
	Disqualified []string
}

// Discount returns the percentage the asking price sits below the fair value.
func Discount(price, fairValue float64) float64 {
	if fairValue <= 0 {
		return 0
	}
	return (fairValue - price) / fairValue * 100
}

// Classify walks the ordered threshold table from the best class down. The
// terminal mileage tier is never eligible for the top class: a discount on a
// car at end-of-life is not a bargain. A disqualifying keyword in the text
// zeroes the score and overrides the class regardless of discount.
func (c *Classifier) Classify(l *model.Listing, tier model.MileageTier, fairValue float64) Verdict {
	discount := Discount(l.Price, fairValue)

	if hits := c.disqualifyingKeywords(l); len(hits) > 0 {
		return Verdict{
			Discount:     discount,
			Class:        model.DealDisqualified,
			Score:        0,
			Disqualified: hits,
		}
	}

	for i, th := range c.deal.Thresholds {
		if discount < th.MinDiscount {
			continue
		}
		class := model.DealClass(th.Class)
		if i == 0 && tier == model.TierTerminal {
			continue
		}
		return Verdict{Discount: discount, Class: class, Score: th.Score}
	}
	return Verdict{Discount: discount, Class: model.DealOverpriced, Score: 20}
}

// disqualifyingKeywords returns every blocklist phrase found in the listing
// text, matched diacritic-insensitively.
func (c *Classifier) disqualifyingKeywords(l *model.Listing) []string {
	folded := normalize.Fold(l.Text())
	var hits []string
	for _, kw := range c.market.DisqualifyKeywords {
		if strings.Contains(folded, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
