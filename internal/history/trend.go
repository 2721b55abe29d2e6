// Package history annotates listings with the direction their segment's
// median price has been moving. Optional input; scoring works without it.
package history

import (
	"fmt"
	"sort"

	"github.com/motorscout/deals-cli/internal/model"
)

// flatBand is the relative change below which a series counts as flat.
const flatBand = 0.03

// minPoints is the shortest series worth calling a trend on.
const minPoints = 3

// Annotator resolves a trend per make/model/year from prior median
// observations.
type Annotator struct {
	series map[string][]model.PricePoint
}

// NewAnnotator groups the observations by make/model/year. Points within a
// group are sorted by observation time.
func NewAnnotator(points []model.PricePoint) *Annotator {
	series := make(map[string][]model.PricePoint)
	for _, p := range points {
		k := key(p.Make, p.Model, p.Year)
		series[k] = append(series[k], p)
	}
	for k := range series {
		sort.SliceStable(series[k], func(i, j int) bool {
			return series[k][i].ObservedAt.Before(series[k][j].ObservedAt)
		})
	}
	return &Annotator{series: series}
}

// Trend compares the newest observation against the oldest of the last three.
// Short or missing series return TrendUnknown.
func (a *Annotator) Trend(make, carModel string, year int) model.Trend {
	points := a.series[key(make, carModel, year)]
	if len(points) < minPoints {
		return model.TrendUnknown
	}

	window := points[len(points)-minPoints:]
	first := window[0].Median
	last := window[len(window)-1].Median
	if first <= 0 {
		return model.TrendUnknown
	}

	change := (last - first) / first
	switch {
	case change > flatBand:
		return model.TrendRising
	case change < -flatBand:
		return model.TrendFalling
	default:
		return model.TrendFlat
	}
}

func key(make, carModel string, year int) string {
	return fmt.Sprintf("%s|%s|%d", make, carModel, year)
}
