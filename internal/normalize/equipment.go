package normalize

import (
	"sort"
	"strings"

	"github.com/motorscout/deals-cli/internal/model"
)

// equipmentKeywords maps a feature label to the folded text fragments that
// indicate it. Scored as one point per feature present.
var equipmentKeywords = map[string][]string{
	"led_xenon":  {"led", "xenon", "bixenon", "matrix", "laser"},
	"navigation": {"navigacia", "navi", "gps"},
	"leather":    {"koza", "leather", "alcantara"},
	"panorama":   {"panorama", "stresne okno"},
	"awd":        {"4x4", "4wd", "awd", "quattro", "4motion", "xdrive"},
	"towbar":     {"tazne", "hak"},
	"webasto":    {"webasto", "nezavisle kurenie"},
	"acc":        {"acc", "adaptivny tempomat", "distronic"},
	"camera":     {"kamera", "camera", "360"},
}

// ExtractEquipment returns the feature labels found in folded text and the
// coarse equipment level: 5+ features is full, 2+ medium, else basic.
func ExtractEquipment(folded string) ([]string, model.EquipmentLevel) {
	var features []string
	for label, fragments := range equipmentKeywords {
		for _, f := range fragments {
			if strings.Contains(folded, f) {
				features = append(features, label)
				break
			}
		}
	}
	sort.Strings(features)

	level := model.EquipBasic
	switch {
	case len(features) >= 5:
		level = model.EquipFull
	case len(features) >= 2:
		level = model.EquipMedium
	}
	return features, level
}

// EngineBucket buckets power output for the specific segment key.
func EngineBucket(powerKW int) model.EngineBucket {
	switch {
	case powerKW <= 0:
		return model.EngineUnknown
	case powerKW > 200:
		return model.EngineExtreme
	case powerKW > 150:
		return model.EngineHigh
	case powerKW > 110:
		return model.EngineMidHigh
	case powerKW > 80:
		return model.EngineMid
	default:
		return model.EngineBase
	}
}
