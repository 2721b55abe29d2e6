package normalize

import (
	"regexp"
	"strings"

	"github.com/motorscout/deals-cli/internal/model"
)

// Marketing phrases that contain "automat" but describe unrelated features.
// Stripped before matching; a false positive here corrupts the downstream
// equipment and tier logic.
var autoFalsePositives = []string{
	"automaticka klimatizacia",
	"automaticka jazda",
	"automaticke svetla",
	"automaticke dialkove",
	"automaticke stierace",
	"aut. zabrzdeni",
	"aut. zabrzdenie",
	"automatic climate",
	"automatic lights",
	"automatic wipers",
}

var (
	automaticPattern = regexp.MustCompile(`\b(?:automat\w*|dsg|tiptronic|s-tronic|stronic|7g-tronic|9g-tronic)\b`)
	manualPattern    = regexp.MustCompile(`\b(?:manual\w*|5st\.|6st\.)`)
)

// Models sold only (or nearly only) with automatic transmission.
var automaticOnlyModels = map[string]bool{
	"X5": true, "X6": true, "X7": true, "Q7": true, "Q8": true,
	"Touareg": true, "Cayenne": true, "GLE": true, "GLS": true,
}

// InferTransmission fills the gearbox from folded text, falling back to the
// automatic-only model list.
func InferTransmission(folded, carModel string, existing model.Transmission) model.Transmission {
	if existing != model.TransmissionUnknown {
		return existing
	}

	for _, phrase := range autoFalsePositives {
		folded = strings.ReplaceAll(folded, phrase, "")
	}

	switch {
	case automaticPattern.MatchString(folded):
		return model.TransmissionAutomatic
	case manualPattern.MatchString(folded):
		return model.TransmissionManual
	case automaticOnlyModels[carModel]:
		return model.TransmissionAutomatic
	}
	return model.TransmissionUnknown
}
