package normalize

import (
	"regexp"

	"github.com/motorscout/deals-cli/internal/model"
)

var (
	awdPattern = regexp.MustCompile(`\b(?:4x4|4wd|awd|quattro|4motion|x-?drive|allgrip)\b`)
	rwdPattern = regexp.MustCompile(`\b(?:zadny pohon|zadny nahon|rwd)\b`)

	// Models sold predominantly with all-wheel drive.
	awdModelPattern = regexp.MustCompile(`\b(?:x5|x6|x7|q7|q8|touareg|gle|gls|cayenne)\b`)
)

// InferDrivetrain fills the drive type from folded text: AWD keywords beat
// RWD keywords, and front-wheel is the default. AWD-dominant models override
// the front-wheel default.
func InferDrivetrain(folded string, existing model.Drivetrain) model.Drivetrain {
	if existing != model.DriveUnknown && existing != model.DriveFWD {
		return existing
	}

	drive := existing
	switch {
	case awdPattern.MatchString(folded):
		drive = model.DriveAWD
	case rwdPattern.MatchString(folded):
		drive = model.DriveRWD
	case drive == model.DriveUnknown:
		drive = model.DriveFWD
	}

	if drive == model.DriveFWD && awdModelPattern.MatchString(folded) {
		drive = model.DriveAWD
	}
	return drive
}
