package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	minPlausibleKm = 100
	maxPlausibleKm = 900_000
)

var (
	// "najazdene: 150000", "najazdenych km 150000": the labelled form beats
	// a bare number+unit when both occur.
	labelledKmPattern = regexp.MustCompile(`najazden[^\d]*(\d{3,6})`)

	// "150000km", "150tis", "150-km", "150.tis" (text is space-stripped).
	unitKmPattern = regexp.MustCompile(`(\d{2,6})[-–.]?(km|tiskm|tis|kilometrov|kilometre)`)

	// "150.000": dot as thousands separator, collapsed before matching.
	dotSepKmPattern = regexp.MustCompile(`(\d)\.(\d{3})`)
)

// InferMileage extracts mileage from free text. Title is searched before
// description. Thousands-abbreviated values ("150tis") are expanded; values
// outside the plausible range are rejected.
func InferMileage(title, description string, existing int) int {
	if existing > 0 {
		return existing
	}
	if km := parseMileage(title); km > 0 {
		return km
	}
	return parseMileage(description)
}

func parseMileage(text string) int {
	if text == "" {
		return 0
	}
	clean := strings.ReplaceAll(Fold(text), " ", "")
	for dotSepKmPattern.MatchString(clean) {
		clean = dotSepKmPattern.ReplaceAllString(clean, "$1$2")
	}

	if m := labelledKmPattern.FindStringSubmatch(clean); m != nil {
		if km := plausibleKm(m[1], false); km > 0 {
			return km
		}
	}

	if m := unitKmPattern.FindStringSubmatch(clean); m != nil {
		thousands := strings.HasPrefix(m[2], "tis")
		if km := plausibleKm(m[1], thousands); km > 0 {
			return km
		}
	}
	return 0
}

func plausibleKm(digits string, thousands bool) int {
	val, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	if thousands && val < 1000 {
		val *= 1000
	}
	if val < minPlausibleKm || val > maxPlausibleKm {
		return 0
	}
	return val
}
