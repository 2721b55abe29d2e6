package normalize

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// brandAliases maps lowercase brand spellings to their canonical names.
var brandAliases = map[string]string{
	"vw":            "Volkswagen",
	"škoda":         "Škoda",
	"skoda":         "Škoda",
	"mercedes-benz": "Mercedes-Benz",
	"mercedes":      "Mercedes-Benz",
	"bmw":           "BMW",
	"audi":          "Audi",
	"seat":          "Seat",
	"tesla":         "Tesla",
	"hyundai":       "Hyundai",
	"kia":           "Kia",
	"ford":          "Ford",
	"opel":          "Opel",
	"peugeot":       "Peugeot",
	"renault":       "Renault",
	"citroen":       "Citroën",
	"citroën":       "Citroën",
	"toyota":        "Toyota",
	"honda":         "Honda",
	"mazda":         "Mazda",
	"nissan":        "Nissan",
	"volvo":         "Volvo",
	"fiat":          "Fiat",
	"dacia":         "Dacia",
}

var knownModels = map[string][]string{
	"Volkswagen": {"Golf", "Passat", "Tiguan", "Polo", "T-Roc", "T-Cross", "Touareg", "Arteon", "Caddy", "Transporter", "ID.3", "ID.4", "ID.5"},
	"Škoda":      {"Octavia", "Fabia", "Superb", "Kodiaq", "Karoq", "Kamiq", "Scala", "Rapid", "Enyaq"},
	"Audi":       {"A1", "A3", "A4", "A5", "A6", "A7", "A8", "Q2", "Q3", "Q4", "Q5", "Q7", "Q8", "TT", "e-tron"},
	"Mercedes-Benz": {"A-Class", "B-Class", "C-Class", "E-Class", "S-Class", "GLA", "GLB", "GLC", "GLE", "GLS", "CLA", "CLS", "EQA", "EQB", "EQC"},
	"Ford":    {"Fiesta", "Focus", "Mondeo", "Kuga", "Puma", "Mustang", "Ranger"},
	"Toyota":  {"Yaris", "Corolla", "Camry", "RAV4", "C-HR", "Highlander", "Land Cruiser", "Prius", "Aygo"},
	"Hyundai": {"i10", "i20", "i30", "i40", "Tucson", "Santa Fe", "Kona", "Ioniq"},
	"Tesla":   {"Model S", "Model 3", "Model X", "Model Y"},
	"Seat":    {"Ibiza", "Leon", "Arona", "Ateca", "Tarraco", "Alhambra"},
}

var (
	bmwSeriesPattern = regexp.MustCompile(`\b(?:rad|series)\s?(\d)\b`)
	bmwXPattern      = regexp.MustCompile(`\b(x[1-7])\b`)
	bmwIPattern      = regexp.MustCompile(`\b(i[1-8x])\b`)
	bmwZPattern      = regexp.MustCompile(`\b(z[34])\b`)

	multiWordModel = regexp.MustCompile(`(?i)^(?:model [a-z0-9]|[a-z] trieda|[a-z]-class)`)
)

var titleCaser = cases.Title(language.Und)

// CanonicalMake maps a bare brand token ("skoda", "SKODA", "vw") to its
// canonical spelling. Unrecognized values pass through unchanged.
func CanonicalMake(s string) string {
	folded := Fold(strings.TrimSpace(s))
	if folded == "" {
		return ""
	}
	if canonical, ok := brandAliases[folded]; ok {
		return canonical
	}
	for _, canonical := range brandAliases {
		if Fold(canonical) == folded {
			return canonical
		}
	}
	return s
}

// ExtractMakeModel identifies the canonical make and model from a listing
// title. Purely lexical; listings where this fails are never deduplicated
// against each other.
func ExtractMakeModel(title string) (make, carModel string) {
	folded := Fold(title)

	for alias, canonical := range brandAliases {
		foldedAlias := Fold(alias)
		if strings.HasPrefix(folded, foldedAlias+" ") || strings.Contains(folded, " "+foldedAlias+" ") {
			make = canonical
			break
		}
	}
	if make == "" {
		first := strings.ToLower(firstWord(title))
		if canonical, ok := brandAliases[first]; ok {
			make = canonical
		}
	}
	if make == "" {
		return "", ""
	}

	if make == "BMW" {
		if carModel = bmwModel(folded); carModel != "" {
			carModel = refineTrim(make, carModel, folded)
			return make, carModel
		}
	}

	// Longest known model first, so "Santa Fe" wins over "Fe".
	models := append([]string(nil), knownModels[make]...)
	sort.Slice(models, func(i, j int) bool { return len(models[i]) > len(models[j]) })
	for _, m := range models {
		if containsWord(folded, Fold(m)) {
			return make, refineTrim(make, m, folded)
		}
	}

	// Fallback: second title word, with multi-word patterns like "Model 3".
	words := strings.Fields(title)
	if len(words) >= 3 {
		two := words[1] + " " + words[2]
		if multiWordModel.MatchString(two) {
			return make, titleCaser.String(strings.ToLower(two))
		}
	}
	if len(words) >= 2 && len(words[1]) > 1 {
		return make, refineTrim(make, words[1], folded)
	}
	return make, ""
}

// bmwModel handles BMW's series/X/i/Z naming.
func bmwModel(folded string) string {
	if m := bmwSeriesPattern.FindStringSubmatch(folded); m != nil {
		return "Rad " + m[1]
	}
	if m := bmwXPattern.FindStringSubmatch(folded); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := bmwIPattern.FindStringSubmatch(folded); m != nil {
		return m[1]
	}
	if m := bmwZPattern.FindStringSubmatch(folded); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// refineTrim widens a base model to its performance trim when the title
// carries an unambiguous badge; a Golf R is not priced like a Golf.
func refineTrim(make, carModel, folded string) string {
	switch {
	case make == "Volkswagen" && carModel == "Golf":
		switch {
		case containsWord(folded, "gti"):
			return "Golf GTI"
		case containsWord(folded, "gtd"):
			return "Golf GTD"
		case containsWord(folded, "gte"):
			return "Golf GTE"
		case containsWord(folded, "r"):
			return "Golf R"
		}
	case make == "Škoda" && (carModel == "Octavia" || carModel == "Fabia" || carModel == "Kodiaq" || carModel == "Enyaq"):
		if containsWord(folded, "rs") {
			return carModel + " RS"
		}
	case make == "Seat" && carModel == "Leon":
		switch {
		case containsWord(folded, "cupra"):
			return "Leon Cupra"
		case containsWord(folded, "fr"):
			return "Leon FR"
		}
	}
	return carModel
}

func containsWord(haystack, word string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(haystack)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
