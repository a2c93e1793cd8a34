package normalize

import (
	"strings"
	"unicode"
)

type prefixManufacturer struct {
	prefix       string
	manufacturer string
}

// Longest prefixes come first, so the first hit is the longest match.
var manufacturerPrefixes = []prefixManufacturer{
	{"ACHX", "Dunham Bush"},
	{"YORK", "York"},
	{"AVX", "Dunham Bush"},
	{"MCH", "McQuay"},
	{"TRA", "Trane"},
	{"CH", "Carrier"},
	{"MC", "McQuay"},
	{"RT", "Trane"},
	{"YV", "York"},
}

// ExtractModelPrefix returns the family code of a model string: the leading
// run of letters and hyphens ("ACHX-B 90S" -> "ACHX-B"). Models that start
// with a digit fall back to their first token ("120T" -> "120T").
func ExtractModelPrefix(model string) *string {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil
	}

	end := 0
	for i, r := range model {
		if !unicode.IsLetter(r) && r != '-' {
			break
		}
		end = i + len(string(r))
	}

	prefix := model[:end]
	if strings.IndexFunc(prefix, unicode.IsLetter) < 0 {
		prefix = strings.Fields(model)[0]
	}
	return &prefix
}

// ExtractManufacturer guesses the manufacturer from a model or model prefix.
func ExtractManufacturer(model string) *string {
	upper := strings.ToUpper(strings.TrimSpace(model))
	if upper == "" {
		return nil
	}

	for _, pm := range manufacturerPrefixes {
		if strings.HasPrefix(upper, pm.prefix) {
			m := pm.manufacturer
			return &m
		}
	}
	return nil
}
