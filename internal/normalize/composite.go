package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const decimal = `(\d+(?:\.\d+)?|\.\d+)`

var (
	dimensionsRe = regexp.MustCompile(`(?i)` + decimal + `\s*L\s*` + decimal + `\s*W\s*` + decimal + `\s*H`)
	decimalRe    = regexp.MustCompile(`^` + decimal + `$`)
)

// ParseDimensions reads "<n> L <n> W <n> H" out of a free-text cell such as
// "152.0 L 89.0 W 89.0 H (in)". All three are nil when the pattern is absent.
func ParseDimensions(text string) (length, width, height *float64) {
	m := dimensionsRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil, nil
	}

	l, errL := strconv.ParseFloat(m[1], 64)
	w, errW := strconv.ParseFloat(m[2], 64)
	h, errH := strconv.ParseFloat(m[3], 64)
	if errL != nil || errW != nil || errH != nil {
		return nil, nil, nil
	}
	return &l, &w, &h
}

// ParsePressureDrop splits "psi/ft.w.g" values like "3.4/7.7". Anything other
// than exactly two numbers yields a nil pair.
func ParsePressureDrop(text string) (psi, ftwg *float64) {
	parts := strings.Split(text, "/")
	if len(parts) != 2 {
		return nil, nil
	}

	p := parseDecimal(parts[0])
	f := parseDecimal(parts[1])
	if p == nil || f == nil {
		return nil, nil
	}
	return p, f
}

// SafeFloat converts a cell to a number. Blank, "N/A" and unparsable cells are nil.
func SafeFloat(value string) *float64 {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "N/A") {
		return nil
	}
	return parseFinite(v)
}

// SafeInt is SafeFloat truncated toward zero, so "105.0" reads as 105.
func SafeInt(value string) *int {
	f := SafeFloat(value)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

// ConvertEERToKWPerTon converts an energy efficiency ratio into kW/ton.
func ConvertEERToKWPerTon(eer float64) *float64 {
	if eer <= 0 {
		return nil
	}
	v := 3.51685 / eer
	return &v
}

// parseDecimal accepts plain unsigned decimals only, so "1e3" and hex floats
// are rejected.
func parseDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if !decimalRe.MatchString(s) {
		return nil
	}
	return parseFinite(s)
}

func parseFinite(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
