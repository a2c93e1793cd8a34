package utils

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParseQueryList handles both repeated and comma-separated query params.
// Example:
//
//	?manufacturer=Trane,York   → ["Trane","York"]
//	?manufacturer=Trane&manufacturer=York  → ["Trane","York"]
func ParseQueryList(q url.Values, key string) []string {
	values := q[key]

	if len(values) == 0 {
		return nil
	}

	var cleaned []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cleaned = append(cleaned, part)
			}
		}
	}
	return cleaned
}

// ParseQueryFloat reads an optional finite number. A missing or blank value
// returns nil without error.
func ParseQueryFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &v, nil
}

// RequireQueryFloat is ParseQueryFloat for a mandatory parameter.
func RequireQueryFloat(q url.Values, key string) (float64, error) {
	v, err := ParseQueryFloat(q, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	return *v, nil
}

func RequireQueryInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}
