package models

import (
	"fmt"
	"strings"
)

// SearchRequest is a required capacity at a fixed ambient with optional
// water temperature targets.
type SearchRequest struct {
	CapacityTons float64  `json:"capacity_tons"`
	AmbientF     int      `json:"ambient_f"`
	EwtC         *float64 `json:"ewt_c"`
	LwtC         *float64 `json:"lwt_c"`
}

// RankedChiller carries ranking annotations for display. They are never persisted.
type RankedChiller struct {
	ChillerRecord
	Rank          int     `json:"rank"`
	CapacityDelta float64 `json:"capacity_delta"`
	TempScore     float64 `json:"temp_score"`
}

// SearchInfo describes how a search was satisfied.
type SearchInfo struct {
	CapacityTons     float64  `json:"capacity_tons"`
	AmbientF         int      `json:"ambient_f"`
	EwtC             *float64 `json:"ewt_c"`
	LwtC             *float64 `json:"lwt_c"`
	ToleranceUsed    float64  `json:"tolerance_used"`
	TolerancePercent float64  `json:"tolerance_percent"`
	CapacityMin      float64  `json:"capacity_min"`
	CapacityMax      float64  `json:"capacity_max"`
	CandidatesFound  int      `json:"candidates_found"`
}

// Summary renders the search parameters on one line.
func (s SearchInfo) Summary() string {
	parts := []string{
		fmt.Sprintf("Target capacity: %.1f tons", s.CapacityTons),
		fmt.Sprintf("Band: ±%.1f%% (%.1f–%.1f)", s.TolerancePercent, s.CapacityMin, s.CapacityMax),
		fmt.Sprintf("Ambient: %d°F", s.AmbientF),
	}

	switch {
	case s.EwtC != nil && s.LwtC != nil:
		parts = append(parts, fmt.Sprintf("EWT/LWT: %.1f/%.1f°C", *s.EwtC, *s.LwtC))
	case s.EwtC != nil:
		parts = append(parts, fmt.Sprintf("EWT: %.1f°C", *s.EwtC))
	case s.LwtC != nil:
		parts = append(parts, fmt.Sprintf("LWT: %.1f°C", *s.LwtC))
	}

	parts = append(parts, fmt.Sprintf("Found: %d matches", s.CandidatesFound))
	return strings.Join(parts, " · ")
}

// FallbackGroup is an alternative ambient that has candidates for the same
// capacity and water temperatures.
type FallbackGroup struct {
	AmbientF      int     `json:"ambient_f"`
	Count         int     `json:"count"`
	ToleranceUsed float64 `json:"tolerance_used"`
	CapacityMin   float64 `json:"capacity_min"`
	CapacityMax   float64 `json:"capacity_max"`
}

// SelectionResult is the answer to one search. Fallback is only set when the
// requested ambient had no candidates at any tolerance.
type SelectionResult struct {
	BestOption   *RankedChiller  `json:"best_option"`
	Alternatives []RankedChiller `json:"alternatives"`
	AllMatches   []RankedChiller `json:"all_matches"`
	SearchInfo   SearchInfo      `json:"search_info"`
	Summary      string          `json:"summary"`
	Fallback     []FallbackGroup `json:"fallback_available"`
	NoMatches    bool            `json:"no_matches"`
}

// TopOptions returns the best option followed by the alternatives.
func (r *SelectionResult) TopOptions() []RankedChiller {
	if r.BestOption == nil {
		return nil
	}
	out := make([]RankedChiller, 0, 1+len(r.Alternatives))
	out = append(out, *r.BestOption)
	return append(out, r.Alternatives...)
}

// SearchHistoryEntry is a remembered search.
type SearchHistoryEntry struct {
	CapacityTons float64  `json:"capacity"`
	AmbientF     int      `json:"ambient"`
	EwtC         *float64 `json:"ewt"`
	LwtC         *float64 `json:"lwt"`
	Timestamp    string   `json:"timestamp"`
}

// SameSearch reports whether two entries carry identical parameters.
func (e SearchHistoryEntry) SameSearch(o SearchHistoryEntry) bool {
	return e.CapacityTons == o.CapacityTons && e.AmbientF == o.AmbientF &&
		equalPtr(e.EwtC, o.EwtC) && equalPtr(e.LwtC, o.LwtC)
}

func equalPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
