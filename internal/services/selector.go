package services

import (
	"chiller-selector/internal/config"
	"chiller-selector/internal/models"
	"chiller-selector/internal/observability"
	"context"
	"fmt"
	"go.uber.org/zap"
	"math"
	"sort"
	"time"
)

// ChillerFinder is the read side of the record store used by the selector.
type ChillerFinder interface {
	Query(ctx context.Context, q models.ChillerQuery) ([]models.ChillerRecord, error)
	DistinctAmbients(ctx context.Context) ([]int, error)
}

// SelectorService tries each tolerance level in order until one yields candidates.
type SelectorService struct {
	store  ChillerFinder
	levels []float64
	logr   *zap.Logger
}

func NewSelectorService(store ChillerFinder, levels []float64, logr *zap.Logger) *SelectorService {
	if len(levels) == 0 {
		levels = config.DefaultToleranceLevels
	}
	if logr == nil {
		logr = zap.NewNop()
	}
	return &SelectorService{store: store, levels: levels, logr: logr}
}

// FindBestMatch searches the requested ambient with a widening capacity band,
// ranks the candidates and picks the best unit plus the closest larger and
// smaller alternatives. With no candidates at all it lists the other
// ambients that would have matched.
func (s *SelectorService) FindBestMatch(ctx context.Context, req models.SearchRequest) (*models.SelectionResult, error) {
	start := time.Now()
	if req.CapacityTons <= 0 || math.IsNaN(req.CapacityTons) || math.IsInf(req.CapacityTons, 0) {
		return nil, fmt.Errorf("%w: capacity must be a positive number", ErrInvalidInput)
	}

	candidates, tol, err := s.widen(ctx, req, req.AmbientF)
	if err != nil {
		observability.RecordSearch(observability.OutcomeError, 0, time.Since(start))
		return nil, err
	}

	capMin, capMax := band(req.CapacityTons, tol)
	result := &models.SelectionResult{
		SearchInfo: models.SearchInfo{
			CapacityTons:     req.CapacityTons,
			AmbientF:         req.AmbientF,
			EwtC:             req.EwtC,
			LwtC:             req.LwtC,
			ToleranceUsed:    tol,
			TolerancePercent: tol * 100,
			CapacityMin:      capMin,
			CapacityMax:      capMax,
			CandidatesFound:  len(candidates),
		},
		Alternatives: []models.RankedChiller{},
		AllMatches:   []models.RankedChiller{},
	}
	result.Summary = result.SearchInfo.Summary()

	if len(candidates) == 0 {
		result.NoMatches = true
		result.Fallback, err = s.fallback(ctx, req)
		if err != nil {
			observability.RecordSearch(observability.OutcomeError, 0, time.Since(start))
			return nil, err
		}

		outcome := observability.OutcomeNone
		if len(result.Fallback) > 0 {
			outcome = observability.OutcomeFallback
		}
		observability.RecordSearch(outcome, tol, time.Since(start))
		s.logr.Info("no chillers matched",
			zap.Float64("capacity_tons", req.CapacityTons),
			zap.Int("ambient_f", req.AmbientF),
			zap.Int("fallback_ambients", len(result.Fallback)),
		)
		return result, nil
	}

	ranked := rankCandidates(candidates, req)
	best, alternatives := selectTop(ranked)
	result.BestOption = &best
	result.Alternatives = alternatives
	result.AllMatches = ranked

	observability.RecordSearch(observability.OutcomeMatched, tol, time.Since(start))
	s.logr.Debug("chiller search",
		zap.Float64("capacity_tons", req.CapacityTons),
		zap.Int("ambient_f", req.AmbientF),
		zap.Float64("tolerance", tol),
		zap.Int("candidates", len(candidates)),
	)
	return result, nil
}

// widen walks the tolerance levels at one ambient. With no candidates the
// last level is reported.
func (s *SelectorService) widen(ctx context.Context, req models.SearchRequest, ambient int) ([]models.ChillerRecord, float64, error) {
	for _, tol := range s.levels {
		capMin, capMax := band(req.CapacityTons, tol)
		candidates, err := s.store.Query(ctx, models.ChillerQuery{
			AmbientF:    ambient,
			CapacityMin: capMin,
			CapacityMax: capMax,
			EwtC:        req.EwtC,
			LwtC:        req.LwtC,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("search ambient %d at ±%.1f%%: %w", ambient, tol*100, err)
		}
		if len(candidates) > 0 {
			return candidates, tol, nil
		}
	}
	return nil, s.levels[len(s.levels)-1], nil
}

func (s *SelectorService) fallback(ctx context.Context, req models.SearchRequest) ([]models.FallbackGroup, error) {
	ambients, err := s.store.DistinctAmbients(ctx)
	if err != nil {
		return nil, fmt.Errorf("fallback ambients: %w", err)
	}

	groups := []models.FallbackGroup{}
	for _, ambient := range ambients {
		if ambient == req.AmbientF {
			continue
		}
		candidates, tol, err := s.widen(ctx, req, ambient)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			continue
		}
		capMin, capMax := band(req.CapacityTons, tol)
		groups = append(groups, models.FallbackGroup{
			AmbientF:      ambient,
			Count:         len(candidates),
			ToleranceUsed: tol,
			CapacityMin:   capMin,
			CapacityMax:   capMax,
		})
	}
	return groups, nil
}

type rankKey struct {
	delta      float64
	tempScore  float64
	efficiency float64
	waterflow  float64
}

func (a rankKey) less(b rankKey) bool {
	if a.delta != b.delta {
		return a.delta < b.delta
	}
	if a.tempScore != b.tempScore {
		return a.tempScore < b.tempScore
	}
	if a.efficiency != b.efficiency {
		return a.efficiency < b.efficiency
	}
	return a.waterflow < b.waterflow
}

// rankCandidates orders by capacity distance, water temperature distance,
// efficiency (missing last) and then larger waterflow first. Equal keys
// keep store order.
func rankCandidates(candidates []models.ChillerRecord, req models.SearchRequest) []models.RankedChiller {
	ranked := make([]models.RankedChiller, len(candidates))
	keys := make([]rankKey, len(candidates))
	for i, c := range candidates {
		k := rankKey{
			delta:      math.Abs(valueOr(c.CapacityTons, 0) - req.CapacityTons),
			tempScore:  tempDeviation(c.EwtC, req.EwtC) + tempDeviation(c.LwtC, req.LwtC),
			efficiency: valueOr(c.EfficiencyKWPerTon, math.Inf(1)),
			waterflow:  -valueOr(c.WaterflowUSGPM, 0),
		}
		keys[i] = k
		ranked[i] = models.RankedChiller{ChillerRecord: c, CapacityDelta: k.delta, TempScore: k.tempScore}
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return keys[order[i]].less(keys[order[j]])
	})

	out := make([]models.RankedChiller, len(order))
	for pos, idx := range order {
		out[pos] = ranked[idx]
		out[pos].Rank = pos + 1
	}
	return out
}

// selectTop returns the best candidate and, in this order, the closest
// larger and closest smaller unit among the rest.
func selectTop(ranked []models.RankedChiller) (models.RankedChiller, []models.RankedChiller) {
	best := ranked[0]
	alternatives := []models.RankedChiller{}
	if best.CapacityTons == nil {
		return best, alternatives
	}
	bestCap := *best.CapacityTons

	above, below := -1, -1
	for i := 1; i < len(ranked); i++ {
		c := ranked[i].CapacityTons
		if c == nil {
			continue
		}
		switch {
		case *c > bestCap && (above < 0 || *c < *ranked[above].CapacityTons):
			above = i
		case *c < bestCap && (below < 0 || *c > *ranked[below].CapacityTons):
			below = i
		}
	}

	if above >= 0 {
		alternatives = append(alternatives, ranked[above])
	}
	if below >= 0 {
		alternatives = append(alternatives, ranked[below])
	}
	return best, alternatives
}

func band(capacity, tol float64) (float64, float64) {
	return capacity * (1 - tol), capacity * (1 + tol)
}

func tempDeviation(actual, target *float64) float64 {
	if actual == nil || target == nil {
		return 0
	}
	return math.Abs(*actual - *target)
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
