package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chiller-selector/internal/models"
)

// fakeFinder filters an in-memory slice the way the store query does and
// keeps slice order.
type fakeFinder struct {
	records []models.ChillerRecord
	queries []models.ChillerQuery
	err     error
}

func (f *fakeFinder) Query(_ context.Context, q models.ChillerQuery) ([]models.ChillerRecord, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}

	var out []models.ChillerRecord
	for i, r := range f.records {
		if r.AmbientF == nil || *r.AmbientF != q.AmbientF {
			continue
		}
		if r.CapacityTons == nil || *r.CapacityTons < q.CapacityMin || *r.CapacityTons > q.CapacityMax {
			continue
		}
		if q.EwtC != nil && (r.EwtC == nil || *r.EwtC != *q.EwtC) {
			continue
		}
		if q.LwtC != nil && (r.LwtC == nil || *r.LwtC != *q.LwtC) {
			continue
		}
		r.ID = int64(i + 1)
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeFinder) DistinctAmbients(_ context.Context) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	seen := map[int]bool{}
	var out []int
	for _, r := range f.records {
		if r.AmbientF != nil && !seen[*r.AmbientF] {
			seen[*r.AmbientF] = true
			out = append(out, *r.AmbientF)
		}
	}
	sort.Ints(out)
	return out, nil
}

func capacities(list []models.RankedChiller) []float64 {
	out := make([]float64, 0, len(list))
	for _, c := range list {
		out = append(out, *c.CapacityTons)
	}
	return out
}

func TestFindBestMatch_TieOnDeltaUsesEfficiency(t *testing.T) {
	finder := &fakeFinder{records: []models.ChillerRecord{
		chiller("A-98", 98, 105, 0.60, withTemps(54, 44)),
		chiller("A-102", 102, 105, 0.55, withTemps(54, 44)),
		chiller("A-115", 115, 105, 0.58, withTemps(54, 44)),
	}}
	svc := NewSelectorService(finder, nil, zap.NewNop())

	res, err := svc.FindBestMatch(context.Background(), models.SearchRequest{
		CapacityTons: 100, AmbientF: 105, EwtC: floatPtr(54), LwtC: floatPtr(44),
	})
	require.NoError(t, err)

	require.NotNil(t, res.BestOption)
	assert.Equal(t, 102.0, *res.BestOption.CapacityTons)
	assert.Equal(t, 1, res.BestOption.Rank)
	assert.Equal(t, 2.0, res.BestOption.CapacityDelta)
	assert.Equal(t, []float64{98}, capacities(res.Alternatives))
	assert.Equal(t, []float64{102, 98}, capacities(res.AllMatches))
	assert.False(t, res.NoMatches)
	assert.Empty(t, res.Fallback)

	info := res.SearchInfo
	assert.Equal(t, 0.10, info.ToleranceUsed)
	assert.Equal(t, 2, info.CandidatesFound)
	assert.InDelta(t, 90.0, info.CapacityMin, 1e-9)
	assert.InDelta(t, 110.0, info.CapacityMax, 1e-9)
	assert.Equal(t,
		"Target capacity: 100.0 tons · Band: ±10.0% (90.0–110.0) · Ambient: 105°F · EWT/LWT: 54.0/44.0°C · Found: 2 matches",
		res.Summary)
	assert.Equal(t, []float64{102, 98}, capacities(res.TopOptions()))
}

func TestFindBestMatch_WidensTolerance(t *testing.T) {
	finder := &fakeFinder{records: []models.ChillerRecord{
		chiller("A-114", 114, 105, 0.6),
		chiller("A-130", 130, 105, 0.6),
	}}
	svc := NewSelectorService(finder, nil, nil)

	res, err := svc.FindBestMatch(context.Background(), models.SearchRequest{CapacityTons: 100, AmbientF: 105})
	require.NoError(t, err)

	require.NotNil(t, res.BestOption)
	assert.Equal(t, 114.0, *res.BestOption.CapacityTons)
	assert.Equal(t, 0.15, res.SearchInfo.ToleranceUsed)
	assert.InDelta(t, 15.0, res.SearchInfo.TolerancePercent, 1e-9)
	assert.Len(t, finder.queries, 3)
	assert.Empty(t, res.Alternatives)
}

func TestFindBestMatch_FallbackAmbients(t *testing.T) {
	finder := &fakeFinder{records: []models.ChillerRecord{
		chiller("A-100", 100, 95, 0.6, withTemps(54, 44)),
		chiller("A-101", 101, 95, 0.6, withTemps(54, 44)),
		chiller("A-300", 300, 115, 0.6, withTemps(54, 44)),
		chiller("A-100X", 100, 105, 0.6, withTemps(12, 7)),
	}}
	svc := NewSelectorService(finder, nil, nil)

	res, err := svc.FindBestMatch(context.Background(), models.SearchRequest{
		CapacityTons: 100, AmbientF: 105, EwtC: floatPtr(54), LwtC: floatPtr(44),
	})
	require.NoError(t, err)

	assert.True(t, res.NoMatches)
	assert.Nil(t, res.BestOption)
	assert.Empty(t, res.Alternatives)
	assert.Empty(t, res.AllMatches)
	assert.Equal(t, 0.20, res.SearchInfo.ToleranceUsed)
	assert.InDelta(t, 80.0, res.SearchInfo.CapacityMin, 1e-9)
	assert.InDelta(t, 120.0, res.SearchInfo.CapacityMax, 1e-9)
	assert.Equal(t, 0, res.SearchInfo.CandidatesFound)

	require.Len(t, res.Fallback, 1)
	assert.Equal(t, 95, res.Fallback[0].AmbientF)
	assert.Equal(t, 2, res.Fallback[0].Count)
	assert.Equal(t, 0.10, res.Fallback[0].ToleranceUsed)
}

func TestFindBestMatch_NoDataAnywhere(t *testing.T) {
	svc := NewSelectorService(&fakeFinder{}, nil, nil)

	res, err := svc.FindBestMatch(context.Background(), models.SearchRequest{CapacityTons: 50, AmbientF: 95})
	require.NoError(t, err)
	assert.True(t, res.NoMatches)
	assert.NotNil(t, res.Fallback)
	assert.Empty(t, res.Fallback)
}

func TestFindBestMatch_BracketingAlternatives(t *testing.T) {
	finder := &fakeFinder{records: []models.ChillerRecord{
		chiller("A-92", 92, 105, 0.50),
		chiller("A-108", 108, 105, 0.50),
		chiller("A-96", 96, 105, 0.50),
		chiller("A-100", 100, 105, 0.60),
		chiller("A-104", 104, 105, 0.50),
	}}
	svc := NewSelectorService(finder, nil, nil)

	res, err := svc.FindBestMatch(context.Background(), models.SearchRequest{CapacityTons: 100, AmbientF: 105})
	require.NoError(t, err)

	assert.Equal(t, 100.0, *res.BestOption.CapacityTons)
	assert.Equal(t, []float64{104, 96}, capacities(res.Alternatives))
	assert.Equal(t, []float64{100, 96, 104, 92, 108}, capacities(res.AllMatches))
	for i, m := range res.AllMatches {
		assert.Equal(t, i+1, m.Rank)
	}
}

func TestFindBestMatch_OnlyLargerAlternative(t *testing.T) {
	finder := &fakeFinder{records: []models.ChillerRecord{
		chiller("A-100", 100, 105, 0.6),
		chiller("A-105", 105, 105, 0.6),
		chiller("A-103", 103, 105, 0.6),
	}}
	svc := NewSelectorService(finder, nil, nil)

	res, err := svc.FindBestMatch(context.Background(), models.SearchRequest{CapacityTons: 100, AmbientF: 105})
	require.NoError(t, err)
	assert.Equal(t, []float64{103}, capacities(res.Alternatives))
}

func TestFindBestMatch_Deterministic(t *testing.T) {
	finder := &fakeFinder{records: []models.ChillerRecord{
		chiller("A", 95, 105, 0.6),
		chiller("B", 105, 105, 0.6),
		chiller("C", 95, 105, 0.6),
		chiller("D", 105, 105, 0.6),
	}}
	svc := NewSelectorService(finder, nil, nil)
	req := models.SearchRequest{CapacityTons: 100, AmbientF: 105}

	first, err := svc.FindBestMatch(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.FindBestMatch(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first.BestOption, again.BestOption)
		assert.Equal(t, first.Alternatives, again.Alternatives)
	}
	assert.Equal(t, "A", first.BestOption.Model)
	require.Len(t, first.Alternatives, 1)
	assert.Equal(t, "B", first.Alternatives[0].Model)
}

func TestRankCandidates_MissingValues(t *testing.T) {
	candidates := []models.ChillerRecord{
		chiller("no-eff", 100, 105, 0, withoutEfficiency()),
		chiller("no-flow", 100, 105, 0.6),
		chiller("small-flow", 100, 105, 0.6, withWaterflow(200)),
		chiller("big-flow", 100, 105, 0.6, withWaterflow(250)),
		chiller("warm", 100, 105, 0.5, withTemps(56, 44)),
	}
	req := models.SearchRequest{CapacityTons: 100, AmbientF: 105, EwtC: floatPtr(54), LwtC: floatPtr(44)}

	ranked := rankCandidates(candidates, req)

	var order []string
	for _, r := range ranked {
		order = append(order, r.Model)
	}
	assert.Equal(t, []string{"big-flow", "small-flow", "no-flow", "no-eff", "warm"}, order)
	assert.Equal(t, 2.0, ranked[4].TempScore)

	req.EwtC, req.LwtC = nil, nil
	ranked = rankCandidates(candidates, req)
	order = order[:0]
	for _, r := range ranked {
		order = append(order, r.Model)
	}
	assert.Equal(t, []string{"warm", "big-flow", "small-flow", "no-flow", "no-eff"}, order)
	assert.Zero(t, ranked[0].TempScore)
}

func TestFindBestMatch_Errors(t *testing.T) {
	svc := NewSelectorService(&fakeFinder{err: errors.New("disk I/O error")}, nil, nil)

	_, err := svc.FindBestMatch(context.Background(), models.SearchRequest{CapacityTons: 100, AmbientF: 105})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")

	_, err = svc.FindBestMatch(context.Background(), models.SearchRequest{CapacityTons: 0, AmbientF: 105})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFindBestMatch_CustomLevels(t *testing.T) {
	finder := &fakeFinder{records: []models.ChillerRecord{chiller("A-125", 125, 105, 0.6)}}
	svc := NewSelectorService(finder, []float64{0.05, 0.25}, nil)

	res, err := svc.FindBestMatch(context.Background(), models.SearchRequest{CapacityTons: 100, AmbientF: 105})
	require.NoError(t, err)
	assert.Equal(t, 0.25, res.SearchInfo.ToleranceUsed)
	assert.Equal(t, "A-125", res.BestOption.Model)
}

func TestSelector_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.InsertMany(ctx, []models.ChillerRecord{
		chiller("A-98", 98, 105, 0.60, withTemps(54, 44)),
		chiller("A-102", 102, 105, 0.55, withTemps(54, 44)),
		chiller("A-115", 115, 105, 0.58, withTemps(54, 44)),
		chiller("B-100", 100, 95, 0.50, withTemps(54, 44)),
	})
	require.NoError(t, err)

	svc := NewSelectorService(store, nil, nil)

	res, err := svc.FindBestMatch(ctx, models.SearchRequest{CapacityTons: 100, AmbientF: 105, EwtC: floatPtr(54), LwtC: floatPtr(44)})
	require.NoError(t, err)
	assert.Equal(t, "A-102", res.BestOption.Model)
	assert.Equal(t, []float64{98}, capacities(res.Alternatives))

	res, err = svc.FindBestMatch(ctx, models.SearchRequest{CapacityTons: 100, AmbientF: 115, EwtC: floatPtr(54), LwtC: floatPtr(44)})
	require.NoError(t, err)
	assert.True(t, res.NoMatches)
	require.Len(t, res.Fallback, 2)
	assert.Equal(t, 95, res.Fallback[0].AmbientF)
	assert.Equal(t, 105, res.Fallback[1].AmbientF)
	assert.Equal(t, 2, res.Fallback[1].Count)
}
