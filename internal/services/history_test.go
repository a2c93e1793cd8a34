package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chiller-selector/internal/models"
)

func TestHistory_NewestFirstWithoutDuplicates(t *testing.T) {
	ctx := context.Background()
	h := NewHistoryService(NewMemoryHistoryStore(), 0)
	h.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }

	list, err := h.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	for _, c := range []float64{100, 200, 300, 400, 500, 600} {
		_, err := h.Record(ctx, models.SearchRequest{CapacityTons: c, AmbientF: 105})
		require.NoError(t, err)
	}
	list, err = h.Record(ctx, models.SearchRequest{CapacityTons: 300, AmbientF: 105})
	require.NoError(t, err)

	var caps []float64
	for _, e := range list {
		caps = append(caps, e.CapacityTons)
	}
	assert.Equal(t, []float64{300, 600, 500, 400, 200}, caps)
	assert.Equal(t, "2025-03-01 09:30:00", list[0].Timestamp)

	stored, err := h.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, stored)
}

func TestHistory_TemperaturesDistinguishSearches(t *testing.T) {
	ctx := context.Background()
	h := NewHistoryService(NewMemoryHistoryStore(), 3)

	_, err := h.Record(ctx, models.SearchRequest{CapacityTons: 100, AmbientF: 105, EwtC: floatPtr(12), LwtC: floatPtr(7)})
	require.NoError(t, err)
	list, err := h.Record(ctx, models.SearchRequest{CapacityTons: 100, AmbientF: 105})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = h.Record(ctx, models.SearchRequest{CapacityTons: 100, AmbientF: 105, EwtC: floatPtr(12), LwtC: floatPtr(7)})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 12.0, *list[0].EwtC)
	assert.Nil(t, list[1].EwtC)
}
