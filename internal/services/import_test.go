package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chiller-selector/internal/models"
)

type fakeInserter struct {
	calls  [][]models.ChillerRecord
	failOn map[int]error
	nextID int64
}

func (f *fakeInserter) InsertMany(_ context.Context, records []models.ChillerRecord) ([]int64, error) {
	f.calls = append(f.calls, records)
	if err := f.failOn[len(f.calls)]; err != nil {
		return nil, err
	}
	ids := make([]int64, len(records))
	for i := range records {
		f.nextID++
		ids[i] = f.nextID
	}
	return ids, nil
}

func validRecords(n int) []models.ChillerRecord {
	out := make([]models.ChillerRecord, n)
	for i := range out {
		out[i] = chiller(fmt.Sprintf("M-%d", i+1), float64(50+i), 105, 0.6)
	}
	return out
}

func TestImport_BatchesOfFifty(t *testing.T) {
	ins := &fakeInserter{}
	svc := NewImportService(ins, 0, zap.NewNop())

	var progress []int
	res := svc.ImportWithProgress(context.Background(), validRecords(120), func(done int) {
		progress = append(progress, done)
	})

	require.Len(t, ins.calls, 3)
	assert.Len(t, ins.calls[0], 50)
	assert.Len(t, ins.calls[1], 50)
	assert.Len(t, ins.calls[2], 20)
	assert.Equal(t, []int{50, 100, 120}, progress)

	assert.Equal(t, 120, res.Imported)
	assert.Len(t, res.IDs, 120)
	assert.Empty(t, res.Errors)
	_, err := uuid.Parse(res.BatchID)
	assert.NoError(t, err)
}

func TestImport_FailedBatchDoesNotStopLaterBatches(t *testing.T) {
	ins := &fakeInserter{failOn: map[int]error{2: errors.New("UNIQUE constraint failed")}}
	svc := NewImportService(ins, 10, nil)

	res := svc.Import(context.Background(), validRecords(25))

	require.Len(t, ins.calls, 3)
	assert.Equal(t, 15, res.Imported)
	assert.Equal(t, 1, res.FailedBatches)
	assert.Equal(t, []string{"Error importing batch 2: UNIQUE constraint failed"}, res.Errors)
}

func TestImport_SkipsInvalidRecords(t *testing.T) {
	ins := &fakeInserter{}
	svc := NewImportService(ins, 2, nil)

	recs := validRecords(4)
	recs[1].Model = ""
	recs[2].EfficiencyKWPerTon = nil
	recs[3].EfficiencyKWPerTon = nil

	res := svc.Import(context.Background(), recs)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, []string{
		"Record 2 skipped: Model is required",
		"Record 3 skipped: Energy efficiency is required",
		"Record 4 skipped: Energy efficiency is required",
		"No valid records in batch 2",
	}, res.Errors)
	require.Len(t, ins.calls, 1)
}

func TestImport_Empty(t *testing.T) {
	res := NewImportService(&fakeInserter{}, 50, nil).Import(context.Background(), nil)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, []string{"No data to import"}, res.Errors)
}

func TestImport_IntoSQLite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	res := NewImportService(store, 3, nil).Import(ctx, validRecords(7))
	assert.Equal(t, 7, res.Imported)
	assert.Empty(t, res.Errors)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalChillers)
}
