package services

import (
	"chiller-selector/internal/models"
	"chiller-selector/internal/observability"
	"context"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"strings"
)

const DefaultImportBatchSize = 50

// ChillerInserter is the write side of the record store used by bulk import.
type ChillerInserter interface {
	InsertMany(ctx context.Context, records []models.ChillerRecord) ([]int64, error)
}

// ImportResult reports one bulk import. Errors are human-readable lines;
// a failed batch does not undo batches stored before it.
type ImportResult struct {
	BatchID       string   `json:"batch_id"`
	Imported      int      `json:"imported"`
	Skipped       int      `json:"skipped"`
	FailedBatches int      `json:"failed_batches"`
	IDs           []int64  `json:"ids"`
	Errors        []string `json:"errors"`
}

type ImportService struct {
	store     ChillerInserter
	batchSize int
	logr      *zap.Logger
}

func NewImportService(store ChillerInserter, batchSize int, logr *zap.Logger) *ImportService {
	if batchSize <= 0 {
		batchSize = DefaultImportBatchSize
	}
	if logr == nil {
		logr = zap.NewNop()
	}
	return &ImportService{store: store, batchSize: batchSize, logr: logr}
}

// Import stores records in fixed-size batches.
func (s *ImportService) Import(ctx context.Context, records []models.ChillerRecord) *ImportResult {
	return s.ImportWithProgress(ctx, records, nil)
}

// ImportWithProgress is Import with a callback after each batch, given the
// number of input records handled so far.
func (s *ImportService) ImportWithProgress(ctx context.Context, records []models.ChillerRecord, progress func(done int)) *ImportResult {
	res := &ImportResult{BatchID: uuid.NewString(), IDs: []int64{}, Errors: []string{}}
	if len(records) == 0 {
		res.Errors = append(res.Errors, "No data to import")
		return res
	}

	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))
		batchNo := start/s.batchSize + 1

		var batch []models.ChillerRecord
		for i := start; i < end; i++ {
			if missing := records[i].MissingRequired(); len(missing) > 0 {
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("Record %d skipped: %s", i+1, strings.Join(missing, "; ")))
				continue
			}
			batch = append(batch, records[i])
		}

		if len(batch) == 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("No valid records in batch %d", batchNo))
		} else if ids, err := s.store.InsertMany(ctx, batch); err != nil {
			res.FailedBatches++
			res.Errors = append(res.Errors, fmt.Sprintf("Error importing batch %d: %v", batchNo, err))
			s.logr.Error("import batch failed",
				zap.String("batch_id", res.BatchID),
				zap.Int("batch", batchNo),
				zap.Int("records", len(batch)),
				zap.Error(err),
			)
		} else {
			res.Imported += len(ids)
			res.IDs = append(res.IDs, ids...)
		}

		if progress != nil {
			progress(end)
		}
	}

	failed := len(records) - res.Imported - res.Skipped
	observability.RecordImport(res.Imported, res.Skipped, failed)
	s.logr.Info("import finished",
		zap.String("batch_id", res.BatchID),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed_batches", res.FailedBatches),
	)
	return res
}
