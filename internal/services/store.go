package services

import (
	"chiller-selector/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/uptrace/bun"
	"strings"
)

var (
	ErrNotFound     = errors.New("chiller not found")
	ErrInvalidInput = errors.New("invalid input")
)

type ChillerStore struct {
	db *bun.DB
}

func NewChillerStore(db *bun.DB) *ChillerStore {
	return &ChillerStore{db: db}
}

// Migrate creates the chillers table and its lookup indexes when missing.
func (s *ChillerStore) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*models.ChillerRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create chillers table: %w", err)
	}

	indexes := map[string][]string{
		"idx_chillers_rating":       {"ambient_f", "capacity_tons"},
		"idx_chillers_folder":       {"model_prefix", "folder_name"},
		"idx_chillers_manufacturer": {"manufacturer"},
	}
	for name, columns := range indexes {
		_, err := s.db.NewCreateIndex().
			Model((*models.ChillerRecord)(nil)).
			Index(name).
			Column(columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return nil
}

// InsertMany stores records in one statement and returns their new ids in
// input order.
func (s *ChillerStore) InsertMany(ctx context.Context, records []models.ChillerRecord) ([]int64, error) {
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]models.ChillerRecord, len(records))
	copy(rows, records)
	for i := range rows {
		rows[i].ID = 0
	}

	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert chillers: %w", err)
	}

	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	return ids, nil
}

// Query returns records at one rating point inside a capacity band, oldest first.
func (s *ChillerStore) Query(ctx context.Context, q models.ChillerQuery) ([]models.ChillerRecord, error) {
	var out []models.ChillerRecord
	sel := s.db.NewSelect().
		Model(&out).
		Where("ambient_f = ?", q.AmbientF).
		Where("capacity_tons BETWEEN ? AND ?", q.CapacityMin, q.CapacityMax)
	if q.EwtC != nil {
		sel = sel.Where("ewt_c = ?", *q.EwtC)
	}
	if q.LwtC != nil {
		sel = sel.Where("lwt_c = ?", *q.LwtC)
	}

	if err := sel.Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("query chillers: %w", err)
	}
	return out, nil
}

func (s *ChillerStore) DistinctAmbients(ctx context.Context) ([]int, error) {
	var ambients []int
	err := s.db.NewSelect().
		Model((*models.ChillerRecord)(nil)).
		ColumnExpr("DISTINCT ambient_f").
		Where("ambient_f IS NOT NULL").
		Order("ambient_f ASC").
		Scan(ctx, &ambients)
	if err != nil {
		return nil, fmt.Errorf("distinct ambients: %w", err)
	}
	return ambients, nil
}

func (s *ChillerStore) GetByID(ctx context.Context, id int64) (*models.ChillerRecord, error) {
	rec := new(models.ChillerRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chiller %d: %w", id, err)
	}
	return rec, nil
}

// List returns the catalog ordered by model, or the records of the given
// manufacturers ordered by folder and model. Blank names are ignored.
func (s *ChillerStore) List(ctx context.Context, manufacturers ...string) ([]models.ChillerRecord, error) {
	var names []string
	for _, m := range manufacturers {
		if m = strings.TrimSpace(m); m != "" {
			names = append(names, m)
		}
	}

	var out []models.ChillerRecord
	sel := s.db.NewSelect().Model(&out)
	if len(names) > 0 {
		sel = sel.Where("manufacturer IN (?)", bun.In(names)).Order("folder_name ASC", "model ASC", "id ASC")
	} else {
		sel = sel.Order("model ASC", "id ASC")
	}

	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list chillers: %w", err)
	}
	return out, nil
}

func (s *ChillerStore) ListFolder(ctx context.Context, modelPrefix, folderName string) ([]models.ChillerRecord, error) {
	var out []models.ChillerRecord
	err := s.db.NewSelect().
		Model(&out).
		Where("model_prefix = ?", modelPrefix).
		Where("folder_name = ?", folderName).
		Order("model ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folder: %w", err)
	}
	return out, nil
}

func (s *ChillerStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*models.ChillerRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete chiller %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RenameFolder relabels every record of one prefix in one folder. It reports
// whether anything matched.
func (s *ChillerStore) RenameFolder(ctx context.Context, modelPrefix, oldName, newName string) (bool, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return false, fmt.Errorf("%w: folder name is required", ErrInvalidInput)
	}

	res, err := s.db.NewUpdate().
		Model((*models.ChillerRecord)(nil)).
		Set("folder_name = ?", newName).
		Where("model_prefix = ?", modelPrefix).
		Where("folder_name = ?", oldName).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("rename folder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteFolder removes every record of one prefix in one folder.
func (s *ChillerStore) DeleteFolder(ctx context.Context, modelPrefix, folderName string) (int, error) {
	res, err := s.db.NewDelete().
		Model((*models.ChillerRecord)(nil)).
		Where("model_prefix = ?", modelPrefix).
		Where("folder_name = ?", folderName).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete folder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// GroupByFolder summarises the catalog per model prefix and folder. Records
// without a prefix or folder are left out.
func (s *ChillerStore) GroupByFolder(ctx context.Context) ([]models.FolderGroup, error) {
	var rows []models.ChillerRecord
	err := s.db.NewSelect().
		Model(&rows).
		Column("id", "model_prefix", "folder_name", "manufacturer", "model", "ambient_f", "ewt_c", "lwt_c").
		Where("model_prefix IS NOT NULL").
		Where("folder_name IS NOT NULL").
		Order("model_prefix ASC", "folder_name ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("group folders: %w", err)
	}

	var groups []models.FolderGroup
	for _, r := range rows {
		if len(groups) == 0 || groups[len(groups)-1].ModelPrefix != *r.ModelPrefix {
			groups = append(groups, models.FolderGroup{ModelPrefix: *r.ModelPrefix})
		}
		g := &groups[len(groups)-1]
		if g.Manufacturer == nil {
			g.Manufacturer = r.Manufacturer
		}

		if len(g.Folders) == 0 || g.Folders[len(g.Folders)-1].FolderName != *r.FolderName {
			g.Folders = append(g.Folders, models.FolderSummary{FolderName: *r.FolderName})
		}
		f := &g.Folders[len(g.Folders)-1]
		f.Count++
		if !containsString(f.Models, r.Model) {
			f.Models = append(f.Models, r.Model)
		}
		f.AmbientF = minInt(f.AmbientF, r.AmbientF)
		f.EwtC = minFloat(f.EwtC, r.EwtC)
		f.LwtC = minFloat(f.LwtC, r.LwtC)
	}
	return groups, nil
}

func (s *ChillerStore) Stats(ctx context.Context) (*models.StoreStats, error) {
	total, err := s.db.NewSelect().Model((*models.ChillerRecord)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chillers: %w", err)
	}

	stats := &models.StoreStats{TotalChillers: total}
	err = s.db.NewSelect().
		Model((*models.ChillerRecord)(nil)).
		ColumnExpr("COUNT(DISTINCT manufacturer)").
		Scan(ctx, &stats.Manufacturers)
	if err != nil {
		return nil, fmt.Errorf("count manufacturers: %w", err)
	}
	err = s.db.NewSelect().
		Model((*models.ChillerRecord)(nil)).
		ColumnExpr("COUNT(DISTINCT ambient_f)").
		Scan(ctx, &stats.Ambients)
	if err != nil {
		return nil, fmt.Errorf("count ambients: %w", err)
	}
	return stats, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func minInt(cur, v *int) *int {
	if v == nil || (cur != nil && *cur <= *v) {
		return cur
	}
	n := *v
	return &n
}

func minFloat(cur, v *float64) *float64 {
	if v == nil || (cur != nil && *cur <= *v) {
		return cur
	}
	n := *v
	return &n
}
