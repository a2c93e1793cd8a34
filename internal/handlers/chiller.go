package handlers

import (
	"chiller-selector/internal/models"
	"chiller-selector/internal/services"
	"chiller-selector/internal/utils"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"net/http"
	"net/url"
)

type ChillerHandler struct {
	store    *services.ChillerStore
	selector *services.SelectorService
	history  *services.HistoryService
	logr     *zap.Logger
}

func NewChillerHandler(store *services.ChillerStore, selector *services.SelectorService, history *services.HistoryService, logr *zap.Logger) *ChillerHandler {
	return &ChillerHandler{store: store, selector: selector, history: history, logr: logr}
}

// Search handles GET /api/v1/chillers/search?capacity=&ambient=&ewt=&lwt=
// and remembers the search in the history list.
func (h *ChillerHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseSearchRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, ok := h.findBestMatch(w, r, req)
	if !ok {
		return
	}

	if _, err := h.history.Record(ctx, req); err != nil {
		h.logr.Warn("failed to record search history", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// ExportSearch handles GET /api/v1/chillers/search/export and streams the
// best option and alternatives as a CSV comparison.
func (h *ChillerHandler) ExportSearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, ok := h.findBestMatch(w, r, req)
	if !ok {
		return
	}
	if result.BestOption == nil {
		writeError(w, http.StatusNotFound, "no matching chillers")
		return
	}

	filename := fmt.Sprintf("chillers_%gtons_%dF.csv", req.CapacityTons, req.AmbientF)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := services.WriteComparisonCSV(w, result.TopOptions()); err != nil {
		h.logr.Error("failed to write comparison csv", zap.Error(err))
	}
}

func (h *ChillerHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.List(r.Context())
	if err != nil {
		h.logr.Error("failed to load search history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load search history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    entries,
		"total":   len(entries),
	})
}

// List handles GET /api/v1/chillers?manufacturer=
func (h *ChillerHandler) List(w http.ResponseWriter, r *http.Request) {
	manufacturers := utils.ParseQueryList(r.URL.Query(), "manufacturer")

	chillers, err := h.store.List(r.Context(), manufacturers...)
	if err != nil {
		h.logr.Error("failed to list chillers", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve chillers")
		return
	}
	if chillers == nil {
		chillers = []models.ChillerRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    chillers,
		"total":   len(chillers),
	})
}

func (h *ChillerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid chiller id")
		return
	}

	rec, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, "chiller not found")
		return
	}
	if err != nil {
		h.logr.Error("failed to fetch chiller", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve chiller")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    rec,
	})
}

func (h *ChillerHandler) Ambients(w http.ResponseWriter, r *http.Request) {
	ambients, err := h.store.DistinctAmbients(r.Context())
	if err != nil {
		h.logr.Error("failed to fetch ambients", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve ambients")
		return
	}
	if ambients == nil {
		ambients = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    ambients,
	})
}

func (h *ChillerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logr.Error("failed to fetch stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

// Delete handles DELETE /api/v1/chillers/{id}
func (h *ChillerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid chiller id")
		return
	}

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logr.Error("failed to delete chiller", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete chiller")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "chiller not found")
		return
	}

	h.logr.Info("chiller deleted", zap.Int64("id", id))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": id,
	})
}

func (h *ChillerHandler) findBestMatch(w http.ResponseWriter, r *http.Request, req models.SearchRequest) (*models.SelectionResult, bool) {
	result, err := h.selector.FindBestMatch(r.Context(), req)
	if errors.Is(err, services.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if err != nil {
		h.logr.Error("chiller search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return nil, false
	}
	return result, true
}

func parseSearchRequest(q url.Values) (models.SearchRequest, error) {
	var req models.SearchRequest
	var err error

	if req.CapacityTons, err = utils.RequireQueryFloat(q, "capacity"); err != nil {
		return req, err
	}
	if req.AmbientF, err = utils.RequireQueryInt(q, "ambient"); err != nil {
		return req, err
	}
	if req.EwtC, err = utils.ParseQueryFloat(q, "ewt"); err != nil {
		return req, err
	}
	if req.LwtC, err = utils.ParseQueryFloat(q, "lwt"); err != nil {
		return req, err
	}
	return req, nil
}
