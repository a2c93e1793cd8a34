package handlers

import (
	"chiller-selector/internal/models"
	"chiller-selector/internal/services"
	"encoding/json"
	"errors"
	"go.uber.org/zap"
	"net/http"
	"strings"
)

// FolderHandler manages folders, the model prefix + folder name buckets
// that imports are filed under. Folder names contain "/", so they travel in
// query strings and bodies rather than path segments.
type FolderHandler struct {
	store *services.ChillerStore
	logr  *zap.Logger
}

func NewFolderHandler(store *services.ChillerStore, logr *zap.Logger) *FolderHandler {
	return &FolderHandler{store: store, logr: logr}
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.GroupByFolder(r.Context())
	if err != nil {
		h.logr.Error("failed to group folders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve folders")
		return
	}
	if groups == nil {
		groups = []models.FolderGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    groups,
		"total":   len(groups),
	})
}

// Chillers handles GET /api/v1/folders/chillers?model_prefix=&folder_name=
func (h *FolderHandler) Chillers(w http.ResponseWriter, r *http.Request) {
	prefix, folder, ok := folderParams(w, r)
	if !ok {
		return
	}

	chillers, err := h.store.ListFolder(r.Context(), prefix, folder)
	if err != nil {
		h.logr.Error("failed to list folder", zap.String("folder", folder), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve folder")
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

// Rename handles PUT /api/v1/folders/rename
func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req models.RenameFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ModelPrefix == "" || req.OldName == "" {
		writeError(w, http.StatusBadRequest, "model_prefix and old_name are required")
		return
	}

	renamed, err := h.store.RenameFolder(r.Context(), req.ModelPrefix, req.OldName, req.NewName)
	if errors.Is(err, services.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logr.Error("failed to rename folder", zap.String("folder", req.OldName), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to rename folder")
		return
	}
	if !renamed {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}

	h.logr.Info("folder renamed",
		zap.String("model_prefix", req.ModelPrefix),
		zap.String("from", req.OldName),
		zap.String("to", strings.TrimSpace(req.NewName)),
	)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Delete handles DELETE /api/v1/folders?model_prefix=&folder_name=
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	prefix, folder, ok := folderParams(w, r)
	if !ok {
		return
	}

	n, err := h.store.DeleteFolder(r.Context(), prefix, folder)
	if err != nil {
		h.logr.Error("failed to delete folder", zap.String("folder", folder), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete folder")
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}

	h.logr.Info("folder deleted", zap.String("model_prefix", prefix), zap.String("folder", folder), zap.Int("records", n))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": n,
	})
}

func folderParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	prefix, folder := q.Get("model_prefix"), q.Get("folder_name")
	if prefix == "" || folder == "" {
		writeError(w, http.StatusBadRequest, "model_prefix and folder_name are required")
		return "", "", false
	}
	return prefix, folder, true
}
