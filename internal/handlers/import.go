package handlers

import (
	"chiller-selector/internal/config"
	"chiller-selector/internal/parser"
	"chiller-selector/internal/services"
	"encoding/json"
	"fmt"
	"go.uber.org/zap"
	"net/http"
)

// maxImportBody caps a pasted table.
const maxImportBody = 8 << 20

type ImportHandler struct {
	parser   *parser.Parser
	importer *services.ImportService
	cfg      *config.Config
	logr     *zap.Logger
}

func NewImportHandler(p *parser.Parser, importer *services.ImportService, cfg *config.Config, logr *zap.Logger) *ImportHandler {
	return &ImportHandler{parser: p, importer: importer, cfg: cfg, logr: logr}
}

// importRequest is a pasted table plus the rating point shared by its rows.
type importRequest struct {
	Text string `json:"text"`
	parser.BatchContext
}

type previewResponse struct {
	*parser.Result
	ValidCount int    `json:"valid_count"`
	FolderName string `json:"folder_name"`
	Table      string `json:"table"`
}

// Parse handles POST /api/v1/import/parse. Nothing is stored.
func (h *ImportHandler) Parse(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result := h.parser.Parse(req.Text, req.BatchContext)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": previewResponse{
			Result:     result,
			ValidCount: result.ValidCount(),
			FolderName: req.FolderName(),
			Table:      parser.FormatTable(result.Records(), result.Columns),
		},
	})
}

// Import handles POST /api/v1/import: parse, then store the valid rows.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	parsed := h.parser.Parse(req.Text, req.BatchContext)
	if len(parsed.Rows) == 0 {
		msg := parser.WarnUnparsable
		if len(parsed.Warnings) > 0 {
			msg = parsed.Warnings[0]
		}
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":  false,
			"error":    msg,
			"warnings": parsed.Warnings,
		})
		return
	}

	res := h.importer.Import(r.Context(), parsed.Records())
	h.logr.Info("chillers imported over http",
		zap.String("batch_id", res.BatchID),
		zap.String("folder", req.FolderName()),
		zap.Int("imported", res.Imported),
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  res.Imported > 0,
		"data":     res,
		"warnings": parsed.Warnings,
	})
}

func (h *ImportHandler) decode(w http.ResponseWriter, r *http.Request) (importRequest, bool) {
	var req importRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.AmbientF != nil && !h.cfg.IsRatedAmbient(*req.AmbientF) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("ambient_f must be one of %v", h.cfg.Selector.RatedAmbients))
		return req, false
	}
	return req, true
}
