package httpapi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/selection"
)

// SelectionStore 当前患者选择
type SelectionStore interface {
	Save(ctx context.Context, userID, patientID int64) error
	Current(ctx context.Context, userID int64) (selection.Selection, error)
	Clear(ctx context.Context, userID int64) error
}

// SelectionHandler 当前患者选择 API
type SelectionHandler struct {
	store  SelectionStore
	logger *zap.Logger
}

func NewSelectionHandler(store SelectionStore, logger *zap.Logger) *SelectionHandler {
	return &SelectionHandler{store: store, logger: logger}
}

// GET /monitoring/api/v1/selection
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	sel, err := h.store.Current(r.Context(), uid)
	if err != nil {
		if !errors.Is(err, selection.ErrNoSelection) {
			h.logger.Warn("Read selection failed", zap.Int64("user_id", uid), zap.Error(err))
		}
		writeJSON(w, http.StatusOK, Fail("patient not found"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(sel))
}

// POST /monitoring/api/v1/selection
// body: { patient_id }
func (h *SelectionHandler) SaveSelection(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	var req struct {
		PatientID int64 `json:"patient_id"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.PatientID <= 0 {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if err := h.store.Save(r.Context(), uid, req.PatientID); err != nil {
		h.logger.Error("Save selection failed",
			zap.Int64("user_id", uid),
			zap.Int64("patient_id", req.PatientID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to save selection"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true, "patient_id": req.PatientID}))
}

// DELETE /monitoring/api/v1/selection
func (h *SelectionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	if err := h.store.Clear(r.Context(), uid); err != nil {
		h.logger.Error("Clear selection failed", zap.Int64("user_id", uid), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to clear selection"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}
