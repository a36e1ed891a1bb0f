package httpapi

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/layout"
)

// LayoutService 自定义布局服务
type LayoutService interface {
	Save(ctx context.Context, userID int64, items []domain.LayoutItem) error
	Reset(ctx context.Context, userID int64) error
	BuildWidgets(ctx context.Context, userID int64) layout.Widgets
}

// LayoutHandler 仪表盘布局 API
type LayoutHandler struct {
	svc    LayoutService
	logger *zap.Logger
}

func NewLayoutHandler(svc LayoutService, logger *zap.Logger) *LayoutHandler {
	return &LayoutHandler{svc: svc, logger: logger}
}

// GET /monitoring/api/v1/layout
func (h *LayoutHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.svc.BuildWidgets(r.Context(), uid)))
}

// POST /monitoring/api/v1/layout
// body: [{ id, x, y, w, h, visible }]
func (h *LayoutHandler) SaveLayout(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	items, err := layout.ParseLayout(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(layout.ErrInvalidLayout.Error()))
		return
	}
	if err := h.svc.Save(r.Context(), uid, items); err != nil {
		h.logger.Error("Save layout failed", zap.Int64("user_id", uid), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to save layout"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true, "count": len(items)}))
}

// DELETE /monitoring/api/v1/layout
func (h *LayoutHandler) ResetLayout(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	if err := h.svc.Reset(r.Context(), uid); err != nil {
		h.logger.Error("Reset layout failed", zap.Int64("user_id", uid), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to reset layout"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}
