package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/alert"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/monitoring"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/repository"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/selection"
)

const currentPatient = "current"

// MonitoringService 监测编排服务
type MonitoringService interface {
	BuildView(ctx context.Context, patientID, userID int64) ([]domain.ParameterView, error)
	Live(ctx context.Context, patientID, userID int64) []domain.LiveMetric
	History(ctx context.Context, patientID int64, q monitoring.HistoryQuery) ([]domain.HistoryPoint, error)
	SavePreference(ctx context.Context, userID int64, parameterID, chartType string, isModal bool) error
}

// AlertDetector 告警检测
type AlertDetector interface {
	DetectAlerts(ctx context.Context, patientID int64) []domain.AlertItem
	HasAlerts(ctx context.Context, patientID int64) bool
}

// PatientResolver 确定请求对应的患者
type PatientResolver interface {
	Resolve(ctx context.Context, userID int64, explicit *int64) (int64, error)
}

// MonitoringHandler 患者监测 API
type MonitoringHandler struct {
	svc          MonitoringService
	alerts       AlertDetector
	patients     PatientResolver
	defaultLimit int
	logger       *zap.Logger
}

func NewMonitoringHandler(svc MonitoringService, alerts AlertDetector, patients PatientResolver, defaultLimit int, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		svc:          svc,
		alerts:       alerts,
		patients:     patients,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// resolve 解析用户和患者；失败时已经写出响应
func (h *MonitoringHandler) resolve(w http.ResponseWriter, r *http.Request, patient string) (patientID, uid int64, ok bool) {
	uid, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return 0, 0, false
	}

	var explicit *int64
	if patient != currentPatient {
		id, err := strconv.ParseInt(patient, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, Fail("invalid patient id"))
			return 0, 0, false
		}
		explicit = &id
	}

	patientID, err = h.patients.Resolve(r.Context(), uid, explicit)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("patient not found"))
		return 0, 0, false
	}
	return patientID, uid, true
}

// GET /monitoring/api/v1/patients/{patientID}/view
func (h *MonitoringHandler) GetView(w http.ResponseWriter, r *http.Request, patient string) {
	patientID, uid, ok := h.resolve(w, r, patient)
	if !ok {
		return
	}
	views, err := h.svc.BuildView(r.Context(), patientID, uid)
	if err != nil {
		h.logger.Error("BuildView failed",
			zap.Int64("patient_id", patientID),
			zap.Int64("user_id", uid),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to build monitoring view"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(views))
}

// GET /monitoring/api/v1/patients/{patientID}/live
func (h *MonitoringHandler) GetLive(w http.ResponseWriter, r *http.Request, patient string) {
	patientID, uid, ok := h.resolve(w, r, patient)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.svc.Live(r.Context(), patientID, uid)))
}

// GET /monitoring/api/v1/patients/{patientID}/alerts
func (h *MonitoringHandler) GetAlerts(w http.ResponseWriter, r *http.Request, patient string) {
	patientID, _, ok := h.resolve(w, r, patient)
	if !ok {
		return
	}
	items := h.alerts.DetectAlerts(r.Context(), patientID)
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"alerts":   items,
		"messages": alert.BuildAlertMessages(items),
	}))
}

// GET /monitoring/api/v1/patients/{patientID}/alerts/exists
func (h *MonitoringHandler) GetAlertsExist(w http.ResponseWriter, r *http.Request, patient string) {
	patientID, _, ok := h.resolve(w, r, patient)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"has_alerts": h.alerts.HasAlerts(r.Context(), patientID),
	}))
}

// GET /monitoring/api/v1/patients/{patientID}/history?param=&date=&limit=
func (h *MonitoringHandler) GetHistory(w http.ResponseWriter, r *http.Request, patient string) {
	patientID, q, ok := h.historyRequest(w, r, patient)
	if !ok {
		return
	}
	points, err := h.svc.History(r.Context(), patientID, q)
	if err != nil {
		h.writeHistoryError(w, patientID, q, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(points))
}

func (h *MonitoringHandler) historyRequest(w http.ResponseWriter, r *http.Request, patient string) (int64, monitoring.HistoryQuery, bool) {
	patientID, _, ok := h.resolve(w, r, patient)
	if !ok {
		return 0, monitoring.HistoryQuery{}, false
	}
	query := r.URL.Query()
	q := monitoring.HistoryQuery{
		ParameterID: query.Get("param"),
		Until:       parseUntil(query.Get("date")),
		Limit:       parseInt(query.Get("limit"), h.defaultLimit),
	}
	if q.ParameterID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("param is required"))
		return 0, monitoring.HistoryQuery{}, false
	}
	if q.Limit < 0 {
		q.Limit = h.defaultLimit
	}
	return patientID, q, true
}

func (h *MonitoringHandler) writeHistoryError(w http.ResponseWriter, patientID int64, q monitoring.HistoryQuery, err error) {
	h.logger.Error("History failed",
		zap.Int64("patient_id", patientID),
		zap.String("parameter_id", q.ParameterID),
		zap.Error(err),
	)
	if errors.Is(err, monitoring.ErrInvalidArgument) {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Fail("failed to load history"))
}

// POST /monitoring/api/v1/preferences/chart
// body: { parameter_id, chart_type, is_modal }
func (h *MonitoringHandler) SaveChartPreference(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	var req struct {
		ParameterID string `json:"parameter_id"`
		ChartType   string `json:"chart_type"`
		IsModal     bool   `json:"is_modal"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	err = h.svc.SavePreference(r.Context(), uid, req.ParameterID, req.ChartType, req.IsModal)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
	case errors.Is(err, monitoring.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	case errors.Is(err, repository.ErrUnknownParameter):
		writeJSON(w, http.StatusOK, Fail("unknown parameter"))
	default:
		h.logger.Error("SavePreference failed",
			zap.Int64("user_id", uid),
			zap.String("parameter_id", req.ParameterID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to save preference"))
	}
}

var _ PatientResolver = (*selection.Store)(nil)
