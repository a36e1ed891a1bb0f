package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	patientsPrefix  = "/monitoring/api/v1/patients/"
	preferencesPath = "/monitoring/api/v1/preferences/chart"
	layoutPath      = "/monitoring/api/v1/layout"
	selectionPath   = "/monitoring/api/v1/selection"
)

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	WithRequestLogging(r.mux, r.logger).ServeHTTP(w, req)
}

// RegisterMonitoringRoutes 注册患者相关路由
// {patientID} 为数字时作为显式选择，为 current 时使用用户已保存的选择
func (r *Router) RegisterMonitoringRoutes(h *MonitoringHandler) {
	r.Handle(patientsPrefix, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, patientsPrefix)
		patient, action, ok := strings.Cut(rest, "/")
		if !ok || patient == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch action {
		case "view":
			h.GetView(w, req, patient)
		case "live":
			h.GetLive(w, req, patient)
		case "alerts":
			h.GetAlerts(w, req, patient)
		case "alerts/exists":
			h.GetAlertsExist(w, req, patient)
		case "history":
			h.GetHistory(w, req, patient)
		case "history/export":
			h.ExportHistory(w, req, patient)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	r.Handle(preferencesPath, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.SaveChartPreference(w, req)
	})
}

// RegisterLayoutRoutes 注册自定义布局路由
func (r *Router) RegisterLayoutRoutes(h *LayoutHandler) {
	r.Handle(layoutPath, func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.GetLayout(w, req)
		case http.MethodPost:
			h.SaveLayout(w, req)
		case http.MethodDelete:
			h.ResetLayout(w, req)
		default:
			methodNotAllowed(w)
		}
	})
}

// RegisterSelectionRoutes 注册当前患者选择路由
func (r *Router) RegisterSelectionRoutes(h *SelectionHandler) {
	r.Handle(selectionPath, func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.GetSelection(w, req)
		case http.MethodPost:
			h.SaveSelection(w, req)
		case http.MethodDelete:
			h.ClearSelection(w, req)
		default:
			methodNotAllowed(w)
		}
	})
}
