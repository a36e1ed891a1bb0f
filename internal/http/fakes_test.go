package httpapi

import (
	"context"
	"sync"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/layout"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/monitoring"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/selection"
)

type fakeMonitoring struct {
	views     []domain.ParameterView
	viewErr   error
	live      []domain.LiveMetric
	history   []domain.HistoryPoint
	histErr   error
	prefErr   error
	lastQuery monitoring.HistoryQuery
	lastIDs   [2]int64
	savedPref struct {
		userID      int64
		parameterID string
		chartType   string
		isModal     bool
	}
}

func (f *fakeMonitoring) BuildView(ctx context.Context, patientID, userID int64) ([]domain.ParameterView, error) {
	f.lastIDs = [2]int64{patientID, userID}
	return f.views, f.viewErr
}

func (f *fakeMonitoring) Live(ctx context.Context, patientID, userID int64) []domain.LiveMetric {
	f.lastIDs = [2]int64{patientID, userID}
	return f.live
}

func (f *fakeMonitoring) History(ctx context.Context, patientID int64, q monitoring.HistoryQuery) ([]domain.HistoryPoint, error) {
	f.lastIDs = [2]int64{patientID, 0}
	f.lastQuery = q
	return f.history, f.histErr
}

func (f *fakeMonitoring) SavePreference(ctx context.Context, userID int64, parameterID, chartType string, isModal bool) error {
	f.savedPref.userID = userID
	f.savedPref.parameterID = parameterID
	f.savedPref.chartType = chartType
	f.savedPref.isModal = isModal
	return f.prefErr
}

type fakeAlerts struct {
	items []domain.AlertItem
}

func (f *fakeAlerts) DetectAlerts(ctx context.Context, patientID int64) []domain.AlertItem {
	return f.items
}

func (f *fakeAlerts) HasAlerts(ctx context.Context, patientID int64) bool {
	return len(f.items) > 0
}

// fakeResolver 模拟 selection.Store.Resolve：显式优先并记住
type fakeResolver struct {
	mu      sync.Mutex
	current map[int64]int64
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{current: map[int64]int64{}}
}

func (f *fakeResolver) Resolve(ctx context.Context, userID int64, explicit *int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if explicit != nil {
		f.current[userID] = *explicit
		return *explicit, nil
	}
	id, ok := f.current[userID]
	if !ok {
		return 0, selection.ErrNoSelection
	}
	return id, nil
}

type fakeLayout struct {
	saved   []domain.LayoutItem
	resets  int
	widgets layout.Widgets
	err     error
}

func (f *fakeLayout) Save(ctx context.Context, userID int64, items []domain.LayoutItem) error {
	f.saved = items
	return f.err
}

func (f *fakeLayout) Reset(ctx context.Context, userID int64) error {
	f.resets++
	return f.err
}

func (f *fakeLayout) BuildWidgets(ctx context.Context, userID int64) layout.Widgets {
	return f.widgets
}
