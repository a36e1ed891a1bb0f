package monitoring

import (
	"context"
	"sync"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/repository"
)

// fakeData 模拟 MonitoringRepository
type fakeData struct {
	mu sync.Mutex

	snapshot    []domain.SnapshotRow
	snapshotErr error
	history     []domain.Measurement // 倒序
	historyErr  error

	paramHistory []domain.Measurement // 倒序
	listErr      error
	streamErr    error
	cursorErr    error

	calls        []string
	historyLimit int
	lastQuery    repository.ParameterHistoryQuery
}

func (f *fakeData) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeData) FetchSnapshot(ctx context.Context, patientID int64) ([]domain.SnapshotRow, error) {
	f.record("snapshot")
	return f.snapshot, f.snapshotErr
}

func (f *fakeData) FetchHistory(ctx context.Context, patientID int64, limit int) ([]domain.Measurement, error) {
	f.record("history")
	f.mu.Lock()
	f.historyLimit = limit
	f.mu.Unlock()
	return f.history, f.historyErr
}

func (f *fakeData) ListParameterHistory(ctx context.Context, q repository.ParameterHistoryQuery) ([]domain.Measurement, error) {
	f.record("list")
	f.lastQuery = q
	return f.paramHistory, f.listErr
}

func (f *fakeData) StreamParameterHistory(ctx context.Context, q repository.ParameterHistoryQuery) (repository.MeasurementStream, int, error) {
	f.record("stream")
	f.lastQuery = q
	if f.streamErr != nil {
		return nil, 0, f.streamErr
	}
	// 游标按正序返回
	asc := make([]domain.Measurement, len(f.paramHistory))
	for i, m := range f.paramHistory {
		asc[len(asc)-1-i] = m
	}
	return &fakeStream{items: asc, pos: -1, err: f.cursorErr}, len(asc), nil
}

type fakeStream struct {
	items  []domain.Measurement
	pos    int
	err    error
	closed bool
}

func (s *fakeStream) Next() bool {
	if s.pos+1 >= len(s.items) {
		return false
	}
	s.pos++
	return true
}

func (s *fakeStream) Value() domain.Measurement { return s.items[s.pos] }
func (s *fakeStream) Err() error                { return s.err }
func (s *fakeStream) Close() error              { s.closed = true; return nil }

// fakePrefs 模拟 PreferenceRepository
type fakePrefs struct {
	prefs    domain.ChartPreferences
	fetchErr error
	saveErr  error
	saved    []savedPref
}

type savedPref struct {
	userID      int64
	parameterID string
	chartType   string
	isModal     bool
}

func (f *fakePrefs) FetchPreferences(ctx context.Context, userID int64) (domain.ChartPreferences, error) {
	if f.fetchErr != nil {
		return domain.ChartPreferences{}, f.fetchErr
	}
	if f.prefs.CardByParam == nil {
		return domain.NewChartPreferences(), nil
	}
	return f.prefs, nil
}

func (f *fakePrefs) SavePreference(ctx context.Context, userID int64, parameterID, chartType string, isModal bool) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, savedPref{userID, parameterID, chartType, isModal})
	return nil
}
