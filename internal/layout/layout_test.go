package layout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

type fakeLayoutRepo struct {
	params   []domain.ParameterReference
	saved    []domain.LayoutRow
	listErr  error
	writeErr error

	replaced [][]domain.LayoutRow
	resets   int
}

func (f *fakeLayoutRepo) ListParameters(ctx context.Context) ([]domain.ParameterReference, error) {
	return f.params, f.listErr
}

func (f *fakeLayoutRepo) ListLayout(ctx context.Context, userID int64) ([]domain.LayoutRow, error) {
	return f.saved, nil
}

func (f *fakeLayoutRepo) ReplaceLayout(ctx context.Context, userID int64, rows []domain.LayoutRow) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.replaced = append(f.replaced, rows)
	return nil
}

func (f *fakeLayoutRepo) ResetLayout(ctx context.Context, userID int64) error {
	f.resets++
	return f.writeErr
}

func TestParseLayout_ClampsAndFilters(t *testing.T) {
	data := []byte(`[
		{"id": "hr", "x": 20, "y": -3, "w": 2, "h": 50},
		{"id": "spo2", "x": "4", "y": 1.9, "w": 13, "h": 4, "visible": false},
		{"id": "", "x": 0, "y": 0, "w": 4, "h": 3},
		{"x": 0, "y": 0, "w": 4, "h": 3},
		{"id": "temp", "x": "left", "y": 0, "w": 4, "h": 3},
		{"id": 7, "x": 0, "y": 0, "w": 4, "h": 3},
		"garbage",
		{"id": "rr", "x": 0, "y": 0, "w": 4}
	]`)

	items, err := ParseLayout(data)
	require.NoError(t, err)
	assert.Equal(t, []domain.LayoutItem{
		{ID: "hr", X: 11, Y: 0, W: 4, H: 10, Visible: true},
		{ID: "spo2", X: 4, Y: 1, W: 12, H: 4, Visible: false},
	}, items)
}

func TestParseLayout_EmptyAndInvalid(t *testing.T) {
	items, err := ParseLayout(nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = ParseLayout([]byte("[]"))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = ParseLayout([]byte(`{"id": "hr"}`))
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = ParseLayout([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestSave_AssignsOrderAndHiddenFlag(t *testing.T) {
	repo := &fakeLayoutRepo{}
	s := NewService(repo, zap.NewNop())

	err := s.Save(context.Background(), 3, []domain.LayoutItem{
		{ID: "hr", X: 0, Y: 0, W: 4, H: 3, Visible: true},
		{ID: "spo2", X: 4, Y: 0, W: 6, H: 5, Visible: false},
	})
	require.NoError(t, err)
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, []domain.LayoutRow{
		{ParameterID: "hr", DisplayOrder: 1, IsHidden: false, GridX: 0, GridY: 0, GridW: 4, GridH: 3},
		{ParameterID: "spo2", DisplayOrder: 2, IsHidden: true, GridX: 4, GridY: 0, GridW: 6, GridH: 5},
	}, repo.replaced[0])
}

func TestSave_EmptyIsNoop(t *testing.T) {
	repo := &fakeLayoutRepo{}
	require.NoError(t, NewService(repo, zap.NewNop()).Save(context.Background(), 3, nil))
	assert.Empty(t, repo.replaced)
}

func TestSave_Error(t *testing.T) {
	repo := &fakeLayoutRepo{writeErr: errors.New("tx aborted")}
	err := NewService(repo, zap.NewNop()).Save(context.Background(), 3, []domain.LayoutItem{{ID: "hr", W: 4, H: 3}})
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	repo := &fakeLayoutRepo{}
	require.NoError(t, NewService(repo, zap.NewNop()).Reset(context.Background(), 3))
	assert.Equal(t, 1, repo.resets)
}

func TestBuildWidgets_MergesSavedAndDefaults(t *testing.T) {
	repo := &fakeLayoutRepo{
		params: []domain.ParameterReference{
			{ParameterID: "bp", DisplayName: "Pression", Category: "Cardio"},
			{ParameterID: "hr", DisplayName: "FC", Category: "Cardio"},
			{ParameterID: "rr", DisplayName: "FR", Category: "Resp"},
			{ParameterID: "spo2", DisplayName: "SpO2", Category: "Resp"},
			{ParameterID: "temp", DisplayName: "Temp", Category: "Général"},
		},
		saved: []domain.LayoutRow{
			{ParameterID: "hr", DisplayOrder: 1, GridX: 8, GridY: 0, GridW: 2, GridH: 6},
			{ParameterID: "spo2", DisplayOrder: 2, IsHidden: true, GridX: 0, GridY: 3, GridW: 4, GridH: 3},
		},
	}
	got := NewService(repo, zap.NewNop()).BuildWidgets(context.Background(), 3)

	require.Len(t, got.Hidden, 1)
	assert.Equal(t, "spo2", got.Hidden[0].ID)

	require.Len(t, got.Widgets, 4)
	// 未保存的参数：bp(idx 0), rr(idx 2), temp(idx 4) 依次占用默认位置；相同 display_order 保持参数顺序
	assert.Equal(t, domain.Widget{ID: "bp", Name: "Pression", Category: "Cardio", X: 0, Y: 0, W: 4, H: 3, DisplayOrder: 1}, got.Widgets[0])
	assert.Equal(t, domain.Widget{ID: "hr", Name: "FC", Category: "Cardio", X: 8, Y: 0, W: 4, H: 6, DisplayOrder: 1}, got.Widgets[1])
	assert.Equal(t, domain.Widget{ID: "rr", Name: "FR", Category: "Resp", X: 4, Y: 0, W: 4, H: 3, DisplayOrder: 3}, got.Widgets[2])
	assert.Equal(t, domain.Widget{ID: "temp", Name: "Temp", Category: "Général", X: 8, Y: 0, W: 4, H: 3, DisplayOrder: 5}, got.Widgets[3])
}

func TestBuildWidgets_ListFailure(t *testing.T) {
	repo := &fakeLayoutRepo{listErr: errors.New("down")}
	got := NewService(repo, zap.NewNop()).BuildWidgets(context.Background(), 3)
	assert.Empty(t, got.Widgets)
	assert.Empty(t, got.Hidden)
}
