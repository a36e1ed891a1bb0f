// Package layout 用户自定义监测页面的网格布局
package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/repository"
)

// 网格参数（12 列）
const (
	GridColumns   = 12
	DefaultWidth  = 4
	DefaultHeight = 3
	MinWidth      = 4
	MinHeight     = 3
	MaxHeight     = 10
	WidgetsPerRow = 3
)

// ErrInvalidLayout 布局数据不是 JSON 数组
var ErrInvalidLayout = errors.New("layout data is not a valid JSON array")

// Widgets 自定义页面数据：可见组件按 display_order 排序，隐藏组件单独返回
type Widgets struct {
	Widgets []domain.Widget `json:"widgets"`
	Hidden  []domain.Widget `json:"hidden"`
}

// Service 布局服务
type Service struct {
	repo   repository.LayoutRepository
	logger *zap.Logger
}

// NewService 创建布局服务
func NewService(repo repository.LayoutRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ParseLayout 解析并裁剪前端提交的布局
// 缺少 id 或坐标不是数字的项直接丢弃；visible 缺省为 true
func ParseLayout(data []byte) ([]domain.LayoutItem, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.LayoutItem{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	items := make([]domain.LayoutItem, 0, len(raw))
	for _, r := range raw {
		obj, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := obj["id"].(string)
		if !ok || id == "" {
			continue
		}
		x, okX := number(obj["x"])
		y, okY := number(obj["y"])
		w, okW := number(obj["w"])
		h, okH := number(obj["h"])
		if !okX || !okY || !okW || !okH {
			continue
		}
		items = append(items, domain.LayoutItem{
			ID:      id,
			X:       clamp(x, 0, GridColumns-1),
			Y:       max(0, y),
			W:       clamp(w, MinWidth, GridColumns),
			H:       clamp(h, MinHeight, MaxHeight),
			Visible: visible(obj["visible"]),
		})
	}
	return items, nil
}

// Save 保存布局（整体替换）；空列表不做任何修改
func (s *Service) Save(ctx context.Context, userID int64, items []domain.LayoutItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]domain.LayoutRow, 0, len(items))
	for i, it := range items {
		rows = append(rows, domain.LayoutRow{
			ParameterID:  it.ID,
			DisplayOrder: i + 1,
			IsHidden:     !it.Visible,
			GridX:        it.X,
			GridY:        it.Y,
			GridW:        max(MinWidth, it.W),
			GridH:        max(MinHeight, it.H),
		})
	}
	if err := s.repo.ReplaceLayout(ctx, userID, rows); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	s.logger.Info("Layout saved",
		zap.Int64("user_id", userID),
		zap.Int("widgets", len(rows)),
	)
	return nil
}

// Reset 恢复默认布局
func (s *Service) Reset(ctx context.Context, userID int64) error {
	if err := s.repo.ResetLayout(ctx, userID); err != nil {
		return fmt.Errorf("reset layout: %w", err)
	}
	return nil
}

// BuildWidgets 合并全部参数和用户已保存的布局
// 没有保存过的参数按每行 3 个依次排布
func (s *Service) BuildWidgets(ctx context.Context, userID int64) Widgets {
	out := Widgets{Widgets: []domain.Widget{}, Hidden: []domain.Widget{}}

	params, err := s.repo.ListParameters(ctx)
	if err != nil {
		s.logger.Error("Failed to list parameters for layout", zap.Error(err))
		return out
	}
	saved, err := s.repo.ListLayout(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to read saved layout, using defaults",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		saved = nil
	}

	byParam := make(map[string]domain.LayoutRow, len(saved))
	for _, row := range saved {
		byParam[row.ParameterID] = row
	}

	col := 0
	for idx, p := range params {
		w := domain.Widget{
			ID:       p.ParameterID,
			Name:     p.DisplayName,
			Category: p.Category,
		}
		if row, ok := byParam[p.ParameterID]; ok {
			w.X = row.GridX
			w.Y = row.GridY
			w.W = max(MinWidth, row.GridW)
			w.H = max(MinHeight, row.GridH)
			w.IsHidden = row.IsHidden
			w.DisplayOrder = row.DisplayOrder
		} else {
			w.X = (col % WidgetsPerRow) * DefaultWidth
			w.Y = (col / WidgetsPerRow) * DefaultHeight
			w.W = DefaultWidth
			w.H = DefaultHeight
			w.DisplayOrder = idx + 1
			col++
		}

		if w.IsHidden {
			out.Hidden = append(out.Hidden, w)
		} else {
			out.Widgets = append(out.Widgets, w)
		}
	}

	sort.SliceStable(out.Widgets, func(i, j int) bool {
		return out.Widgets[i].DisplayOrder < out.Widgets[j].DisplayOrder
	})
	return out
}

// number 接受 JSON 数字或数字字符串，小数向零截断
func number(v interface{}) (int, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func visible(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return t
	case json.Number:
		n, err := t.Float64()
		return err == nil && n != 0
	case string:
		return t != "" && t != "0"
	default:
		return true
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
