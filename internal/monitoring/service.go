// Package monitoring 组装患者监测视图：快照 + 状态分类 + 降采样历史 + 图表偏好
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/classifier"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/repository"
)

// ErrInvalidArgument 请求参数不合法（空参数ID、负数 limit 等）
var ErrInvalidArgument = errors.New("invalid argument")

// Config 监测服务配置
type Config struct {
	ChartPoints  int // 卡片图表的目标点数
	HistoryLimit int // BuildView 读取的历史行数上限
	DetailPoints int // 详情图表的目标点数
	StreamLimit  int // 超过该 limit（或 limit=0）时走流式降采样
	Workers      int // 并行降采样的 goroutine 数
}

// Service 监测服务
type Service struct {
	data   repository.MonitoringRepository
	prefs  repository.PreferenceRepository
	cfg    Config
	logger *zap.Logger
}

// NewService 创建监测服务
func NewService(data repository.MonitoringRepository, prefs repository.PreferenceRepository, cfg Config, logger *zap.Logger) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Service{data: data, prefs: prefs, cfg: cfg, logger: logger}
}

// BuildView 生成患者的参数视图列表，按 (category, display_name) 排序
//
// 三个读操作并发执行，任何一个失败都记录日志并按空结果继续；
// 只有降采样参数错误（编程错误）会返回 error
func (s *Service) BuildView(ctx context.Context, patientID, userID int64) ([]domain.ParameterView, error) {
	var snapshot []domain.SnapshotRow
	var history []domain.Measurement
	prefs := domain.NewChartPreferences()

	var g errgroup.Group
	g.Go(func() error {
		snapshot = s.fetchSnapshot(ctx, patientID)
		return nil
	})
	g.Go(func() error {
		rows, err := s.data.FetchHistory(ctx, patientID, s.cfg.HistoryLimit)
		if err != nil {
			s.logger.Error("Failed to fetch history, rendering without charts",
				zap.Int64("patient_id", patientID),
				zap.Error(err),
			)
			return nil
		}
		history = rows
		return nil
	})
	g.Go(func() error {
		prefs = s.fetchPreferences(ctx, userID)
		return nil
	})
	_ = g.Wait()

	grouped := groupHistory(history)

	views := make([]domain.ParameterView, len(snapshot))
	dg := new(errgroup.Group)
	dg.SetLimit(s.cfg.Workers)
	for i := range snapshot {
		i := i
		row := snapshot[i]
		views[i] = newParameterView(row, prefs)
		points := grouped[row.Reference.ParameterID]
		dg.Go(func() error {
			series, err := s.reduce(points, s.cfg.ChartPoints, row.Reference.ParameterID)
			if err != nil {
				return fmt.Errorf("downsample %s: %w", row.Reference.ParameterID, err)
			}
			views[i].History = series
			return nil
		})
	}
	if err := dg.Wait(); err != nil {
		return nil, err
	}

	SortViews(views)
	return views, nil
}

// Live 只基于快照和卡片偏好的轻量指标，不读取历史
func (s *Service) Live(ctx context.Context, patientID, userID int64) []domain.LiveMetric {
	var snapshot []domain.SnapshotRow
	prefs := domain.NewChartPreferences()

	var g errgroup.Group
	g.Go(func() error {
		snapshot = s.fetchSnapshot(ctx, patientID)
		return nil
	})
	g.Go(func() error {
		prefs = s.fetchPreferences(ctx, userID)
		return nil
	})
	_ = g.Wait()

	sortSnapshot(snapshot)
	out := make([]domain.LiveMetric, 0, len(snapshot))
	for _, row := range snapshot {
		status := classifier.Classify(row.Value, row.AlertFlag, row.Reference.Thresholds)
		card, _ := ResolveChartTypes(row.Reference, prefs)
		m := domain.LiveMetric{
			ParameterID: row.Reference.ParameterID,
			DisplayName: row.Reference.DisplayName,
			Unit:        row.Reference.Unit,
			Status:      status,
			IsCritFlag:  status == domain.StatusCritical,
			ChartType:   card,
		}
		if row.Value != nil {
			m.Value = strconv.FormatFloat(*row.Value, 'f', -1, 64)
		}
		if row.Timestamp != nil {
			m.TimeISO = row.Timestamp.UTC().Format(time.RFC3339)
		}
		out = append(out, m)
	}
	return out
}

// SavePreference 保存用户对某参数的卡片或弹窗图表类型
func (s *Service) SavePreference(ctx context.Context, userID int64, parameterID, chartType string, isModal bool) error {
	if parameterID == "" || chartType == "" {
		return fmt.Errorf("%w: parameter_id and chart_type are required", ErrInvalidArgument)
	}
	if err := s.prefs.SavePreference(ctx, userID, parameterID, chartType, isModal); err != nil {
		return err
	}
	s.logger.Debug("Chart preference saved",
		zap.Int64("user_id", userID),
		zap.String("parameter_id", parameterID),
		zap.String("chart_type", chartType),
		zap.Bool("is_modal", isModal),
	)
	return nil
}

func (s *Service) fetchSnapshot(ctx context.Context, patientID int64) []domain.SnapshotRow {
	rows, err := s.data.FetchSnapshot(ctx, patientID)
	if err != nil {
		s.logger.Error("Failed to fetch snapshot",
			zap.Int64("patient_id", patientID),
			zap.Error(err),
		)
		return nil
	}
	return rows
}

func (s *Service) fetchPreferences(ctx context.Context, userID int64) domain.ChartPreferences {
	prefs, err := s.prefs.FetchPreferences(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to fetch chart preferences, using defaults",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return domain.NewChartPreferences()
	}
	return prefs
}

func newParameterView(row domain.SnapshotRow, prefs domain.ChartPreferences) domain.ParameterView {
	ref := row.Reference
	status := classifier.Classify(row.Value, row.AlertFlag, ref.Thresholds)
	card, modal := ResolveChartTypes(ref, prefs)
	return domain.ParameterView{
		ParameterID: ref.ParameterID,
		DisplayName: ref.DisplayName,
		Category:    ref.Category,
		Unit:        ref.Unit,
		Description: ref.Description,
		Thresholds:  ref.Thresholds,
		DisplayMin:  ref.DisplayMin,
		DisplayMax:  ref.DisplayMax,
		Indicator: domain.SnapshotIndicator{
			ParameterID: ref.ParameterID,
			Value:       row.Value,
			Timestamp:   row.Timestamp,
			AlertFlag:   row.AlertFlag,
			Status:      status,
		},
		Priority:       classifier.Priority(status),
		CardChartType:  card,
		ModalChartType: modal,
		AllowedCharts:  ref.ChartAllowed(),
		History:        []domain.HistoryPoint{},
	}
}

// ResolveChartTypes 解析卡片和弹窗图表类型
//
//	card  = 用户覆盖 ?? default_chart
//	modal = 用户弹窗覆盖 ?? card
//
// 覆盖值不在允许集合中时回退到 default_chart
func ResolveChartTypes(ref domain.ParameterReference, prefs domain.ChartPreferences) (card, modal string) {
	def := ref.ChartDefault()
	card = def
	if o, ok := prefs.CardByParam[ref.ParameterID]; ok {
		if ref.AllowsChart(o) {
			card = o
		}
	}
	modal = card
	if o, ok := prefs.ModalByParam[ref.ParameterID]; ok {
		if ref.AllowsChart(o) {
			modal = o
		} else {
			modal = def
		}
	}
	return card, modal
}

// groupHistory 按参数分组，并把每组从倒序翻转为时间正序
func groupHistory(rows []domain.Measurement) map[string][]domain.HistoryPoint {
	grouped := make(map[string][]domain.HistoryPoint)
	for _, m := range rows {
		grouped[m.ParameterID] = append(grouped[m.ParameterID], domain.NewHistoryPoint(m))
	}
	for id, points := range grouped {
		reverse(points)
		grouped[id] = points
	}
	return grouped
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// SortViews 按 (category, display_name) 字节序稳定排序
func SortViews(views []domain.ParameterView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Category != views[j].Category {
			return views[i].Category < views[j].Category
		}
		return views[i].DisplayName < views[j].DisplayName
	})
}

func sortSnapshot(rows []domain.SnapshotRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Reference, rows[j].Reference
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.DisplayName < b.DisplayName
	})
}
