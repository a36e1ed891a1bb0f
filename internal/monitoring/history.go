package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/downsample"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/repository"
)

// HistoryQuery 单参数详情历史查询
type HistoryQuery struct {
	ParameterID string
	Until       *time.Time
	Limit       int // 0 表示不限
}

// History 单参数详情图表序列（时间正序，已降采样到 DetailPoints）
//
// Limit 为 0 或超过 StreamLimit 时先计数，再通过数据库游标流式降采样，
// 不把全部行读入内存；否则按普通查询读取后降采样
func (s *Service) History(ctx context.Context, patientID int64, q HistoryQuery) ([]domain.HistoryPoint, error) {
	if q.ParameterID == "" {
		return nil, fmt.Errorf("%w: parameter id is required", ErrInvalidArgument)
	}
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidArgument)
	}

	rq := repository.ParameterHistoryQuery{
		PatientID:   patientID,
		ParameterID: q.ParameterID,
		Until:       q.Until,
		Limit:       q.Limit,
	}
	if q.Limit == 0 || q.Limit > s.cfg.StreamLimit {
		return s.streamHistory(ctx, rq)
	}

	rows, err := s.data.ListParameterHistory(ctx, rq)
	if err != nil {
		s.logHistoryFailure("Failed to read parameter history", rq, err)
		return []domain.HistoryPoint{}, nil
	}
	points := make([]domain.HistoryPoint, len(rows))
	for i, m := range rows {
		points[len(rows)-1-i] = domain.NewHistoryPoint(m)
	}
	return s.reduce(points, s.cfg.DetailPoints, q.ParameterID)
}

func (s *Service) streamHistory(ctx context.Context, rq repository.ParameterHistoryQuery) ([]domain.HistoryPoint, error) {
	cursor, total, err := s.data.StreamParameterHistory(ctx, rq)
	if err != nil {
		s.logHistoryFailure("Failed to open parameter history stream", rq, err)
		return []domain.HistoryPoint{}, nil
	}
	defer cursor.Close()

	it := downsample.Map[domain.Measurement, domain.HistoryPoint](cursor, domain.NewHistoryPoint)
	points, err := s.reduceStream(it, total, s.cfg.DetailPoints, rq.ParameterID)
	if err != nil {
		if errors.Is(err, downsample.ErrInvalidThreshold) || errors.Is(err, downsample.ErrInvalidCount) {
			return nil, err
		}
		s.logHistoryFailure("Failed to stream parameter history", rq, err)
		return []domain.HistoryPoint{}, nil
	}

	s.logger.Debug("Parameter history streamed",
		zap.Int64("patient_id", rq.PatientID),
		zap.String("parameter_id", rq.ParameterID),
		zap.Int("rows", total),
		zap.Int("points", len(points)),
	)
	return points, nil
}

func (s *Service) logHistoryFailure(msg string, rq repository.ParameterHistoryQuery, err error) {
	s.logger.Error(msg,
		zap.Int64("patient_id", rq.PatientID),
		zap.String("parameter_id", rq.ParameterID),
		zap.Error(err),
	)
}
