package monitoring

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/downsample"
)

// pointValue 历史点的 y 值，无法解析时按 0 计算并计数
type pointValue struct {
	failures int
}

func (v *pointValue) y(p domain.HistoryPoint) float64 {
	f, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		v.failures++
		return 0
	}
	return f
}

func (s *Service) logParseFailures(parameterID string, v *pointValue) {
	if v.failures > 0 {
		s.logger.Debug("Non-numeric history values treated as 0",
			zap.String("parameter_id", parameterID),
			zap.Int("count", v.failures),
		)
	}
}

// reduce 内存序列降采样
func (s *Service) reduce(points []domain.HistoryPoint, threshold int, parameterID string) ([]domain.HistoryPoint, error) {
	if points == nil {
		points = []domain.HistoryPoint{}
	}
	v := &pointValue{}
	out, err := downsample.Downsample(points, threshold, v.y)
	if err != nil {
		return nil, err
	}
	s.logParseFailures(parameterID, v)
	return out, nil
}

// reduceStream 流式降采样
func (s *Service) reduceStream(it downsample.Iterator[domain.HistoryPoint], total, threshold int, parameterID string) ([]domain.HistoryPoint, error) {
	v := &pointValue{}
	out, err := downsample.DownsampleStream(it, total, threshold, v.y)
	if err != nil {
		return nil, err
	}
	s.logParseFailures(parameterID, v)
	return out, nil
}
