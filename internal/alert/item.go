package alert

import "github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"

// NewAlertItem 根据最新读数构建告警项
//
// 只有超出 normal 阈值（包含边界，<= / >=）时才算告警，返回 false 表示无告警。
// 这里比状态分类（严格 < / >）更敏感，两者不要统一
func NewAlertItem(r domain.AlertReading) (domain.AlertItem, bool) {
	t := r.Thresholds
	item := domain.AlertItem{
		ParameterID:  r.ParameterID,
		DisplayName:  r.DisplayName,
		Unit:         r.Unit,
		Value:        r.Value,
		MinThreshold: t.NormalMin,
		MaxThreshold: t.NormalMax,
		CriticalMin:  t.CriticalMin,
		CriticalMax:  t.CriticalMax,
		Timestamp:    r.Timestamp,
		IsBelowMin:   atOrBelow(r.Value, t.NormalMin),
		IsAboveMax:   atOrAbove(r.Value, t.NormalMax),
		IsCritical:   atOrBelow(r.Value, t.CriticalMin) || atOrAbove(r.Value, t.CriticalMax),
	}
	return item, item.IsBelowMin || item.IsAboveMax
}

// Breaches 判断读数是否超出 normal 阈值
func Breaches(r domain.AlertReading) bool {
	return atOrBelow(r.Value, r.Thresholds.NormalMin) || atOrAbove(r.Value, r.Thresholds.NormalMax)
}

func atOrBelow(v float64, bound *float64) bool {
	return bound != nil && v <= *bound
}

func atOrAbove(v float64, bound *float64) bool {
	return bound != nil && v >= *bound
}
