// Package classifier 根据临床阈值计算参数状态
package classifier

import "github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"

// Classify 计算单个测量值的状态（纯函数，按顺序匹配，第一条命中即返回）
//
//  1. value 为空 -> unknown
//  2. 手动告警标记，或低于 critical_min / 高于 critical_max -> critical
//  3. 低于 normal_min / 高于 normal_max -> warning
//  4. 其他 -> normal
//
// 比较使用严格的 < / >；缺失的阈值表示该侧无界
func Classify(value *float64, flag bool, t domain.Thresholds) domain.Status {
	if value == nil {
		return domain.StatusUnknown
	}
	v := *value
	if flag || below(v, t.CriticalMin) || above(v, t.CriticalMax) {
		return domain.StatusCritical
	}
	if below(v, t.NormalMin) || above(v, t.NormalMax) {
		return domain.StatusWarning
	}
	return domain.StatusNormal
}

// Priority 显示优先级：critical=2, warning=1, 其他=0
func Priority(s domain.Status) int {
	switch s {
	case domain.StatusCritical:
		return 2
	case domain.StatusWarning:
		return 1
	default:
		return 0
	}
}

func below(v float64, bound *float64) bool {
	return bound != nil && v < *bound
}

func above(v float64, bound *float64) bool {
	return bound != nil && v > *bound
}
