// Package alert 检测患者参数的阈值告警，并生成告警消息
package alert

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

// Repository 告警所需的数据访问
type Repository interface {
	// ForEachLatestReading 遍历患者每个参数最新一条未归档、非空的测量值；
	// fn 返回 false 时停止遍历
	ForEachLatestReading(ctx context.Context, patientID int64, fn func(domain.AlertReading) bool) error
}

// Engine 告警引擎
type Engine struct {
	repo   Repository
	logger *zap.Logger
}

// NewEngine 创建告警引擎
func NewEngine(repo Repository, logger *zap.Logger) *Engine {
	return &Engine{repo: repo, logger: logger}
}

// DetectAlerts 返回患者当前的告警列表：critical 在前，同级按时间倒序
// 读取失败只记录日志并返回空列表
func (e *Engine) DetectAlerts(ctx context.Context, patientID int64) []domain.AlertItem {
	items := []domain.AlertItem{}
	err := e.repo.ForEachLatestReading(ctx, patientID, func(r domain.AlertReading) bool {
		if item, ok := NewAlertItem(r); ok {
			items = append(items, item)
		}
		return true
	})
	if err != nil {
		e.logger.Error("Failed to detect alerts",
			zap.Int64("patient_id", patientID),
			zap.Error(err),
		)
		return []domain.AlertItem{}
	}
	SortAlerts(items)
	return items
}

// HasAlerts 是否存在至少一个告警，遇到第一个告警即停止读取
// 读取失败只记录日志并返回 false
func (e *Engine) HasAlerts(ctx context.Context, patientID int64) bool {
	found := false
	err := e.repo.ForEachLatestReading(ctx, patientID, func(r domain.AlertReading) bool {
		found = Breaches(r)
		return !found
	})
	if err != nil {
		e.logger.Error("Failed to check alerts",
			zap.Int64("patient_id", patientID),
			zap.Error(err),
		)
		return false
	}
	return found
}

// SortAlerts critical 在前，同级按时间倒序（稳定排序）
func SortAlerts(items []domain.AlertItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsCritical != items[j].IsCritical {
			return items[i].IsCritical
		}
		return items[i].Timestamp.After(items[j].Timestamp)
	})
}
