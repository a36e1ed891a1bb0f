// Package repository 监测数据的 Postgres 访问层
//
// 只返回原始字段，状态分类和告警判断都在业务层完成
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

// ErrUnknownParameter 参数在 parameter_reference 中不存在
var ErrUnknownParameter = errors.New("unknown parameter")

// ParameterHistoryQuery 单参数历史查询条件
type ParameterHistoryQuery struct {
	PatientID   int64
	ParameterID string
	Until       *time.Time // 包含该时刻，nil 表示不限
	Limit       int        // 最近 N 条，<= 0 表示不限
}

// MonitoringRepository 监测视图所需的读操作
type MonitoringRepository interface {
	// FetchSnapshot 每个参数一行（即使没有测量值），附带最新一条未归档测量
	FetchSnapshot(ctx context.Context, patientID int64) ([]domain.SnapshotRow, error)

	// FetchHistory 患者全部参数的未归档测量，按时间倒序，limit 限制总行数
	FetchHistory(ctx context.Context, patientID int64, limit int) ([]domain.Measurement, error)

	// ListParameterHistory 单参数历史，按时间倒序
	ListParameterHistory(ctx context.Context, q ParameterHistoryQuery) ([]domain.Measurement, error)

	// StreamParameterHistory 单参数历史游标（按时间正序）及其行数（受 Limit 约束）
	// 行数与游标读取的是同一快照；调用方负责 Close
	StreamParameterHistory(ctx context.Context, q ParameterHistoryQuery) (MeasurementStream, int, error)
}

// MeasurementStream 只能前向读取一次的测量值游标
type MeasurementStream interface {
	Next() bool
	Value() domain.Measurement
	Err() error
	Close() error
}

// PreferenceRepository 用户图表偏好
type PreferenceRepository interface {
	FetchPreferences(ctx context.Context, userID int64) (domain.ChartPreferences, error)

	// SavePreference 原子 upsert：已存在时只更新指定字段，
	// 不存在时另一个字段取参数的 default_chart
	SavePreference(ctx context.Context, userID int64, parameterID, chartType string, isModal bool) error
}

// AlertRepository 告警读取
type AlertRepository interface {
	ForEachLatestReading(ctx context.Context, patientID int64, fn func(domain.AlertReading) bool) error
}

// LayoutRepository 用户网格布局（user_parameter_order）
type LayoutRepository interface {
	ListParameters(ctx context.Context) ([]domain.ParameterReference, error)
	ListLayout(ctx context.Context, userID int64) ([]domain.LayoutRow, error)
	// ReplaceLayout 在一个事务里删除并重建用户布局
	ReplaceLayout(ctx context.Context, userID int64, rows []domain.LayoutRow) error
	ResetLayout(ctx context.Context, userID int64) error
}
