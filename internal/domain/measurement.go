package domain

import (
	"strconv"
	"time"
)

// Status 参数当前状态
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusCritical Status = "critical"
	StatusWarning  Status = "warning"
	StatusNormal   Status = "normal"
)

// Measurement 测量值（对应 patient_data 表，只追加）
// archived = true 的记录不参与任何计算；Value 为 nil 表示“无读数”
type Measurement struct {
	PatientID   int64     `db:"id_patient"`
	ParameterID string    `db:"parameter_id"`
	Value       *float64  `db:"value"`
	Timestamp   time.Time `db:"timestamp"`
	AlertFlag   bool      `db:"alert_flag"`
	Archived    bool      `db:"archived"`
}

// SnapshotRow 最新值快照行（parameter_reference LEFT JOIN 最新一条未归档测量）
// 没有测量值的参数 Value/Timestamp 为 nil
type SnapshotRow struct {
	Reference ParameterReference
	Value     *float64
	Timestamp *time.Time
	AlertFlag bool
}

// SnapshotIndicator 快照指标（每次请求重新计算，不缓存）
type SnapshotIndicator struct {
	ParameterID string     `json:"parameter_id"`
	Value       *float64   `json:"value"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	AlertFlag   bool       `json:"alert_flag"`
	Status      Status     `json:"status"`
}

// HistoryPoint 图表历史点（time_iso/value/flag 与前端保持一致）
type HistoryPoint struct {
	TimeISO string `json:"time_iso"`
	Value   string `json:"value"` // 空字符串表示无读数
	Flag    int    `json:"flag"`  // 0 | 1
}

// NewHistoryPoint 把测量值转换为历史点（时间统一为 UTC RFC3339）
func NewHistoryPoint(m Measurement) HistoryPoint {
	p := HistoryPoint{}
	if !m.Timestamp.IsZero() {
		p.TimeISO = m.Timestamp.UTC().Format(time.RFC3339)
	}
	if m.Value != nil {
		p.Value = strconv.FormatFloat(*m.Value, 'f', -1, 64)
	}
	if m.AlertFlag {
		p.Flag = 1
	}
	return p
}

// LiveMetric 轻量实时指标（只含最新值，不含历史）
type LiveMetric struct {
	ParameterID string `json:"parameter_id"`
	DisplayName string `json:"display_name"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	Status      Status `json:"status"`
	IsCritFlag  bool   `json:"is_crit_flag"`
	TimeISO     string `json:"time_iso"`
	ChartType   string `json:"chart_type"`
}
