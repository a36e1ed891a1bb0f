package domain

import "time"

// AlertReading 告警查询行：某参数最新一条（未归档、非空）测量值 + 阈值
type AlertReading struct {
	ParameterID string
	DisplayName string
	Unit        string
	Value       float64
	Timestamp   time.Time
	Thresholds  Thresholds
}

// AlertItem 告警项
// IsBelowMin/IsAboveMax 只由 normal 阈值决定，IsCritical 只由 critical 阈值决定
type AlertItem struct {
	ParameterID  string    `json:"parameterId"`
	DisplayName  string    `json:"displayName"`
	Unit         string    `json:"unit"`
	Value        float64   `json:"value"`
	MinThreshold *float64  `json:"minThreshold"`
	MaxThreshold *float64  `json:"maxThreshold"`
	CriticalMin  *float64  `json:"criticalMin"`
	CriticalMax  *float64  `json:"criticalMax"`
	Timestamp    time.Time `json:"timestamp"`
	IsBelowMin   bool      `json:"isBelowMin"`
	IsAboveMax   bool      `json:"isAboveMax"`
	IsCritical   bool      `json:"isCritical"`
}

// AlertMessage 面向用户的告警消息
type AlertMessage struct {
	Type        string    `json:"type"` // error | warning
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Icon        string    `json:"icon"`
	ParameterID string    `json:"parameterId"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Threshold   *float64  `json:"threshold"`
	Direction   string    `json:"direction"` // high | low
	Timestamp   time.Time `json:"timestamp"`
}
