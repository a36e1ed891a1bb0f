package domain

// ChartPreferences 用户图表偏好（对应 user_parameter_chart_pref 表）
// 每个 (user_id, parameter_id) 最多一行；map 中不存在表示没有覆盖
type ChartPreferences struct {
	CardByParam  map[string]string
	ModalByParam map[string]string
}

// NewChartPreferences 创建空偏好
func NewChartPreferences() ChartPreferences {
	return ChartPreferences{
		CardByParam:  map[string]string{},
		ModalByParam: map[string]string{},
	}
}

// ParameterView 单个参数的渲染记录
type ParameterView struct {
	ParameterID string     `json:"parameter_id"`
	DisplayName string     `json:"display_name"`
	Category    string     `json:"category"`
	Unit        string     `json:"unit"`
	Description string     `json:"description"`
	Thresholds  Thresholds `json:"thresholds"`
	DisplayMin  *float64   `json:"display_min"`
	DisplayMax  *float64   `json:"display_max"`

	Indicator SnapshotIndicator `json:"indicator"`
	Priority  int               `json:"priority"` // 2=critical, 1=warning, 0=其他

	CardChartType  string   `json:"chart_type"`
	ModalChartType string   `json:"modal_chart_type"`
	AllowedCharts  []string `json:"chart_allowed"`

	History []HistoryPoint `json:"history"`
}
