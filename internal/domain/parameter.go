package domain

// DefaultChartType 参数未配置 default_chart 时使用的图表类型
const DefaultChartType = "line"

// Thresholds 临床阈值（任意一侧可以缺失，缺失表示该侧无界，不能当作 0）
type Thresholds struct {
	NormalMin   *float64 `json:"normal_min"`
	NormalMax   *float64 `json:"normal_max"`
	CriticalMin *float64 `json:"critical_min"`
	CriticalMax *float64 `json:"critical_max"`
}

// ParameterReference 参数参考定义（对应 parameter_reference 表，由管理端维护，本服务只读）
type ParameterReference struct {
	ParameterID string `db:"parameter_id"` // VARCHAR, PRIMARY KEY
	DisplayName string `db:"display_name"`
	Category    string `db:"category"`
	Unit        string `db:"unit"`
	Description string `db:"description"`

	Thresholds Thresholds

	// 图表显示范围
	DisplayMin *float64 `db:"display_min"`
	DisplayMax *float64 `db:"display_max"`

	DefaultChart  string   `db:"default_chart"`
	AllowedCharts []string // parameter_chart_allowed 表，按 chart_type 排序
}

// ChartDefault 返回 default_chart，空值回退到 line
func (p ParameterReference) ChartDefault() string {
	if p.DefaultChart == "" {
		return DefaultChartType
	}
	return p.DefaultChart
}

// ChartAllowed 返回允许的图表类型；未配置时只允许 default_chart
func (p ParameterReference) ChartAllowed() []string {
	if len(p.AllowedCharts) == 0 {
		return []string{p.ChartDefault()}
	}
	return p.AllowedCharts
}

// AllowsChart 判断图表类型是否在允许集合中
func (p ParameterReference) AllowsChart(chartType string) bool {
	for _, c := range p.ChartAllowed() {
		if c == chartType {
			return true
		}
	}
	return false
}
