package domain

// LayoutItem 前端提交的网格布局项（已校验、已裁剪）
type LayoutItem struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	W       int    `json:"w"`
	H       int    `json:"h"`
	Visible bool   `json:"visible"`
}

// LayoutRow 用户布局行（对应 user_parameter_order 表）
type LayoutRow struct {
	ParameterID  string `db:"parameter_id"`
	DisplayOrder int    `db:"display_order"`
	IsHidden     bool   `db:"is_hidden"`
	GridX        int    `db:"grid_x"`
	GridY        int    `db:"grid_y"`
	GridW        int    `db:"grid_w"`
	GridH        int    `db:"grid_h"`
}

// Widget 自定义页面使用的组件描述
type Widget struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	W            int    `json:"w"`
	H            int    `json:"h"`
	IsHidden     bool   `json:"is_hidden"`
	DisplayOrder int    `json:"display_order"`
}
