package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

// PostgresPreferenceRepository 用户图表偏好Repository实现
// 依赖 user_parameter_chart_pref 上的 UNIQUE (id_user, parameter_id) 约束
type PostgresPreferenceRepository struct {
	db *sql.DB
}

// NewPostgresPreferenceRepository 创建偏好Repository
func NewPostgresPreferenceRepository(db *sql.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

var _ PreferenceRepository = (*PostgresPreferenceRepository)(nil)

// FetchPreferences 读取用户的卡片/弹窗图表类型覆盖
func (r *PostgresPreferenceRepository) FetchPreferences(ctx context.Context, userID int64) (domain.ChartPreferences, error) {
	query := `
		SELECT parameter_id, chart_type, modal_chart_type
		FROM user_parameter_chart_pref
		WHERE id_user = $1
	`

	prefs := domain.NewChartPreferences()
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return prefs, fmt.Errorf("failed to query chart preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var parameterID string
		var card, modal sql.NullString
		if err := rows.Scan(&parameterID, &card, &modal); err != nil {
			return domain.NewChartPreferences(), fmt.Errorf("failed to scan chart preference: %w", err)
		}
		if card.Valid && card.String != "" {
			prefs.CardByParam[parameterID] = card.String
		}
		if modal.Valid && modal.String != "" {
			prefs.ModalByParam[parameterID] = modal.String
		}
	}
	if err := rows.Err(); err != nil {
		return domain.NewChartPreferences(), fmt.Errorf("failed to iterate chart preferences: %w", err)
	}
	return prefs, nil
}

// 首次写入时另一列取 default_chart（为空则 line），冲突时只更新请求的列
const (
	upsertCardChartSQL = `
		INSERT INTO user_parameter_chart_pref (id_user, parameter_id, chart_type, modal_chart_type, updated_at)
		SELECT $1, pr.parameter_id, $3, COALESCE(NULLIF(pr.default_chart, ''), 'line'), NOW()
		FROM parameter_reference pr
		WHERE pr.parameter_id = $2
		ON CONFLICT (id_user, parameter_id) DO UPDATE
		SET chart_type = EXCLUDED.chart_type, updated_at = NOW()
	`
	upsertModalChartSQL = `
		INSERT INTO user_parameter_chart_pref (id_user, parameter_id, chart_type, modal_chart_type, updated_at)
		SELECT $1, pr.parameter_id, COALESCE(NULLIF(pr.default_chart, ''), 'line'), $3, NOW()
		FROM parameter_reference pr
		WHERE pr.parameter_id = $2
		ON CONFLICT (id_user, parameter_id) DO UPDATE
		SET modal_chart_type = EXCLUDED.modal_chart_type, updated_at = NOW()
	`
)

// SavePreference 单条语句完成 upsert，并发写入同一 (user, parameter) 不会产生重复行
func (r *PostgresPreferenceRepository) SavePreference(ctx context.Context, userID int64, parameterID, chartType string, isModal bool) error {
	query := upsertCardChartSQL
	if isModal {
		query = upsertModalChartSQL
	}

	res, err := r.db.ExecContext(ctx, query, userID, parameterID, chartType)
	if err != nil {
		return fmt.Errorf("failed to save chart preference: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save chart preference: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, parameterID)
	}
	return nil
}
