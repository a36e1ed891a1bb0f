package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

// PostgresAlertRepository 告警读取Repository实现
type PostgresAlertRepository struct {
	db *sql.DB
}

// NewPostgresAlertRepository 创建告警Repository
func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{db: db}
}

var _ AlertRepository = (*PostgresAlertRepository)(nil)

// ForEachLatestReading 逐行回调每个参数最新一条未归档、非空测量值
// 回调返回 false 时提前关闭游标
func (r *PostgresAlertRepository) ForEachLatestReading(ctx context.Context, patientID int64, fn func(domain.AlertReading) bool) error {
	query := `
		SELECT DISTINCT ON (pd.parameter_id)
			pd.parameter_id,
			pr.display_name,
			COALESCE(pr.unit, ''),
			pd.value,
			pd."timestamp",
			pr.normal_min,
			pr.normal_max,
			pr.critical_min,
			pr.critical_max
		FROM patient_data pd
		INNER JOIN parameter_reference pr ON pr.parameter_id = pd.parameter_id
		WHERE pd.id_patient = $1
		  AND pd.archived = FALSE
		  AND pd.value IS NOT NULL
		ORDER BY pd.parameter_id, pd."timestamp" DESC
	`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return fmt.Errorf("failed to query latest readings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rd domain.AlertReading
		var normalMin, normalMax, critMin, critMax sql.NullFloat64
		if err := rows.Scan(
			&rd.ParameterID,
			&rd.DisplayName,
			&rd.Unit,
			&rd.Value,
			&rd.Timestamp,
			&normalMin,
			&normalMax,
			&critMin,
			&critMax,
		); err != nil {
			return fmt.Errorf("failed to scan latest reading: %w", err)
		}
		rd.Thresholds = domain.Thresholds{
			NormalMin:   nullFloat(normalMin),
			NormalMax:   nullFloat(normalMax),
			CriticalMin: nullFloat(critMin),
			CriticalMax: nullFloat(critMax),
		}
		if !fn(rd) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate latest readings: %w", err)
	}
	return nil
}
