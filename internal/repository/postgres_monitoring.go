package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

// PostgresMonitoringRepository 监测数据Repository实现
type PostgresMonitoringRepository struct {
	db *sql.DB
}

// NewPostgresMonitoringRepository 创建监测数据Repository
func NewPostgresMonitoringRepository(db *sql.DB) *PostgresMonitoringRepository {
	return &PostgresMonitoringRepository{db: db}
}

// 确保实现了接口
var _ MonitoringRepository = (*PostgresMonitoringRepository)(nil)

// FetchSnapshot 参数参考 LEFT JOIN 每个参数最新一条未归档测量
func (r *PostgresMonitoringRepository) FetchSnapshot(ctx context.Context, patientID int64) ([]domain.SnapshotRow, error) {
	query := `
		SELECT
			pr.parameter_id,
			pr.display_name,
			COALESCE(pr.category, ''),
			COALESCE(pr.unit, ''),
			COALESCE(pr.description, ''),
			pr.normal_min,
			pr.normal_max,
			pr.critical_min,
			pr.critical_max,
			pr.display_min,
			pr.display_max,
			COALESCE(pr.default_chart, ''),
			ARRAY(
				SELECT pca.chart_type
				FROM parameter_chart_allowed pca
				WHERE pca.parameter_id = pr.parameter_id
				ORDER BY pca.chart_type
			) AS allowed_charts,
			pd.value,
			pd."timestamp",
			COALESCE(pd.alert_flag, FALSE)
		FROM parameter_reference pr
		LEFT JOIN LATERAL (
			SELECT value, "timestamp", alert_flag
			FROM patient_data
			WHERE id_patient = $1
			  AND parameter_id = pr.parameter_id
			  AND archived = FALSE
			ORDER BY "timestamp" DESC
			LIMIT 1
		) pd ON TRUE
		ORDER BY pr.category, pr.display_name
	`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var out []domain.SnapshotRow
	for rows.Next() {
		var row domain.SnapshotRow
		ref := &row.Reference
		var normalMin, normalMax, critMin, critMax sql.NullFloat64
		var displayMin, displayMax, value sql.NullFloat64
		var ts sql.NullTime
		var allowed []string
		if err := rows.Scan(
			&ref.ParameterID,
			&ref.DisplayName,
			&ref.Category,
			&ref.Unit,
			&ref.Description,
			&normalMin,
			&normalMax,
			&critMin,
			&critMax,
			&displayMin,
			&displayMax,
			&ref.DefaultChart,
			pq.Array(&allowed),
			&value,
			&ts,
			&row.AlertFlag,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		ref.Thresholds = domain.Thresholds{
			NormalMin:   nullFloat(normalMin),
			NormalMax:   nullFloat(normalMax),
			CriticalMin: nullFloat(critMin),
			CriticalMax: nullFloat(critMax),
		}
		ref.DisplayMin = nullFloat(displayMin)
		ref.DisplayMax = nullFloat(displayMax)
		ref.AllowedCharts = allowed
		row.Value = nullFloat(value)
		if ts.Valid {
			t := ts.Time
			row.Timestamp = &t
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot: %w", err)
	}
	return out, nil
}

// FetchHistory 患者全部参数的历史（倒序），limit <= 0 不限制
func (r *PostgresMonitoringRepository) FetchHistory(ctx context.Context, patientID int64, limit int) ([]domain.Measurement, error) {
	query := `
		SELECT parameter_id, value, "timestamp", alert_flag
		FROM patient_data
		WHERE id_patient = $1
		  AND archived = FALSE
		ORDER BY "timestamp" DESC
	`
	args := []interface{}{patientID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows, patientID)
}

// buildParameterWhere 单参数历史的公共过滤条件
func buildParameterWhere(q ParameterHistoryQuery) (string, []interface{}) {
	where := []string{
		"id_patient = $1",
		"parameter_id = $2",
		"archived = FALSE",
	}
	args := []interface{}{q.PatientID, q.ParameterID}
	if q.Until != nil {
		args = append(args, q.Until.UTC())
		where = append(where, fmt.Sprintf(`"timestamp" <= $%d`, len(args)))
	}
	return strings.Join(where, " AND "), args
}

// ListParameterHistory 单参数历史（倒序）
func (r *PostgresMonitoringRepository) ListParameterHistory(ctx context.Context, q ParameterHistoryQuery) ([]domain.Measurement, error) {
	where, args := buildParameterWhere(q)
	query := `SELECT parameter_id, value, "timestamp", alert_flag FROM patient_data WHERE ` + where +
		` ORDER BY "timestamp" DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameter history: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows, q.PatientID)
}

// historySnapshot 单参数历史的读取快照
var historySnapshot = &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}

// queryer 由 *sql.DB 和 *sql.Tx 实现
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// StreamParameterHistory 在一个只读 REPEATABLE READ 事务中先计数再打开正序游标
// Limit > 0 时取最近 Limit 条再按正序返回；游标 Close 时结束事务
func (r *PostgresMonitoringRepository) StreamParameterHistory(ctx context.Context, q ParameterHistoryQuery) (MeasurementStream, int, error) {
	tx, err := r.db.BeginTx(ctx, historySnapshot)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin history snapshot: %w", err)
	}

	total, err := countParameterHistory(ctx, tx, q)
	if err != nil {
		_ = tx.Rollback()
		return nil, 0, err
	}

	rows, err := queryParameterHistoryAsc(ctx, tx, q)
	if err != nil {
		_ = tx.Rollback()
		return nil, 0, err
	}
	return &MeasurementCursor{rows: rows, tx: tx, patientID: q.PatientID}, total, nil
}

func countParameterHistory(ctx context.Context, db queryer, q ParameterHistoryQuery) (int, error) {
	where, args := buildParameterWhere(q)
	inner := `SELECT 1 FROM patient_data WHERE ` + where
	if q.Limit > 0 {
		args = append(args, q.Limit)
		inner += fmt.Sprintf(` ORDER BY "timestamp" DESC LIMIT $%d`, len(args))
	}
	query := `SELECT COUNT(*) FROM (` + inner + `) AS c`

	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count parameter history: %w", err)
	}
	return n, nil
}

func queryParameterHistoryAsc(ctx context.Context, db queryer, q ParameterHistoryQuery) (*sql.Rows, error) {
	where, args := buildParameterWhere(q)
	var query string
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query = `SELECT parameter_id, value, "timestamp", alert_flag FROM (
			SELECT parameter_id, value, "timestamp", alert_flag FROM patient_data WHERE ` + where +
			fmt.Sprintf(` ORDER BY "timestamp" DESC LIMIT $%d`, len(args)) + `
		) AS recent ORDER BY "timestamp" ASC`
	} else {
		query = `SELECT parameter_id, value, "timestamp", alert_flag FROM patient_data WHERE ` + where +
			` ORDER BY "timestamp" ASC`
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to stream parameter history: %w", err)
	}
	return rows, nil
}

func scanMeasurement(rows *sql.Rows, patientID int64) (domain.Measurement, error) {
	var (
		m     domain.Measurement
		value sql.NullFloat64
		flag  sql.NullBool
		ts    time.Time
	)
	if err := rows.Scan(&m.ParameterID, &value, &ts, &flag); err != nil {
		return m, err
	}
	m.PatientID = patientID
	m.Value = nullFloat(value)
	m.Timestamp = ts
	m.AlertFlag = flag.Valid && flag.Bool
	return m, nil
}

func scanMeasurements(rows *sql.Rows, patientID int64) ([]domain.Measurement, error) {
	out := []domain.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows, patientID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate measurements: %w", err)
	}
	return out, nil
}

// MeasurementCursor 基于 sql.Rows 的只读游标，一次只持有一行
type MeasurementCursor struct {
	rows      *sql.Rows
	tx        *sql.Tx
	patientID int64
	cur       domain.Measurement
	err       error
}

func (c *MeasurementCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	m, err := scanMeasurement(c.rows, c.patientID)
	if err != nil {
		c.err = fmt.Errorf("failed to scan measurement: %w", err)
		return false
	}
	c.cur = m
	return true
}

func (c *MeasurementCursor) Value() domain.Measurement { return c.cur }

func (c *MeasurementCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

// Close 关闭游标并结束所属事务
func (c *MeasurementCursor) Close() error {
	err := c.rows.Close()
	if c.tx != nil {
		if cerr := c.tx.Commit(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to end history snapshot: %w", cerr)
		}
		c.tx = nil
	}
	return err
}
