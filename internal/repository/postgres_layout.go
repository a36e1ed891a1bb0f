package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

// PostgresLayoutRepository 用户网格布局Repository实现
type PostgresLayoutRepository struct {
	db *sql.DB
}

// NewPostgresLayoutRepository 创建布局Repository
func NewPostgresLayoutRepository(db *sql.DB) *PostgresLayoutRepository {
	return &PostgresLayoutRepository{db: db}
}

var _ LayoutRepository = (*PostgresLayoutRepository)(nil)

// ListParameters 全部参数（只取布局需要的字段），按分类和名称排序
func (r *PostgresLayoutRepository) ListParameters(ctx context.Context) ([]domain.ParameterReference, error) {
	query := `
		SELECT parameter_id, display_name, COALESCE(category, '')
		FROM parameter_reference
		ORDER BY category, display_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()

	var out []domain.ParameterReference
	for rows.Next() {
		var p domain.ParameterReference
		if err := rows.Scan(&p.ParameterID, &p.DisplayName, &p.Category); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parameters: %w", err)
	}
	return out, nil
}

// ListLayout 用户已保存的布局，按 display_order 排序
func (r *PostgresLayoutRepository) ListLayout(ctx context.Context, userID int64) ([]domain.LayoutRow, error) {
	query := `
		SELECT parameter_id, display_order, is_hidden, grid_x, grid_y, grid_w, grid_h
		FROM user_parameter_order
		WHERE id_user = $1
		ORDER BY display_order
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query layout: %w", err)
	}
	defer rows.Close()

	var out []domain.LayoutRow
	for rows.Next() {
		var row domain.LayoutRow
		if err := rows.Scan(
			&row.ParameterID,
			&row.DisplayOrder,
			&row.IsHidden,
			&row.GridX,
			&row.GridY,
			&row.GridW,
			&row.GridH,
		); err != nil {
			return nil, fmt.Errorf("failed to scan layout: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate layout: %w", err)
	}
	return out, nil
}

// ReplaceLayout 删除旧布局并写入新布局（同一事务）
func (r *PostgresLayoutRepository) ReplaceLayout(ctx context.Context, userID int64, rows []domain.LayoutRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin layout transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_parameter_order WHERE id_user = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear layout: %w", err)
	}

	insert := `
		INSERT INTO user_parameter_order
			(id_user, parameter_id, display_order, is_hidden, grid_x, grid_y, grid_w, grid_h, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, insert,
			userID, row.ParameterID, row.DisplayOrder, row.IsHidden,
			row.GridX, row.GridY, row.GridW, row.GridH,
		); err != nil {
			return fmt.Errorf("failed to insert layout row %s: %w", row.ParameterID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit layout: %w", err)
	}
	return nil
}

// ResetLayout 删除用户布局
func (r *PostgresLayoutRepository) ResetLayout(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_parameter_order WHERE id_user = $1`, userID); err != nil {
		return fmt.Errorf("failed to reset layout: %w", err)
	}
	return nil
}
