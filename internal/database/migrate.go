package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// SplitStatements 按分号拆分 SQL 脚本，去掉空语句和纯注释语句
// 不处理字符串或函数体中的分号
func SplitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt = strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

// ApplyMigration 在一个事务中依次执行脚本中的语句
func ApplyMigration(ctx context.Context, db *sql.DB, script string, logger *zap.Logger) (err error) {
	statements := SplitStatements(script)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement %d: %w", i+1, err)
		}
		logger.Debug("Migration statement executed", zap.Int("index", i+1), zap.Int("total", len(statements)))
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	logger.Info("Migration applied", zap.Int("statements", len(statements)))
	return nil
}
