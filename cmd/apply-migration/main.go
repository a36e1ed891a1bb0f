package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/config"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/database"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/logger"
)

// 用法: apply-migration migrations/001_monitoring_schema.sql
func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, "console", "apply-migration")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if len(os.Args) < 2 {
		log.Fatal("Usage: apply-migration <migration_file.sql>")
	}
	migrationFile := os.Args[1]
	script, err := os.ReadFile(migrationFile)
	if err != nil {
		log.Fatal("Failed to read migration file", zap.String("file", migrationFile), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Cannot connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.ApplyMigration(ctx, db, string(script), log); err != nil {
		log.Fatal("Migration failed", zap.String("file", migrationFile), zap.Error(err))
	}
	log.Info("Migration completed", zap.String("file", migrationFile), zap.String("database", cfg.Database.Database))
}
