package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/alert"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/config"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/database"
	httpapi "github.com/DashMed-france/DashMed-SAE-sub002/internal/http"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/layout"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/logger"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/monitoring"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/redis"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/repository"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/selection"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/service"
	"github.com/DashMed-france/DashMed-SAE-sub002/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "dashmed-monitoring")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	monitoringRepo := repository.NewPostgresMonitoringRepository(db)
	prefsRepo := repository.NewPostgresPreferenceRepository(db)
	alertRepo := repository.NewPostgresAlertRepository(db)
	layoutRepo := repository.NewPostgresLayoutRepository(db)

	monitoringSvc := monitoring.NewService(monitoringRepo, prefsRepo, monitoring.Config{
		ChartPoints:  cfg.Monitoring.ChartPoints,
		HistoryLimit: cfg.Monitoring.HistoryLimit,
		DetailPoints: cfg.Monitoring.DetailPoints,
		StreamLimit:  cfg.Monitoring.StreamLimit,
		Workers:      cfg.Monitoring.DownsampleWorkers,
	}, log)
	alertEngine := alert.NewEngine(alertRepo, log)
	layoutSvc := layout.NewService(layoutRepo, log)
	selections := selection.NewStore(store.NewRedisKV(redisClient), cfg.Monitoring.SelectionTTL, log)

	router := httpapi.NewRouter(log)
	router.RegisterMonitoringRoutes(httpapi.NewMonitoringHandler(monitoringSvc, alertEngine, selections, cfg.Monitoring.DetailDefaultLimit, log))
	router.RegisterLayoutRoutes(httpapi.NewLayoutHandler(layoutSvc, log))
	router.RegisterSelectionRoutes(httpapi.NewSelectionHandler(selections, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("Graceful shutdown failed", zap.Error(err))
	}
}
