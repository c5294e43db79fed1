package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Shyamuday/paradigm-sub005/configs"
	"github.com/Shyamuday/paradigm-sub005/internal/handler"
	"github.com/Shyamuday/paradigm-sub005/internal/models"
	"github.com/Shyamuday/paradigm-sub005/internal/repository"
	"github.com/Shyamuday/paradigm-sub005/internal/router"
	"github.com/Shyamuday/paradigm-sub005/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := configs.AppLoad()

	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	instrumentRepo := repository.NewGormInstrumentRepository(db)
	timeframeRepo := repository.NewGormTimeframeRepository(db)
	tickRepo := repository.NewGormTickRepository(db)
	candleRepo := repository.NewGormCandleRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := timeframeRepo.EnsureDefaults(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to seed timeframes")
	}

	queryService := service.NewCandleQueryService(instrumentRepo, timeframeRepo, candleRepo)
	qualityMonitor := service.NewQualityMonitor(instrumentRepo, tickRepo,
		time.Duration(cfg.QualityGapSeconds)*time.Second)
	retentionService := service.NewRetentionService(timeframeRepo, tickRepo, candleRepo,
		service.RetentionConfig{
			TickRetentionDays:   cfg.Retention.TickRetentionDays,
			CandleRetentionDays: candleRetentionByName(cfg.Retention),
			SweepInterval:       time.Duration(cfg.Retention.SweepIntervalHours) * time.Hour,
		}, logger)

	go retentionService.Run(ctx)

	candleHandler := handler.NewCandleHandler(queryService, qualityMonitor)
	adminHandler := handler.NewAdminHandler(retentionService)

	r := router.NewRouter(&router.Config{
		CandleHandler: candleHandler,
		AdminHandler:  adminHandler,
	})

	logger.WithField("port", cfg.ServerPort).Info("Starting API server")
	if err := r.Run(fmt.Sprintf(":%s", cfg.ServerPort)); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}

// candleRetentionByName expands the class-based retention settings into the
// per-timeframe map the retention service expects.
func candleRetentionByName(cfg configs.RetentionConfig) map[string]int {
	byName := make(map[string]int)
	for _, tf := range models.DefaultTimeframes() {
		switch {
		case tf.IntervalMinutes < 60:
			byName[tf.Name] = cfg.IntradayCandleDays
		case tf.IntervalMinutes < 1440:
			byName[tf.Name] = cfg.HourlyCandleDays
		default:
			byName[tf.Name] = cfg.DailyCandleDays
		}
	}
	return byName
}
