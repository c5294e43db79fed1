package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Shyamuday/paradigm-sub005/configs"
	"github.com/Shyamuday/paradigm-sub005/internal/ingester"
	"github.com/Shyamuday/paradigm-sub005/internal/repository"
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

	marketService := service.NewMarketDataService(
		instrumentRepo, timeframeRepo, tickRepo, candleRepo, logger)

	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          cfg.Kafka.Topic,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 0,    // Important: We handle commits manually in Ingester!
	})
	defer kafkaReader.Close()

	svc := ingester.NewIngester(
		kafkaReader,
		marketService,
		logger,
		ingester.Config{
			BatchSize:    cfg.Ingester.BatchSize,
			BatchTimeout: time.Duration(cfg.Ingester.BatchTimeoutSeconds) * time.Second,
		},
	)

	logger.Info("Ingester started successfully")

	if err := svc.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Ingester stopped with error")
	}

	logger.Info("Ingester shutdown complete")
}
