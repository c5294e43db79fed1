package main

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/Shyamuday/paradigm-sub005/configs"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := configs.AppLoad()

	db, err := sql.Open("pgx", cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.WithError(err).Fatal("Failed to ping database")
	}

	if err := goose.SetDialect("postgres"); err != nil {
		logger.WithError(err).Fatal("Goose: failed to set dialect")
	}

	logger.Info("Running database migrations...")
	if err := goose.Up(db, "migrations"); err != nil {
		logger.WithError(err).Fatal("Goose migration failed")
	}

	logger.Info("Migrations completed successfully")
}
