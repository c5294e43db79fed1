// Package configs provides application configuration loaded from environment
// variables. All configuration is externalized for 12-factor app compliance.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// DBDSN is the Postgres connection string.
	DBDSN string

	// Kafka contains connection settings for the tick topic.
	Kafka KafkaConfig

	// Ingester contains batch settings for the Kafka-to-store ingester.
	Ingester IngesterConfig

	// Feed contains settings for the broker websocket feed.
	Feed FeedConfig

	// Retention contains the cleanup sweep settings.
	Retention RetentionConfig

	// QualityGapSeconds is how long a symbol may stay silent before its
	// feed is flagged as gapped.
	QualityGapSeconds int

	// ServerPort is the HTTP API listen port.
	ServerPort string
}

// KafkaConfig holds Kafka connection settings for tick data.
type KafkaConfig struct {
	// Broker is the Kafka broker address (e.g., "localhost:9092").
	Broker string

	// Topic is the Kafka topic for tick data.
	Topic string

	// GroupID is the consumer group ID for the ingester.
	GroupID string
}

// IngesterConfig holds settings for batch processing.
type IngesterConfig struct {
	// BatchSize is the maximum number of ticks to accumulate before flushing.
	BatchSize int

	// BatchTimeoutSeconds is the maximum seconds to wait before flushing.
	BatchTimeoutSeconds int
}

// FeedConfig holds broker websocket feed settings.
type FeedConfig struct {
	// URL is the broker tick-stream endpoint.
	URL string

	// Symbols is the list of symbols to subscribe to (comma-separated in env).
	Symbols []string

	// MaxSubsPerConnection caps symbols per websocket connection.
	MaxSubsPerConnection int

	// TicksPerSecond throttles Kafka publishing. 0 disables throttling.
	TicksPerSecond float64
}

// RetentionConfig holds the cleanup sweep settings.
type RetentionConfig struct {
	// TickRetentionDays is how long raw ticks are kept.
	TickRetentionDays int

	// IntradayCandleDays, HourlyCandleDays and DailyCandleDays are the
	// retention windows per timeframe class.
	IntradayCandleDays int
	HourlyCandleDays   int
	DailyCandleDays    int

	// SweepIntervalHours is how often the sweeps run.
	SweepIntervalHours int
}

// getDatabaseDSN constructs the Postgres DSN from environment variables.
func getDatabaseDSN() string {
	dbUser := getEnv("POSTGRES_USER", "postgres")
	dbPassword := getEnv("POSTGRES_PASSWORD", "postgres")
	dbHost := getEnv("POSTGRES_HOST", "localhost")
	dbPort := getEnv("POSTGRES_PORT", "5432")
	dbName := getEnv("POSTGRES_DB", "marketdata")
	sslMode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dbHost, dbUser, dbPassword, dbName, dbPort, sslMode,
	)
}

// getFeedConfig loads broker feed settings from environment.
func getFeedConfig() FeedConfig {
	symbolsEnv := getEnv("FEED_SYMBOLS", "")
	var symbols []string
	if symbolsEnv != "" {
		symbols = strings.Split(symbolsEnv, ",")
	}

	return FeedConfig{
		URL:                  getEnv("FEED_WS_URL", "wss://localhost:8443/ticks"),
		Symbols:              symbols,
		MaxSubsPerConnection: getEnvInt("FEED_MAX_SUBS_PER_CONNECTION", 50),
		TicksPerSecond:       float64(getEnvInt("FEED_TICKS_PER_SECOND", 0)),
	}
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	return &AppConfig{
		DBDSN: getDatabaseDSN(),
		Kafka: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:   getEnv("KAFKA_TICK_TOPIC", "market_ticks"),
			GroupID: getEnv("KAFKA_TICK_GROUP_ID", "tick-ingester"),
		},
		Ingester: IngesterConfig{
			BatchSize:           getEnvInt("BATCH_SIZE", 200),
			BatchTimeoutSeconds: getEnvInt("BATCH_TIMEOUT_SECONDS", 5),
		},
		Feed: getFeedConfig(),
		Retention: RetentionConfig{
			TickRetentionDays:  getEnvInt("TICK_RETENTION_DAYS", 7),
			IntradayCandleDays: getEnvInt("INTRADAY_CANDLE_RETENTION_DAYS", 7),
			HourlyCandleDays:   getEnvInt("HOURLY_CANDLE_RETENTION_DAYS", 30),
			DailyCandleDays:    getEnvInt("DAILY_CANDLE_RETENTION_DAYS", 90),
			SweepIntervalHours: getEnvInt("RETENTION_SWEEP_INTERVAL_HOURS", 24),
		},
		QualityGapSeconds: getEnvInt("QUALITY_GAP_SECONDS", 300),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
