package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Shyamuday/paradigm-sub005/internal/models"
)

// CandleRepository manages the candle store. UpsertTick is the aggregation
// critical section: one statement per (instrument, timeframe, bucket), safe
// under concurrent aggregator instances without application-level locks.
type CandleRepository interface {
	// UpsertTick folds one tick into the candle for the given bucket,
	// creating the candle if this is the bucket's first tick.
	UpsertTick(ctx context.Context, instrumentID, timeframeID uint, bucketStart time.Time, price, volume float64) error

	// GetRange returns candles in [from, to] ordered newest-first, capped at
	// limit, plus the total number of matching rows.
	GetRange(ctx context.Context, instrumentID, timeframeID uint, from, to time.Time, limit int) ([]models.Candle, int64, error)

	// GetLatest returns the most recent candle by bucket start, or nil when
	// no candle exists yet.
	GetLatest(ctx context.Context, instrumentID, timeframeID uint) (*models.Candle, error)

	// DeleteOlderThan removes candles of one timeframe whose bucket started
	// before the cutoff and returns the number of rows deleted.
	DeleteOlderThan(ctx context.Context, timeframeID uint, cutoff time.Time) (int64, error)
}

type gormCandleRepository struct {
	db *gorm.DB
}

func NewGormCandleRepository(db *gorm.DB) CandleRepository {
	return &gormCandleRepository{db: db}
}

// candleUpsertSQL performs the insert-or-update in a single statement.
// The update branch recomputes every derived column from the post-update
// O/H/L/C; each SET expression only sees the old row and EXCLUDED, so the
// GREATEST/LEAST terms are expanded inline.
const candleUpsertSQL = `
INSERT INTO candles (
	instrument_id, timeframe_id, bucket_start,
	open, high, low, close, volume,
	typical_price, weighted_price, price_change, price_change_pct,
	upper_shadow, lower_shadow, body_size, total_range,
	tick_count, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, now(), now())
ON CONFLICT (instrument_id, timeframe_id, bucket_start) DO UPDATE SET
	high             = GREATEST(candles.high, EXCLUDED.high),
	low              = LEAST(candles.low, EXCLUDED.low),
	close            = EXCLUDED.close,
	volume           = candles.volume + EXCLUDED.volume,
	tick_count       = candles.tick_count + 1,
	typical_price    = (GREATEST(candles.high, EXCLUDED.high) + LEAST(candles.low, EXCLUDED.low) + EXCLUDED.close) / 3,
	weighted_price   = (GREATEST(candles.high, EXCLUDED.high) + LEAST(candles.low, EXCLUDED.low) + 2 * EXCLUDED.close) / 4,
	price_change     = EXCLUDED.close - candles.open,
	price_change_pct = CASE WHEN candles.open <> 0
		THEN (EXCLUDED.close - candles.open) / candles.open * 100
		ELSE 0 END,
	upper_shadow     = GREATEST(candles.high, EXCLUDED.high) - GREATEST(candles.open, EXCLUDED.close),
	lower_shadow     = LEAST(candles.open, EXCLUDED.close) - LEAST(candles.low, EXCLUDED.low),
	body_size        = ABS(EXCLUDED.close - candles.open),
	total_range      = GREATEST(candles.high, EXCLUDED.high) - LEAST(candles.low, EXCLUDED.low),
	updated_at       = now()`

func (r *gormCandleRepository) UpsertTick(ctx context.Context, instrumentID, timeframeID uint, bucketStart time.Time, price, volume float64) error {
	// Insert-path values come from the single-point candle.
	c := models.NewCandleFromTick(instrumentID, timeframeID, bucketStart, price, volume)

	err := r.db.WithContext(ctx).Exec(candleUpsertSQL,
		c.InstrumentID, c.TimeframeID, c.BucketStart,
		c.Open, c.High, c.Low, c.Close, c.Volume,
		c.TypicalPrice, c.WeightedPrice, c.PriceChange, c.PriceChangePct,
		c.UpperShadow, c.LowerShadow, c.BodySize, c.TotalRange,
	).Error
	if err != nil {
		return fmt.Errorf("upsert candle (instrument=%d timeframe=%d bucket=%s): %w",
			instrumentID, timeframeID, bucketStart.Format(time.RFC3339), err)
	}
	return nil
}

func (r *gormCandleRepository) GetRange(ctx context.Context, instrumentID, timeframeID uint, from, to time.Time, limit int) ([]models.Candle, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Candle{}).
		Where("instrument_id = ? AND timeframe_id = ?", instrumentID, timeframeID).
		Where("bucket_start >= ? AND bucket_start <= ?", from, to)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count candles: %w", err)
	}

	var candles []models.Candle
	err := base.
		Order("bucket_start DESC").
		Limit(limit).
		Find(&candles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("query candle range: %w", err)
	}
	return candles, total, nil
}

func (r *gormCandleRepository) GetLatest(ctx context.Context, instrumentID, timeframeID uint) (*models.Candle, error) {
	var candles []models.Candle
	err := r.db.WithContext(ctx).
		Where("instrument_id = ? AND timeframe_id = ?", instrumentID, timeframeID).
		Order("bucket_start DESC").
		Limit(1).
		Find(&candles).Error
	if err != nil {
		return nil, fmt.Errorf("query latest candle: %w", err)
	}
	if len(candles) == 0 {
		return nil, nil
	}
	return &candles[0], nil
}

func (r *gormCandleRepository) DeleteOlderThan(ctx context.Context, timeframeID uint, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("timeframe_id = ? AND bucket_start < ?", timeframeID, cutoff).
		Delete(&models.Candle{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete candles before %s: %w", cutoff.Format(time.RFC3339), res.Error)
	}
	return res.RowsAffected, nil
}
