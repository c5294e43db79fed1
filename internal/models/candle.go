package models

import (
	"math"
	"time"
)

// Candle represents one OHLCV bar for one (instrument, timeframe,
// bucket_start) triple. The composite unique index is the aggregation
// invariant: exactly one row per bucket. The first tick of a bucket creates
// the row, later ticks in the same bucket mutate it in place through an
// atomic upsert, and the row goes quiet once the next bucket opens.
type Candle struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	InstrumentID uint `gorm:"column:instrument_id;uniqueIndex:idx_candles_bucket,priority:1;not null" json:"instrument_id"`
	TimeframeID  uint `gorm:"column:timeframe_id;uniqueIndex:idx_candles_bucket,priority:2;not null" json:"timeframe_id"`

	// BucketStart is the epoch-aligned start of the candle's time bucket.
	BucketStart time.Time `gorm:"column:bucket_start;uniqueIndex:idx_candles_bucket,priority:3;index:idx_candles_bucket_start;not null" json:"bucket_start"`

	Open   float64 `gorm:"column:open;not null" json:"open"`
	High   float64 `gorm:"column:high;not null" json:"high"`
	Low    float64 `gorm:"column:low;not null" json:"low"`
	Close  float64 `gorm:"column:close;not null" json:"close"`
	Volume float64 `gorm:"column:volume;not null" json:"volume"`

	// Derived fields, recomputed on every update from the current O/H/L/C.
	TypicalPrice   float64 `gorm:"column:typical_price" json:"typical_price"`
	WeightedPrice  float64 `gorm:"column:weighted_price" json:"weighted_price"`
	PriceChange    float64 `gorm:"column:price_change" json:"price_change"`
	PriceChangePct float64 `gorm:"column:price_change_pct" json:"price_change_pct"`
	UpperShadow    float64 `gorm:"column:upper_shadow" json:"upper_shadow"`
	LowerShadow    float64 `gorm:"column:lower_shadow" json:"lower_shadow"`
	BodySize       float64 `gorm:"column:body_size" json:"body_size"`
	TotalRange     float64 `gorm:"column:total_range" json:"total_range"`

	// TickCount is the number of ticks folded into this candle.
	TickCount int64 `gorm:"column:tick_count;not null;default:0" json:"tick_count"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Candle) TableName() string {
	return "candles"
}

// ComputeDerived recomputes all derived fields from the current O/H/L/C.
func (c *Candle) ComputeDerived() {
	c.TypicalPrice = (c.High + c.Low + c.Close) / 3
	c.WeightedPrice = (c.High + c.Low + 2*c.Close) / 4
	c.PriceChange = c.Close - c.Open
	if c.Open != 0 {
		c.PriceChangePct = (c.Close - c.Open) / c.Open * 100
	} else {
		c.PriceChangePct = 0
	}
	c.UpperShadow = c.High - math.Max(c.Open, c.Close)
	c.LowerShadow = math.Min(c.Open, c.Close) - c.Low
	c.BodySize = math.Abs(c.Close - c.Open)
	c.TotalRange = c.High - c.Low
}

// NewCandleFromTick builds the candle a bucket's first tick defines:
// open, high, low and close all equal the tick price.
func NewCandleFromTick(instrumentID, timeframeID uint, bucketStart time.Time, price, volume float64) *Candle {
	c := &Candle{
		InstrumentID: instrumentID,
		TimeframeID:  timeframeID,
		BucketStart:  bucketStart,
		Open:         price,
		High:         price,
		Low:          price,
		Close:        price,
		Volume:       volume,
		TickCount:    1,
	}
	c.ComputeDerived()
	return c
}

// ApplyTick folds a subsequent tick of the same bucket into the candle.
// Close follows the last applied tick regardless of its source timestamp;
// a late-arriving tick with an earlier timestamp will still overwrite close.
func (c *Candle) ApplyTick(price, volume float64) {
	c.High = math.Max(c.High, price)
	c.Low = math.Min(c.Low, price)
	c.Close = price
	c.Volume += volume
	c.TickCount++
	c.ComputeDerived()
}
