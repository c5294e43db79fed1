package models

import "time"

// Timeframe represents a named candle bucket width. The canonical set is
// seeded once at startup and is immutable afterwards except for the active
// flag.
type Timeframe struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Name is the unique timeframe identifier (e.g., "1min", "1day").
	Name string `gorm:"column:name;uniqueIndex;size:16;not null" json:"name"`

	// Description is a human-readable label.
	Description string `gorm:"column:description;size:64" json:"description"`

	// IntervalMinutes is the bucket width in minutes.
	IntervalMinutes int `gorm:"column:interval_minutes;not null" json:"interval_minutes"`

	// Active controls whether the aggregator fans ticks out to this timeframe.
	Active bool `gorm:"column:active;not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Timeframe) TableName() string {
	return "timeframes"
}

// Interval returns the bucket width as a duration.
func (tf *Timeframe) Interval() time.Duration {
	return time.Duration(tf.IntervalMinutes) * time.Minute
}

// BucketStart maps a tick timestamp onto the start of its containing bucket.
// Buckets are aligned to the Unix epoch, so candles from independent symbols
// share calendar boundaries (every "5min" candle starts at :00, :05, :10...).
func (tf *Timeframe) BucketStart(ts time.Time) time.Time {
	intervalMs := int64(tf.IntervalMinutes) * 60_000
	bucketMs := ts.UnixMilli() / intervalMs * intervalMs
	return time.UnixMilli(bucketMs).UTC()
}

// DefaultTimeframes is the canonical timeframe set seeded at startup.
func DefaultTimeframes() []Timeframe {
	return []Timeframe{
		{Name: "1min", Description: "1 Minute", IntervalMinutes: 1, Active: true},
		{Name: "3min", Description: "3 Minutes", IntervalMinutes: 3, Active: true},
		{Name: "5min", Description: "5 Minutes", IntervalMinutes: 5, Active: true},
		{Name: "15min", Description: "15 Minutes", IntervalMinutes: 15, Active: true},
		{Name: "30min", Description: "30 Minutes", IntervalMinutes: 30, Active: true},
		{Name: "1hour", Description: "1 Hour", IntervalMinutes: 60, Active: true},
		{Name: "1day", Description: "1 Day", IntervalMinutes: 1440, Active: true},
	}
}
