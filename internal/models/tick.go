package models

import "time"

// Tick represents one observed price/volume event for an instrument.
// Rows are append-only: never mutated, deleted only by the retention sweep.
type Tick struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	// InstrumentID references the owning instrument.
	InstrumentID uint `gorm:"column:instrument_id;index:idx_ticks_instrument_ts;not null" json:"instrument_id"`

	// Timestamp is when the tick was observed at the source.
	Timestamp time.Time `gorm:"column:timestamp;index:idx_ticks_instrument_ts;not null" json:"timestamp"`

	// Price is the last traded price.
	Price float64 `gorm:"column:price;not null" json:"price"`

	// Volume is the incremental volume for this tick, not a cumulative total.
	Volume float64 `gorm:"column:volume;not null" json:"volume"`

	// Change and ChangePercent are optional day-change figures from the feed.
	Change        *float64 `gorm:"column:change" json:"change,omitempty"`
	ChangePercent *float64 `gorm:"column:change_percent" json:"change_percent,omitempty"`

	// ReceivedAt is when the tick entered our pipeline.
	ReceivedAt time.Time `gorm:"column:received_at;default:now()" json:"received_at"`
}

func (Tick) TableName() string {
	return "ticks"
}
