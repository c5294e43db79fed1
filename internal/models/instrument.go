// Package models defines the domain models used across the application.
package models

import "time"

// Default classification for instruments provisioned on first reference,
// before any master-contract metadata is available.
const (
	DefaultExchange       = "NSE"
	DefaultInstrumentType = "EQ"
)

// Instrument represents a tradable symbol. Rows are shared reference data:
// created at most once per symbol, never deleted during normal operation.
type Instrument struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Symbol is the exchange-qualified identifier, case-sensitive.
	Symbol string `gorm:"column:symbol;uniqueIndex;size:64;not null" json:"symbol"`

	// Name is the human-readable display name.
	Name string `gorm:"column:name;size:128" json:"name"`

	// Exchange is the venue the instrument trades on (e.g., "NSE").
	Exchange string `gorm:"column:exchange;size:32;not null" json:"exchange"`

	// InstrumentType classifies the instrument (e.g., "EQ", "FUT", "OPT").
	InstrumentType string `gorm:"column:instrument_type;size:16;not null" json:"instrument_type"`

	// LotSize and TickSize are contract parameters, unset until known.
	LotSize  *float64 `gorm:"column:lot_size" json:"lot_size,omitempty"`
	TickSize *float64 `gorm:"column:tick_size" json:"tick_size,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Instrument) TableName() string {
	return "instruments"
}
