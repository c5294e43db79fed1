// Package repository provides gorm-backed persistence for market data.
package repository

import "errors"

// Typed lookup failures, surfaced to callers instead of raw driver errors.
var (
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrTimeframeNotFound  = errors.New("timeframe not found")
)
