package service

import (
	"context"
	"time"

	"github.com/Shyamuday/paradigm-sub005/internal/repository"
)

// DefaultGapThreshold is how long a symbol may stay silent before its feed
// is flagged as gapped.
const DefaultGapThreshold = 5 * time.Minute

// DataQuality is a read-side snapshot of feed health for one symbol.
type DataQuality struct {
	Symbol     string    `json:"symbol"`
	LastUpdate time.Time `json:"last_update"`
	LatencyMs  int64     `json:"latency_ms"`
	Gap        bool      `json:"gap"`
}

// QualityMonitor derives staleness metrics from the last observed tick per
// symbol. Pure diagnostic, no side effects.
type QualityMonitor struct {
	instruments  repository.InstrumentRepository
	ticks        repository.TickRepository
	gapThreshold time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewQualityMonitor(
	instruments repository.InstrumentRepository,
	ticks repository.TickRepository,
	gapThreshold time.Duration,
) *QualityMonitor {
	if gapThreshold <= 0 {
		gapThreshold = DefaultGapThreshold
	}
	return &QualityMonitor{
		instruments:  instruments,
		ticks:        ticks,
		gapThreshold: gapThreshold,
		now:          time.Now,
	}
}

// DataQuality reports the last tick time and feed latency for a symbol.
// A symbol with no ticks at all is reported as gapped with a zero LastUpdate.
func (m *QualityMonitor) DataQuality(ctx context.Context, symbol string) (*DataQuality, error) {
	instrument, err := m.instruments.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	tick, err := m.ticks.LatestByInstrument(ctx, instrument.ID)
	if err != nil {
		return nil, err
	}

	if tick == nil {
		return &DataQuality{Symbol: symbol, Gap: true}, nil
	}

	latency := m.now().Sub(tick.Timestamp)
	return &DataQuality{
		Symbol:     symbol,
		LastUpdate: tick.Timestamp,
		LatencyMs:  latency.Milliseconds(),
		Gap:        latency > m.gapThreshold,
	}, nil
}
