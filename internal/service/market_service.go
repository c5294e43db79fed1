// Package service implements the market-data aggregation core: tick ingest
// with per-timeframe candle fan-out, candle queries, retention sweeps, and
// feed-quality diagnostics.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shyamuday/paradigm-sub005/internal/models"
	"github.com/Shyamuday/paradigm-sub005/internal/repository"
)

// ErrInvalidTick marks ticks rejected at the ingest boundary. Nothing is
// persisted for a rejected tick; the caller decides whether to log or drop.
var ErrInvalidTick = errors.New("invalid tick")

// DefaultStoreTimeout bounds each individual store call made during ingest.
const DefaultStoreTimeout = 5 * time.Second

// TickData is the validated ingest contract. The feed integration layer
// normalizes broker messages into this shape before they reach the core.
type TickData struct {
	Symbol        string
	Price         float64
	Volume        float64
	Timestamp     time.Time
	Change        *float64
	ChangePercent *float64
}

// Validate rejects ticks that cannot be aggregated. Volume may be zero
// (quote-only updates) but never negative.
func (t TickData) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("%w: missing symbol", ErrInvalidTick)
	}
	if t.Price <= 0 || math.IsNaN(t.Price) || math.IsInf(t.Price, 0) {
		return fmt.Errorf("%w: bad price %v", ErrInvalidTick, t.Price)
	}
	if t.Volume < 0 || math.IsNaN(t.Volume) || math.IsInf(t.Volume, 0) {
		return fmt.Errorf("%w: bad volume %v", ErrInvalidTick, t.Volume)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidTick)
	}
	// Pre-epoch timestamps would round buckets toward zero instead of
	// flooring them.
	if t.Timestamp.Before(time.Unix(0, 0)) {
		return fmt.Errorf("%w: timestamp before epoch %v", ErrInvalidTick, t.Timestamp)
	}
	return nil
}

// MarketDataService is the sole write entrypoint of the core. It persists
// each accepted tick and folds it into the open candle of every active
// timeframe.
type MarketDataService struct {
	instruments  repository.InstrumentRepository
	timeframes   repository.TimeframeRepository
	ticks        repository.TickRepository
	candles      repository.CandleRepository
	logger       *logrus.Logger
	storeTimeout time.Duration
}

// It receives the tools it needs, it doesn't create them.
func NewMarketDataService(
	instruments repository.InstrumentRepository,
	timeframes repository.TimeframeRepository,
	ticks repository.TickRepository,
	candles repository.CandleRepository,
	logger *logrus.Logger,
) *MarketDataService {
	return &MarketDataService{
		instruments:  instruments,
		timeframes:   timeframes,
		ticks:        ticks,
		candles:      candles,
		logger:       logger,
		storeTimeout: DefaultStoreTimeout,
	}
}

// Ingest accepts one tick: validates it, resolves or provisions the
// instrument, appends the tick row, then fans out across every active
// timeframe. Each timeframe's candle upsert is an isolated attempt; a
// failure is logged and skipped so sibling timeframes proceed, and the next
// tick for the same bucket re-attempts it. Ingest returns an error only
// when the tick itself could not be validated or persisted.
func (s *MarketDataService) Ingest(ctx context.Context, tick TickData) error {
	if err := tick.Validate(); err != nil {
		return err
	}

	instrument, err := s.getOrCreateInstrument(ctx, tick.Symbol)
	if err != nil {
		return fmt.Errorf("resolve instrument: %w", err)
	}

	if err := s.persistTick(ctx, instrument.ID, tick); err != nil {
		return fmt.Errorf("persist tick: %w", err)
	}

	timeframes, err := s.activeTimeframes(ctx)
	if err != nil {
		return fmt.Errorf("load active timeframes: %w", err)
	}

	for i := range timeframes {
		tf := &timeframes[i]
		bucket := tf.BucketStart(tick.Timestamp)

		callCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		err := s.candles.UpsertTick(callCtx, instrument.ID, tf.ID, bucket, tick.Price, tick.Volume)
		cancel()

		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"symbol":    tick.Symbol,
				"timeframe": tf.Name,
				"bucket":    bucket.Format(time.RFC3339),
			}).WithError(err).Error("Candle upsert failed, skipping timeframe")
			continue
		}
	}

	return nil
}

func (s *MarketDataService) activeTimeframes(ctx context.Context) ([]models.Timeframe, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.timeframes.GetActive(callCtx)
}

func (s *MarketDataService) getOrCreateInstrument(ctx context.Context, symbol string) (*models.Instrument, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.instruments.GetOrCreateBySymbol(callCtx, symbol)
}

func (s *MarketDataService) persistTick(ctx context.Context, instrumentID uint, tick TickData) error {
	callCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.ticks.CreateTick(callCtx, &models.Tick{
		InstrumentID:  instrumentID,
		Timestamp:     tick.Timestamp,
		Price:         tick.Price,
		Volume:        tick.Volume,
		Change:        tick.Change,
		ChangePercent: tick.ChangePercent,
		ReceivedAt:    time.Now().UTC(),
	})
}
