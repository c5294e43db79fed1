package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Shyamuday/paradigm-sub005/internal/models"
	"github.com/Shyamuday/paradigm-sub005/internal/repository"
)

// DefaultRangeLimit caps GetRange results when the caller passes no limit.
const DefaultRangeLimit = 100

// CandleRange is one page of a range query, newest candles first.
type CandleRange struct {
	Candles    []models.Candle `json:"candles"`
	TotalCount int64           `json:"total_count"`
	HasMore    bool            `json:"has_more"`
}

// CandleQueryService serves the read side of the candle store. Queries never
// touch the ingest path.
type CandleQueryService struct {
	instruments repository.InstrumentRepository
	timeframes  repository.TimeframeRepository
	candles     repository.CandleRepository
}

func NewCandleQueryService(
	instruments repository.InstrumentRepository,
	timeframes repository.TimeframeRepository,
	candles repository.CandleRepository,
) *CandleQueryService {
	return &CandleQueryService{
		instruments: instruments,
		timeframes:  timeframes,
		candles:     candles,
	}
}

// GetRange returns candles in [from, to] ordered newest-first. Unknown
// symbols or timeframe names fail with the repository's NotFound errors.
func (s *CandleQueryService) GetRange(ctx context.Context, symbol, timeframeName string, from, to time.Time, limit int) (*CandleRange, error) {
	if limit <= 0 {
		limit = DefaultRangeLimit
	}

	instrument, tf, err := s.resolve(ctx, symbol, timeframeName)
	if err != nil {
		return nil, err
	}

	candles, total, err := s.candles.GetRange(ctx, instrument.ID, tf.ID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("candle range %s/%s: %w", symbol, timeframeName, err)
	}

	return &CandleRange{
		Candles:    candles,
		TotalCount: total,
		HasMore:    total > int64(len(candles)),
	}, nil
}

// GetLatest returns the most recent candle by bucket start, or nil when the
// pair has no candles yet. A missing candle is not an error; an unknown
// symbol or timeframe is.
func (s *CandleQueryService) GetLatest(ctx context.Context, symbol, timeframeName string) (*models.Candle, error) {
	instrument, tf, err := s.resolve(ctx, symbol, timeframeName)
	if err != nil {
		return nil, err
	}

	candle, err := s.candles.GetLatest(ctx, instrument.ID, tf.ID)
	if err != nil {
		return nil, fmt.Errorf("latest candle %s/%s: %w", symbol, timeframeName, err)
	}
	return candle, nil
}

// GetMultiTimeframeLatest fans GetLatest out over all active timeframes.
// Timeframes with no candle yet map to nil.
func (s *CandleQueryService) GetMultiTimeframeLatest(ctx context.Context, symbol string) (map[string]*models.Candle, error) {
	instrument, err := s.instruments.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	timeframes, err := s.timeframes.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active timeframes: %w", err)
	}

	result := make(map[string]*models.Candle, len(timeframes))
	for i := range timeframes {
		tf := &timeframes[i]
		candle, err := s.candles.GetLatest(ctx, instrument.ID, tf.ID)
		if err != nil {
			return nil, fmt.Errorf("latest candle %s/%s: %w", symbol, tf.Name, err)
		}
		result[tf.Name] = candle
	}
	return result, nil
}

func (s *CandleQueryService) resolve(ctx context.Context, symbol, timeframeName string) (*models.Instrument, *models.Timeframe, error) {
	instrument, err := s.instruments.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	tf, err := s.timeframes.GetByName(ctx, timeframeName)
	if err != nil {
		return nil, nil, err
	}
	return instrument, tf, nil
}
