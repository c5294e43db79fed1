package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shyamuday/paradigm-sub005/internal/repository"
)

// Retention defaults. All of them are configurable; these are the fallbacks
// when the config leaves a class unset.
const (
	DefaultTickRetentionDays     = 7
	DefaultIntradayRetentionDays = 7  // sub-hour timeframes
	DefaultHourlyRetentionDays   = 30 // 1hour
	DefaultDailyRetentionDays    = 90 // 1day
	DefaultSweepInterval         = 24 * time.Hour
)

// RetentionConfig controls the periodic cleanup sweeps.
type RetentionConfig struct {
	// TickRetentionDays is how long raw ticks are kept.
	TickRetentionDays int

	// CandleRetentionDays overrides the retention window per timeframe name.
	// Timeframes without an entry fall back to the class defaults above.
	CandleRetentionDays map[string]int

	// SweepInterval is how often Run executes both cleanups.
	SweepInterval time.Duration
}

// RetentionService bounds storage growth by deleting stale tick rows and
// aged candle rows. Sweeps run independently of the ingest path; the only
// coordination is the open-bucket guard in CleanupCandles.
type RetentionService struct {
	timeframes repository.TimeframeRepository
	ticks      repository.TickRepository
	candles    repository.CandleRepository
	cfg        RetentionConfig
	logger     *logrus.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewRetentionService(
	timeframes repository.TimeframeRepository,
	ticks repository.TickRepository,
	candles repository.CandleRepository,
	cfg RetentionConfig,
	logger *logrus.Logger,
) *RetentionService {
	if cfg.TickRetentionDays <= 0 {
		cfg.TickRetentionDays = DefaultTickRetentionDays
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &RetentionService{
		timeframes: timeframes,
		ticks:      ticks,
		candles:    candles,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// CleanupTicks deletes ticks older than retentionDays and returns the count
// deleted. Idempotent: a second run with no new ticks deletes nothing.
func (s *RetentionService) CleanupTicks(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = s.cfg.TickRetentionDays
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)

	deleted, err := s.ticks.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.WithFields(logrus.Fields{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("Tick retention sweep complete")
	}
	return deleted, nil
}

// CleanupCandles applies the per-timeframe retention policy. The cutoff for
// each timeframe is clamped to that timeframe's current open bucket, so the
// candle being updated right now is never deleted. Per-timeframe failures
// are logged and skipped; the sweep resumes them next cycle.
func (s *RetentionService) CleanupCandles(ctx context.Context) (int64, error) {
	timeframes, err := s.timeframes.GetActive(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var total int64
	for i := range timeframes {
		tf := &timeframes[i]

		cutoff := now.AddDate(0, 0, -s.retentionDaysFor(tf.Name, tf.IntervalMinutes))
		if open := tf.BucketStart(now); cutoff.After(open) {
			cutoff = open
		}

		deleted, err := s.candles.DeleteOlderThan(ctx, tf.ID, cutoff)
		if err != nil {
			s.logger.WithField("timeframe", tf.Name).WithError(err).
				Error("Candle retention sweep failed, continuing")
			continue
		}
		total += deleted
	}
	return total, nil
}

// Run executes both sweeps on a timer until the context is cancelled.
func (s *RetentionService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanupTicks(ctx, 0); err != nil {
				s.logger.WithError(err).Error("Tick retention sweep failed")
			}
			if _, err := s.CleanupCandles(ctx); err != nil {
				s.logger.WithError(err).Error("Candle retention sweep failed")
			}
		}
	}
}

func (s *RetentionService) retentionDaysFor(name string, intervalMinutes int) int {
	if days, ok := s.cfg.CandleRetentionDays[name]; ok && days > 0 {
		return days
	}
	switch {
	case intervalMinutes < 60:
		return DefaultIntradayRetentionDays
	case intervalMinutes < 1440:
		return DefaultHourlyRetentionDays
	default:
		return DefaultDailyRetentionDays
	}
}
