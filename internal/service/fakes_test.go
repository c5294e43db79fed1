package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Shyamuday/paradigm-sub005/internal/models"
	"github.com/Shyamuday/paradigm-sub005/internal/repository"
)

// In-memory repository fakes. The candle fake applies the same fold the SQL
// upsert performs, via models.NewCandleFromTick and Candle.ApplyTick.

type fakeInstrumentRepo struct {
	mu       sync.Mutex
	nextID   uint
	bySymbol map[string]*models.Instrument
}

func newFakeInstrumentRepo() *fakeInstrumentRepo {
	return &fakeInstrumentRepo{bySymbol: make(map[string]*models.Instrument)}
}

func (r *fakeInstrumentRepo) GetOrCreateBySymbol(_ context.Context, symbol string) (*models.Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.bySymbol[symbol]; ok {
		out := *inst
		return &out, nil
	}
	r.nextID++
	inst := &models.Instrument{
		ID:             r.nextID,
		Symbol:         symbol,
		Name:           symbol,
		Exchange:       models.DefaultExchange,
		InstrumentType: models.DefaultInstrumentType,
	}
	r.bySymbol[symbol] = inst
	out := *inst
	return &out, nil
}

func (r *fakeInstrumentRepo) GetBySymbol(_ context.Context, symbol string) (*models.Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.bySymbol[symbol]; ok {
		out := *inst
		return &out, nil
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrInstrumentNotFound, symbol)
}

type fakeTimeframeRepo struct {
	timeframes []models.Timeframe

	// getActiveHadDeadline records whether the last GetActive context
	// carried a deadline.
	getActiveHadDeadline bool
}

// newFakeTimeframeRepo seeds 1min and 5min, IDs 1 and 2.
func newFakeTimeframeRepo() *fakeTimeframeRepo {
	return &fakeTimeframeRepo{timeframes: []models.Timeframe{
		{ID: 1, Name: "1min", IntervalMinutes: 1, Active: true},
		{ID: 2, Name: "5min", IntervalMinutes: 5, Active: true},
	}}
}

func (r *fakeTimeframeRepo) EnsureDefaults(context.Context) error { return nil }

func (r *fakeTimeframeRepo) GetActive(ctx context.Context) ([]models.Timeframe, error) {
	_, r.getActiveHadDeadline = ctx.Deadline()
	var active []models.Timeframe
	for _, tf := range r.timeframes {
		if tf.Active {
			active = append(active, tf)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].IntervalMinutes < active[j].IntervalMinutes
	})
	return active, nil
}

func (r *fakeTimeframeRepo) GetByName(_ context.Context, name string) (*models.Timeframe, error) {
	for i := range r.timeframes {
		if r.timeframes[i].Name == name {
			out := r.timeframes[i]
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrTimeframeNotFound, name)
}

type fakeTickRepo struct {
	mu        sync.Mutex
	nextID    uint64
	ticks     []models.Tick
	createErr error
}

func newFakeTickRepo() *fakeTickRepo { return &fakeTickRepo{} }

func (r *fakeTickRepo) CreateTick(_ context.Context, tick *models.Tick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	tick.ID = r.nextID
	r.ticks = append(r.ticks, *tick)
	return nil
}

func (r *fakeTickRepo) LatestByInstrument(_ context.Context, instrumentID uint) (*models.Tick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Tick
	for i := range r.ticks {
		t := &r.ticks[i]
		if t.InstrumentID != instrumentID {
			continue
		}
		if latest == nil || t.Timestamp.After(latest.Timestamp) {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (r *fakeTickRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []models.Tick
	var deleted int64
	for _, t := range r.ticks {
		if t.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	r.ticks = kept
	return deleted, nil
}

type candleKey struct {
	instrumentID uint
	timeframeID  uint
	bucketMs     int64
}

type fakeCandleRepo struct {
	mu      sync.Mutex
	candles map[candleKey]*models.Candle

	// upsertErrs injects per-timeframe upsert failures.
	upsertErrs map[uint]error
	// deleteErrs injects per-timeframe retention failures.
	deleteErrs map[uint]error
	// deleteCutoffs records the cutoff each DeleteOlderThan call used.
	deleteCutoffs map[uint]time.Time
}

func newFakeCandleRepo() *fakeCandleRepo {
	return &fakeCandleRepo{
		candles:       make(map[candleKey]*models.Candle),
		upsertErrs:    make(map[uint]error),
		deleteErrs:    make(map[uint]error),
		deleteCutoffs: make(map[uint]time.Time),
	}
}

func (r *fakeCandleRepo) UpsertTick(_ context.Context, instrumentID, timeframeID uint, bucketStart time.Time, price, volume float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.upsertErrs[timeframeID]; err != nil {
		return err
	}
	key := candleKey{instrumentID, timeframeID, bucketStart.UnixMilli()}
	if existing, ok := r.candles[key]; ok {
		existing.ApplyTick(price, volume)
		return nil
	}
	r.candles[key] = models.NewCandleFromTick(instrumentID, timeframeID, bucketStart, price, volume)
	return nil
}

func (r *fakeCandleRepo) GetRange(_ context.Context, instrumentID, timeframeID uint, from, to time.Time, limit int) ([]models.Candle, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Candle
	for _, c := range r.candles {
		if c.InstrumentID != instrumentID || c.TimeframeID != timeframeID {
			continue
		}
		if c.BucketStart.Before(from) || c.BucketStart.After(to) {
			continue
		}
		matched = append(matched, *c)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].BucketStart.After(matched[j].BucketStart)
	})
	total := int64(len(matched))
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *fakeCandleRepo) GetLatest(_ context.Context, instrumentID, timeframeID uint) (*models.Candle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Candle
	for _, c := range r.candles {
		if c.InstrumentID != instrumentID || c.TimeframeID != timeframeID {
			continue
		}
		if latest == nil || c.BucketStart.After(latest.BucketStart) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (r *fakeCandleRepo) DeleteOlderThan(_ context.Context, timeframeID uint, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.deleteErrs[timeframeID]; err != nil {
		return 0, err
	}
	r.deleteCutoffs[timeframeID] = cutoff
	var deleted int64
	for key, c := range r.candles {
		if c.TimeframeID == timeframeID && c.BucketStart.Before(cutoff) {
			delete(r.candles, key)
			deleted++
		}
	}
	return deleted, nil
}

// count returns the number of stored candles for one instrument/timeframe.
func (r *fakeCandleRepo) count(instrumentID, timeframeID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.candles {
		if c.InstrumentID == instrumentID && c.TimeframeID == timeframeID {
			n++
		}
	}
	return n
}
