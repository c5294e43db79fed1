package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shyamuday/paradigm-sub005/internal/repository"
)

type queryFixture struct {
	*marketFixture
	query *CandleQueryService
}

func newQueryFixture() *queryFixture {
	mf := newMarketFixture()
	return &queryFixture{
		marketFixture: mf,
		query:         NewCandleQueryService(mf.instruments, mf.timeframes, mf.candles),
	}
}

func (f *queryFixture) seed(t *testing.T, symbol string, n int) {
	t.Helper()
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, f.service.Ingest(context.Background(), tick(symbol, 100+float64(i), 1, ts)))
	}
}

func TestGetRangeUnknownSymbol(t *testing.T) {
	f := newQueryFixture()

	_, err := f.query.GetRange(context.Background(), "UNKNOWN", "5min", time.Time{}, time.Now(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrInstrumentNotFound)
}

func TestGetRangeUnknownTimeframe(t *testing.T) {
	f := newQueryFixture()
	f.seed(t, "NIFTY", 1)

	_, err := f.query.GetRange(context.Background(), "NIFTY", "2min", time.Time{}, time.Now(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrTimeframeNotFound)
}

func TestGetRangePagination(t *testing.T) {
	f := newQueryFixture()
	f.seed(t, "NIFTY", 5)

	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	result, err := f.query.GetRange(context.Background(), "NIFTY", "1min", from, to, 2)
	require.NoError(t, err)

	assert.Len(t, result.Candles, 2)
	assert.EqualValues(t, 5, result.TotalCount)
	assert.True(t, result.HasMore)

	// Newest first.
	assert.True(t, result.Candles[0].BucketStart.After(result.Candles[1].BucketStart))
}

func TestGetRangeDefaultLimit(t *testing.T) {
	f := newQueryFixture()
	f.seed(t, "NIFTY", 3)

	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	// limit <= 0 falls back to the default and returns everything here.
	result, err := f.query.GetRange(context.Background(), "NIFTY", "1min", from, to, 0)
	require.NoError(t, err)
	assert.Len(t, result.Candles, 3)
	assert.False(t, result.HasMore)
}

func TestGetLatestNoCandlesIsNotAnError(t *testing.T) {
	f := newQueryFixture()

	// Instrument exists but has no candles yet.
	_, err := f.instruments.GetOrCreateBySymbol(context.Background(), "NIFTY")
	require.NoError(t, err)

	candle, err := f.query.GetLatest(context.Background(), "NIFTY", "5min")
	require.NoError(t, err)
	assert.Nil(t, candle)
}

func TestGetLatestReturnsNewestBucket(t *testing.T) {
	f := newQueryFixture()
	f.seed(t, "NIFTY", 3)

	candle, err := f.query.GetLatest(context.Background(), "NIFTY", "1min")
	require.NoError(t, err)
	require.NotNil(t, candle)

	want := time.Date(2024, 1, 15, 10, 2, 0, 0, time.UTC)
	assert.True(t, candle.BucketStart.Equal(want), "bucket %s", candle.BucketStart)
	assert.Equal(t, 102.0, candle.Close)
}

func TestGetMultiTimeframeLatest(t *testing.T) {
	f := newQueryFixture()
	f.seed(t, "NIFTY", 2)

	result, err := f.query.GetMultiTimeframeLatest(context.Background(), "NIFTY")
	require.NoError(t, err)

	require.Contains(t, result, "1min")
	require.Contains(t, result, "5min")
	assert.NotNil(t, result["1min"])
	assert.NotNil(t, result["5min"])
	assert.Equal(t, 101.0, result["5min"].Close)
}

func TestGetMultiTimeframeLatestUnknownSymbol(t *testing.T) {
	f := newQueryFixture()

	_, err := f.query.GetMultiTimeframeLatest(context.Background(), "UNKNOWN")
	assert.ErrorIs(t, err, repository.ErrInstrumentNotFound)
}
