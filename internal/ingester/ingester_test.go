package ingester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shyamuday/paradigm-sub005/internal/service"
)

type captureSink struct {
	ticks []service.TickData
	errs  []error // consumed one per call, nil entries accept the tick
	calls int
}

func (s *captureSink) Ingest(_ context.Context, tick service.TickData) error {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return err
		}
	}
	s.ticks = append(s.ticks, tick)
	return nil
}

func newTestIngester(sink TickSink) *Ingester {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewIngester(nil, sink, logger, Config{BatchSize: 10, BatchTimeout: time.Second})
}

func testTick() service.TickData {
	return service.TickData{
		Symbol:    "NIFTY",
		Price:     19500.5,
		Volume:    1000,
		Timestamp: time.UnixMilli(1705312950000).UTC(),
	}
}

func TestIngestBatchRetriesUntilStoreAccepts(t *testing.T) {
	sink := &captureSink{errs: []error{
		errors.New("connection refused"),
		errors.New("connection refused"),
	}}
	ig := newTestIngester(sink)
	ig.retryDelay = time.Millisecond

	err := ig.ingestBatch(context.Background(), []service.TickData{testTick()})
	require.NoError(t, err)

	assert.Equal(t, 3, sink.calls)
	require.Len(t, sink.ticks, 1)
}

func TestIngestBatchSkipsInvalidTickWithoutRetry(t *testing.T) {
	sink := &captureSink{errs: []error{
		fmt.Errorf("%w: bad price", service.ErrInvalidTick),
	}}
	ig := newTestIngester(sink)
	ig.retryDelay = time.Millisecond

	err := ig.ingestBatch(context.Background(), []service.TickData{testTick(), testTick()})
	require.NoError(t, err)

	// First tick rejected once and skipped, second accepted.
	assert.Equal(t, 2, sink.calls)
	require.Len(t, sink.ticks, 1)
}

func TestIngestBatchFailureBlocksCommit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &captureSink{errs: []error{errors.New("connection refused")}}
	ig := newTestIngester(sink)
	ig.retryDelay = time.Millisecond

	// A transient failure with no chance to retry must surface an error so
	// the flush never reaches the offset commit.
	err := ig.ingestBatch(ctx, []service.TickData{testTick()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.ticks)
}

func TestParseMessageValid(t *testing.T) {
	ig := newTestIngester(&captureSink{})

	msg := kafka.Message{Value: []byte(`{"symbol":"NIFTY","price":19500.5,"volume":1000,"timestamp":1705312950000}`)}
	tick, err := ig.parseMessage(msg)
	require.NoError(t, err)

	assert.Equal(t, "NIFTY", tick.Symbol)
	assert.Equal(t, 19500.5, tick.Price)
	assert.True(t, tick.Timestamp.Equal(time.UnixMilli(1705312950000).UTC()))
}

func TestParseMessageRejectsMissingSymbol(t *testing.T) {
	ig := newTestIngester(&captureSink{})

	msg := kafka.Message{Value: []byte(`{"price":19500.5,"volume":1000,"timestamp":1705312950000}`)}
	_, err := ig.parseMessage(msg)
	assert.Error(t, err)
}

func TestParseMessageRejectsNonPositivePrice(t *testing.T) {
	ig := newTestIngester(&captureSink{})

	msg := kafka.Message{Value: []byte(`{"symbol":"NIFTY","price":0,"volume":1000,"timestamp":1705312950000}`)}
	_, err := ig.parseMessage(msg)
	assert.Error(t, err)
}

func TestParseMessageRejectsGarbage(t *testing.T) {
	ig := newTestIngester(&captureSink{})

	_, err := ig.parseMessage(kafka.Message{Value: []byte("garbage")})
	assert.Error(t, err)
}

func TestParseMessageKeepsOptionalFields(t *testing.T) {
	ig := newTestIngester(&captureSink{})

	msg := kafka.Message{Value: []byte(`{"symbol":"NIFTY","price":100,"volume":1,"timestamp":1705312950000,"change":-2.5,"change_percent":-0.01}`)}
	tick, err := ig.parseMessage(msg)
	require.NoError(t, err)

	require.NotNil(t, tick.Change)
	assert.Equal(t, -2.5, *tick.Change)
	require.NotNil(t, tick.ChangePercent)
}
