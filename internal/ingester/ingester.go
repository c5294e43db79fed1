// Package ingester provides the Kafka-to-store tick ingestion loop.
package ingester

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Shyamuday/paradigm-sub005/internal/service"
	"github.com/Shyamuday/paradigm-sub005/internal/wire"
)

// TickSink is where accepted ticks go. Satisfied by service.MarketDataService.
type TickSink interface {
	Ingest(ctx context.Context, tick service.TickData) error
}

// Config holds ingester batch settings.
type Config struct {
	BatchSize    int
	BatchTimeout time.Duration
}

// defaultRetryDelay is the pause between ingest retries when the store is
// unavailable.
const defaultRetryDelay = 2 * time.Second

// Ingester consumes tick messages from Kafka and feeds them to the
// aggregation core. It implements at-least-once delivery: offsets are
// committed only after the store accepted every tick of the batch.
type Ingester struct {
	reader     *kafka.Reader
	sink       TickSink
	logger     *logrus.Logger
	cfg        Config
	validate   *validator.Validate
	retryDelay time.Duration
}

// It receives the tools it needs, it doesn't create them.
func NewIngester(reader *kafka.Reader, sink TickSink, logger *logrus.Logger, cfg Config) *Ingester {
	return &Ingester{
		reader:     reader,
		sink:       sink,
		logger:     logger,
		cfg:        cfg,
		validate:   validator.New(),
		retryDelay: defaultRetryDelay,
	}
}

// Start is a blocking function that runs the main loop until the context is
// cancelled.
func (ig *Ingester) Start(ctx context.Context) error {
	ig.logger.WithFields(logrus.Fields{
		"batch_size":    ig.cfg.BatchSize,
		"batch_timeout": ig.cfg.BatchTimeout,
	}).Info("Starting tick ingester loop")

	// Buffers are reused across flushes to reduce GC pressure.
	batch := make([]service.TickData, 0, ig.cfg.BatchSize)
	msgs := make([]kafka.Message, 0, ig.cfg.BatchSize)

	ticker := time.NewTicker(ig.cfg.BatchTimeout)
	defer ticker.Stop()

	flush := func() error {
		if len(batch) == 0 && len(msgs) == 0 {
			return nil
		}

		if err := ig.ingestBatch(ctx, batch); err != nil {
			return err
		}

		// Commit Kafka offsets AFTER the store accepted the batch
		// (at-least-once).
		if err := ig.reader.CommitMessages(ctx, msgs...); err != nil {
			ig.logger.WithError(err).Warn("Failed to commit offsets")
		}

		batch = batch[:0]
		msgs = msgs[:0]
		ticker.Reset(ig.cfg.BatchTimeout)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return flush()

		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}

		default:
			// Fetch with short timeout so we can check ticker/ctx often
			fetchCtx, cancel := context.WithTimeout(ctx, ig.cfg.BatchTimeout)
			m, err := ig.reader.FetchMessage(fetchCtx)
			cancel()

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				if errors.Is(err, context.Canceled) {
					return nil
				}
				ig.logger.WithError(err).Error("Kafka fetch error")
				select {
				case <-ctx.Done():
					return flush()
				case <-time.After(time.Second):
				}
				continue
			}

			tick, err := ig.parseMessage(m)
			if err != nil {
				// Malformed messages are still committed so they are not
				// refetched forever.
				ig.logger.WithError(err).Debug("Skipping malformed tick message")
				msgs = append(msgs, m)
				continue
			}

			batch = append(batch, *tick)
			msgs = append(msgs, m)

			if len(batch) >= ig.cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

// ingestBatch feeds every tick in the batch to the sink. Invalid ticks are
// logged and skipped; any other failure is retried until the store accepts
// the tick or the context ends. A nil return means the whole batch is safe
// to commit.
func (ig *Ingester) ingestBatch(ctx context.Context, batch []service.TickData) error {
	for _, tick := range batch {
		for {
			err := ig.sink.Ingest(ctx, tick)
			if err == nil {
				break
			}

			// Invalid ticks never become valid on retry.
			if errors.Is(err, service.ErrInvalidTick) {
				ig.logger.WithField("symbol", tick.Symbol).WithError(err).
					Warn("Skipping invalid tick")
				break
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			ig.logger.WithField("symbol", tick.Symbol).WithError(err).
				Error("Tick ingest failed, retrying")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(ig.retryDelay):
			}
		}
	}
	return nil
}

// parseMessage deserializes and validates one Kafka message.
func (ig *Ingester) parseMessage(msg kafka.Message) (*service.TickData, error) {
	wireMsg, err := wire.Decode(msg.Value)
	if err != nil {
		return nil, err
	}
	if err := ig.validate.Struct(wireMsg); err != nil {
		return nil, err
	}
	tick := wireMsg.ToTickData()
	return &tick, nil
}
