package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Shyamuday/paradigm-sub005/internal/wire"
)

// Publisher sends tick payloads to Kafka, throttled so a bursty feed cannot
// overwhelm the broker.
type Publisher struct {
	writer  *kafka.Writer
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewPublisher creates a Kafka publisher. ticksPerSecond <= 0 disables
// throttling.
func NewPublisher(writer *kafka.Writer, ticksPerSecond float64, logger *logrus.Logger) *Publisher {
	var limiter *rate.Limiter
	if ticksPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ticksPerSecond), 10)
	}
	return &Publisher{writer: writer, limiter: limiter, logger: logger}
}

// Send publishes raw bytes to Kafka.
func (p *Publisher) Send(ctx context.Context, data []byte) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.writer.WriteMessages(writeCtx, kafka.Message{Value: data})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("kafka write failed: %w", err)
	}
	return nil
}

// SendTick serializes and publishes a single tick message.
func (p *Publisher) SendTick(ctx context.Context, tick *wire.TickMessage) error {
	data, err := tick.Encode()
	if err != nil {
		return fmt.Errorf("serialize failed: %w", err)
	}
	return p.Send(ctx, data)
}
