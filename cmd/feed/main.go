package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Shyamuday/paradigm-sub005/configs"
	"github.com/Shyamuday/paradigm-sub005/internal/feed"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := configs.AppLoad()

	if len(cfg.Feed.Symbols) == 0 {
		logger.Fatal("FEED_SYMBOLS is empty, nothing to subscribe to")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Kafka.Broker),
		Topic:    cfg.Kafka.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	publisher := feed.NewPublisher(writer, cfg.Feed.TicksPerSecond, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chunks := feed.ChunkSymbols(cfg.Feed.Symbols, cfg.Feed.MaxSubsPerConnection)

	createClient := func() *feed.WSClient {
		var client *feed.WSClient
		handler := feed.WSHandler{
			OnSubscribe: func(conn *websocket.Conn, symbols []string) error {
				return client.WriteJSON(conn, map[string]any{
					"action":  "subscribe",
					"symbols": symbols,
				})
			},
			OnMessage: func(conn *websocket.Conn, msg []byte) ([]byte, error) {
				tick, err := feed.NormalizeTick(msg)
				if err != nil {
					return nil, err
				}
				return tick.Encode()
			},
		}
		client = feed.NewWSClient(feed.WSConfig{URL: cfg.Feed.URL}, handler, publisher, logger)
		return client
	}

	logger.WithFields(logrus.Fields{
		"symbols": len(cfg.Feed.Symbols),
		"workers": len(chunks),
	}).Info("Starting broker feed")

	feed.RunWorkers(ctx, chunks, "feed", createClient, logger)

	logger.Info("Feed shutdown complete")
}
