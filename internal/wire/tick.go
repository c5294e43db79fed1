// Package wire defines the canonical tick message exchanged between the
// feed publishers and the ingester over Kafka.
package wire

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/Shyamuday/paradigm-sub005/internal/service"
)

// TickMessage is the JSON tick record on the wire. Timestamp is epoch
// milliseconds; Change and ChangePercent are optional day-change figures.
type TickMessage struct {
	ID            string   `json:"id,omitempty"`
	Symbol        string   `json:"symbol" validate:"required"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	Volume        float64  `json:"volume" validate:"gte=0"`
	Timestamp     int64    `json:"timestamp" validate:"required,gt=0"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
}

// Decode parses a raw Kafka payload into a TickMessage.
func Decode(data []byte) (*TickMessage, error) {
	var msg TickMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode tick message: %w", err)
	}
	return &msg, nil
}

// Encode serializes the message for publishing.
func (m *TickMessage) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode tick message: %w", err)
	}
	return data, nil
}

// ToTickData converts the wire message into the core's ingest contract.
func (m *TickMessage) ToTickData() service.TickData {
	return service.TickData{
		Symbol:        m.Symbol,
		Price:         m.Price,
		Volume:        m.Volume,
		Timestamp:     time.UnixMilli(m.Timestamp).UTC(),
		Change:        m.Change,
		ChangePercent: m.ChangePercent,
	}
}
