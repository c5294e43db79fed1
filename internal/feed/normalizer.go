package feed

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Shyamuday/paradigm-sub005/internal/wire"
)

// brokerTick is the broker's raw quote frame. Only the fields the core needs
// are decoded; everything else in the frame is ignored.
type brokerTick struct {
	Symbol        string   `json:"symbol"`
	LTP           float64  `json:"ltp"`
	Volume        float64  `json:"volume"`
	Timestamp     int64    `json:"timestamp"`
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"change_percent"`
	TickID        string   `json:"tick_id"`
}

// NormalizeTick converts a raw broker quote frame into the canonical wire
// message. Frames without a symbol or a positive last-traded price are
// rejected here so garbage never reaches Kafka.
func NormalizeTick(raw []byte) (*wire.TickMessage, error) {
	var bt brokerTick
	if err := json.Unmarshal(raw, &bt); err != nil {
		return nil, fmt.Errorf("decode broker tick: %w", err)
	}

	if bt.Symbol == "" {
		return nil, fmt.Errorf("broker tick missing symbol")
	}
	if bt.LTP <= 0 {
		return nil, fmt.Errorf("broker tick has non-positive ltp: %v", bt.LTP)
	}
	if bt.Timestamp <= 0 {
		return nil, fmt.Errorf("broker tick missing timestamp")
	}

	id := bt.TickID
	if id == "" {
		id = uuid.NewString()
	}

	return &wire.TickMessage{
		ID:            id,
		Symbol:        bt.Symbol,
		Price:         bt.LTP,
		Volume:        bt.Volume,
		Timestamp:     bt.Timestamp,
		Change:        bt.Change,
		ChangePercent: bt.ChangePercent,
	}, nil
}
