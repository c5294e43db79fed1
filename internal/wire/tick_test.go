package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidMessage(t *testing.T) {
	data := []byte(`{"id":"t-1","symbol":"NIFTY","price":19500.5,"volume":1000,"timestamp":1705312950000}`)

	msg, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "NIFTY", msg.Symbol)
	assert.Equal(t, 19500.5, msg.Price)
	assert.Equal(t, 1000.0, msg.Volume)
	assert.Nil(t, msg.Change)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestToTickData(t *testing.T) {
	change := 12.5
	msg := TickMessage{
		Symbol:    "NIFTY",
		Price:     19500.5,
		Volume:    1000,
		Timestamp: 1705312950000,
		Change:    &change,
	}

	tick := msg.ToTickData()
	assert.Equal(t, "NIFTY", tick.Symbol)
	assert.True(t, tick.Timestamp.Equal(time.UnixMilli(1705312950000).UTC()))
	require.NotNil(t, tick.Change)
	assert.Equal(t, 12.5, *tick.Change)
	assert.Nil(t, tick.ChangePercent)
}

func TestEncodeOmitsEmptyOptionals(t *testing.T) {
	msg := TickMessage{Symbol: "NIFTY", Price: 100, Volume: 1, Timestamp: 1705312950000}

	data, err := msg.Encode()
	require.NoError(t, err)

	assert.NotContains(t, string(data), "change")
	assert.NotContains(t, string(data), `"id"`)
}
