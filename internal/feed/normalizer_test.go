package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTick(t *testing.T) {
	raw := []byte(`{"symbol":"NIFTY","ltp":19500.5,"volume":1000,"timestamp":1705312950000,"tick_id":"b-42"}`)

	tick, err := NormalizeTick(raw)
	require.NoError(t, err)

	assert.Equal(t, "b-42", tick.ID)
	assert.Equal(t, "NIFTY", tick.Symbol)
	assert.Equal(t, 19500.5, tick.Price)
	assert.Equal(t, 1000.0, tick.Volume)
	assert.EqualValues(t, 1705312950000, tick.Timestamp)
}

func TestNormalizeTickAssignsIDWhenMissing(t *testing.T) {
	raw := []byte(`{"symbol":"NIFTY","ltp":19500.5,"volume":1000,"timestamp":1705312950000}`)

	tick, err := NormalizeTick(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, tick.ID)
}

func TestNormalizeTickRejectsBadFrames(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `ping`},
		{"missing symbol", `{"ltp":100,"volume":1,"timestamp":1705312950000}`},
		{"zero ltp", `{"symbol":"NIFTY","ltp":0,"volume":1,"timestamp":1705312950000}`},
		{"missing timestamp", `{"symbol":"NIFTY","ltp":100,"volume":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeTick([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestChunkSymbols(t *testing.T) {
	chunks := ChunkSymbols([]string{"A", "B", "C", "D", "E"}, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"A", "B"}, chunks[0])
	assert.Equal(t, []string{"E"}, chunks[2])

	assert.Nil(t, ChunkSymbols(nil, 2))
}
