package jsonsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/c9s/ohlcv/pkg/types"
)

func TestParseTrades(t *testing.T) {
	trades, err := ParseTrades([]byte(`[
		{"id": 1, "symbol": "BTCUSDT", "side": "buy", "timestamp": 0, "price": 10, "amount": 1},
		{"id": "2", "timestamp": "30000", "price": "12", "amount": "2"},
		{"timestamp": 6e4, "price": 9, "amount": 1, "side": "sell"}
	]`))
	require.NoError(t, err)

	assert.Equal(t, []types.Trade{
		{ID: "1", Symbol: "BTCUSDT", Side: types.SideTypeBuy, Timestamp: 0, Price: 10, Amount: 1},
		{ID: "2", Timestamp: 30000, Price: 12, Amount: 2},
		{Side: types.SideTypeSell, Timestamp: 60000, Price: 9, Amount: 1},
	}, trades)
}

func TestParseTrades_Empty(t *testing.T) {
	trades, err := ParseTrades([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestParseTrades_MalformedElements(t *testing.T) {
	_, err := ParseTrades([]byte(`[
		{"timestamp": 0, "price": 10, "amount": 1},
		{"price": 10, "amount": 1},
		{"timestamp": 1, "price": "ten", "amount": 1},
		{"timestamp": 2, "price": 10, "amount": -1},
		{"timestamp": 3.5, "price": 10, "amount": 1},
		"trade"
	]`))
	require.Error(t, err)

	errs := multierr.Errors(err)
	assert.Len(t, errs, 5)
	for _, e := range errs {
		assert.ErrorIs(t, e, types.ErrMalformedTrade)
	}

	assert.Contains(t, errs[0].Error(), "trade #1")
	assert.Contains(t, errs[0].Error(), `missing "timestamp"`)
}

func TestParseTrades_InvalidPayload(t *testing.T) {
	_, err := ParseTrades([]byte(`{"timestamp": 0}`))
	assert.ErrorIs(t, err, types.ErrMalformedTrade)

	_, err = ParseTrades([]byte(`[{`))
	assert.Error(t, err)
}

func TestMarshalCandles(t *testing.T) {
	out := MarshalCandles([]types.Candle{
		{Timestamp: 0, Open: 10, High: 12, Low: 10, Close: 12, Volume: 3, Count: 2},
		{Timestamp: 60000, Open: 9, High: 9, Low: 9, Close: 9, Volume: 0.5, Count: 1},
	})
	assert.Equal(t, `[[0,10,12,10,12,3,2],[60000,9,9,9,9,0.5,1]]`, string(out))

	assert.Equal(t, `[]`, string(MarshalCandles(nil)))
}
