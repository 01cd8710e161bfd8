package ohlcv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/ohlcv/pkg/types"
)

var basicTrades = []types.Trade{
	{Timestamp: 0, Price: 10, Amount: 1},
	{Timestamp: 30000, Price: 12, Amount: 2},
	{Timestamp: 60000, Price: 9, Amount: 1},
}

func assertCandleInvariants(t *testing.T, candles []types.Candle) {
	for i, c := range candles {
		assert.LessOrEqual(t, c.Low, c.Open, "candle #%d low <= open", i)
		assert.LessOrEqual(t, c.Open, c.High, "candle #%d open <= high", i)
		assert.LessOrEqual(t, c.Low, c.Close, "candle #%d low <= close", i)
		assert.LessOrEqual(t, c.Close, c.High, "candle #%d close <= high", i)
		assert.GreaterOrEqual(t, c.Volume, 0.0)
		assert.GreaterOrEqual(t, c.Count, int64(1))
		if i > 0 {
			assert.GreaterOrEqual(t, c.Timestamp, candles[i-1].Timestamp)
		}
	}
}

func TestBuildOHLCVC(t *testing.T) {
	candles, err := BuildOHLCVC(basicTrades, "1m")
	require.NoError(t, err)

	assert.Equal(t, []types.Candle{
		{Timestamp: 0, Open: 10, High: 12, Low: 10, Close: 12, Volume: 3, Count: 2},
		{Timestamp: 60000, Open: 9, High: 9, Low: 9, Close: 9, Volume: 1, Count: 1},
	}, candles)
	assertCandleInvariants(t, candles)
}

func TestBuildOHLCVC_DefaultTimeframe(t *testing.T) {
	candles, err := BuildOHLCVC(basicTrades, "")
	require.NoError(t, err)
	assert.Len(t, candles, 2)
}

func TestBuildOHLCVC_Since(t *testing.T) {
	candles, err := BuildOHLCVC(basicTrades, "1m", WithSince(30000))
	require.NoError(t, err)

	// the skipped trade never opens a bucket, the first kept trade opens bucket 0 with its own price
	assert.Equal(t, []types.Candle{
		{Timestamp: 0, Open: 12, High: 12, Low: 12, Close: 12, Volume: 2, Count: 1},
		{Timestamp: 60000, Open: 9, High: 9, Low: 9, Close: 9, Volume: 1, Count: 1},
	}, candles)
}

func TestBuildOHLCVC_SinceDoesNotAbort(t *testing.T) {
	trades := []types.Trade{
		{Timestamp: 60000, Price: 5, Amount: 1},
		{Timestamp: 1000, Price: 100, Amount: 1},
		{Timestamp: 61000, Price: 6, Amount: 1},
	}

	candles, err := BuildOHLCVC(trades, "1m", WithSince(50000))
	require.NoError(t, err)
	assert.Equal(t, []types.Candle{
		{Timestamp: 60000, Open: 5, High: 6, Low: 5, Close: 6, Volume: 2, Count: 2},
	}, candles)
}

func TestBuildOHLCVC_LimitIsAnIndex(t *testing.T) {
	candles, err := BuildOHLCVC(basicTrades, "1m", WithLimit(0))
	require.NoError(t, err)
	assert.Equal(t, []types.Candle{
		{Timestamp: 0, Open: 10, High: 10, Low: 10, Close: 10, Volume: 1, Count: 1},
	}, candles)

	// limit = 1 processes two trades, not one
	candles, err = BuildOHLCVC(basicTrades, "1m", WithLimit(1))
	require.NoError(t, err)
	assert.Equal(t, []types.Candle{
		{Timestamp: 0, Open: 10, High: 12, Low: 10, Close: 12, Volume: 3, Count: 2},
	}, candles)

	candles, err = BuildOHLCVC(basicTrades, "1m", WithLimit(100))
	require.NoError(t, err)
	assert.Len(t, candles, 2)

	candles, err = BuildOHLCVC(basicTrades, "1m", WithLimit(-1))
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestBuildOHLCVC_SparseOutput(t *testing.T) {
	trades := []types.Trade{
		{Timestamp: 0, Price: 1, Amount: 1},
		{Timestamp: 10 * 60000, Price: 2, Amount: 1},
		{Timestamp: 10*60000 + 59999, Price: 3, Amount: 1},
		{Timestamp: 45 * 60000, Price: 4, Amount: 1},
	}

	candles, err := BuildOHLCVC(trades, "1m")
	require.NoError(t, err)

	if assert.Len(t, candles, 3) {
		assert.Equal(t, int64(0), candles[0].Timestamp)
		assert.Equal(t, int64(10*60000), candles[1].Timestamp)
		assert.Equal(t, int64(2), candles[1].Count)
		assert.Equal(t, int64(45*60000), candles[2].Timestamp)
	}
	assertCandleInvariants(t, candles)
}

func TestBuildOHLCVC_SingleTradeCandles(t *testing.T) {
	trades := []types.Trade{
		{Timestamp: 1000, Price: 7.5, Amount: 0.25},
		{Timestamp: 3600000 + 1000, Price: 8.5, Amount: 0.75},
	}

	candles, err := BuildOHLCVC(trades, "1h")
	require.NoError(t, err)
	require.Len(t, candles, 2)

	for i, c := range candles {
		assert.Equal(t, trades[i].Price, c.Open)
		assert.Equal(t, c.Open, c.High)
		assert.Equal(t, c.Open, c.Low)
		assert.Equal(t, c.Open, c.Close)
		assert.Equal(t, trades[i].Amount, c.Volume)
		assert.Equal(t, int64(1), c.Count)
	}
}

func TestBuildOHLCVC_UnsupportedTimeframe(t *testing.T) {
	candles, err := BuildOHLCVC(basicTrades, "1x")
	assert.ErrorIs(t, err, types.ErrUnsupportedTimeframe)
	assert.Nil(t, candles)
}

func TestBuildOHLCVC_OversizedTimeframe(t *testing.T) {
	trades := []types.Trade{
		{Timestamp: 1700000000000, Price: 1, Amount: 1},
		{Timestamp: 1700000060000, Price: 2, Amount: 1},
	}

	for _, timeframe := range []string{"1e16s", "2305843009213693952s"} {
		candles, err := BuildOHLCVC(trades, timeframe)
		assert.ErrorIs(t, err, types.ErrInvalidTimeframe, timeframe)
		assert.Nil(t, candles)
	}
}

func TestBuildOHLCVC_Empty(t *testing.T) {
	candles, err := BuildOHLCVC(nil, "1m")
	require.NoError(t, err)
	assert.NotNil(t, candles)
	assert.Empty(t, candles)
}

func TestBuildOHLCVC_DoesNotMutateTrades(t *testing.T) {
	trades := append([]types.Trade{}, basicTrades...)
	_, err := BuildOHLCVC(trades, "1m")
	require.NoError(t, err)
	assert.Equal(t, basicTrades, trades)
}

func TestBuildOHLCVC_UnsortedInput(t *testing.T) {
	trades := []types.Trade{
		{Timestamp: 120000, Price: 10, Amount: 1},
		{Timestamp: 0, Price: 20, Amount: 1},
	}

	// an older trade is folded into the open bucket by position
	candles, err := BuildOHLCVC(trades, "1m")
	require.NoError(t, err)
	assert.Equal(t, []types.Candle{
		{Timestamp: 120000, Open: 10, High: 20, Low: 10, Close: 20, Volume: 2, Count: 2},
	}, candles)

	_, err = BuildOHLCVC(trades, "1m", WithStrictOrdering())
	assert.ErrorIs(t, err, ErrUnsortedTrades)

	candles, err = BuildOHLCVC(basicTrades, "1m", WithStrictOrdering())
	assert.NoError(t, err)
	assert.Len(t, candles, 2)
}

func TestBuildOHLCVC_StrictIgnoresSkippedTrades(t *testing.T) {
	trades := []types.Trade{
		{Timestamp: 90000, Price: 1, Amount: 1},
		{Timestamp: 10, Price: 2, Amount: 1},
		{Timestamp: 120000, Price: 3, Amount: 1},
	}

	// trade #1 is dropped by since before the ordering check runs
	candles, err := BuildOHLCVC(trades, "1m", WithSince(60000), WithStrictOrdering())
	require.NoError(t, err)
	assert.Len(t, candles, 2)
}
