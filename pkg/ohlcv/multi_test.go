package ohlcv

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/ohlcv/pkg/metrics"
	"github.com/c9s/ohlcv/pkg/types"
)

func TestBuilder_Build(t *testing.T) {
	before := testutil.ToFloat64(metrics.CandlesBuiltMetrics.WithLabelValues("30s"))
	skippedBefore := testutil.ToFloat64(metrics.TradesSkippedMetrics.WithLabelValues("30s"))

	b := &Builder{Options: []Option{WithSince(1)}}
	candles, err := b.Build(basicTrades, "30s")
	require.NoError(t, err)
	assert.Len(t, candles, 2)

	assert.Equal(t, before+2, testutil.ToFloat64(metrics.CandlesBuiltMetrics.WithLabelValues("30s")))
	assert.Equal(t, skippedBefore+1, testutil.ToFloat64(metrics.TradesSkippedMetrics.WithLabelValues("30s")))
}

func TestBuilder_BuildError(t *testing.T) {
	before := testutil.ToFloat64(metrics.BuildErrorMetrics.WithLabelValues("9q"))

	var b Builder
	_, err := b.Build(basicTrades, "9q")
	assert.ErrorIs(t, err, types.ErrUnsupportedTimeframe)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BuildErrorMetrics.WithLabelValues("9q")))
}

func TestBuildMulti(t *testing.T) {
	results, err := BuildMulti(context.Background(), basicTrades, []string{"1m", "1h", "15s"})
	require.NoError(t, err)

	assert.Len(t, results["1m"], 2)
	assert.Equal(t, []types.Candle{
		{Timestamp: 0, Open: 10, High: 12, Low: 9, Close: 9, Volume: 4, Count: 3},
	}, results["1h"])
	assert.Len(t, results["15s"], 3)
}

func TestBuildMulti_Error(t *testing.T) {
	results, err := BuildMulti(context.Background(), basicTrades, []string{"1m", "1x"})
	assert.ErrorIs(t, err, types.ErrUnsupportedTimeframe)
	assert.Nil(t, results)
}
