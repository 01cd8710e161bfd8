package ohlcv

import (
	"errors"
	"fmt"

	"github.com/c9s/ohlcv/pkg/types"
)

// ErrUnsortedTrades is only returned in strict ordering mode.
var ErrUnsortedTrades = errors.New("trades are not sorted by timestamp")

type buildStats struct {
	processed int
	skipped   int
}

// BuildOHLCVC aggregates trades into sparse OHLCV candles with a trade count.
//
// Trades must be sorted oldest first. No sorting is done here: without
// WithStrictOrdering, a trade older than the open bucket is folded into that
// bucket by position. Empty buckets are never emitted.
func BuildOHLCVC(trades []types.Trade, timeframe string, opts ...Option) ([]types.Candle, error) {
	candles, _, err := build(trades, timeframe, newOptions(opts))
	return candles, err
}

func build(trades []types.Trade, timeframe string, o options) ([]types.Candle, buildStats, error) {
	var stats buildStats

	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	seconds, err := types.ParseTimeframe(timeframe)
	if err != nil {
		return nil, stats, err
	}

	bucketMs := seconds * 1000

	oldest := len(trades) - 1
	if o.limit < oldest {
		oldest = o.limit
	}

	var (
		candles = make([]types.Candle, 0)
		current *types.Candle
		last    int64
	)

	for i := 0; i <= oldest; i++ {
		trade := trades[i]
		if trade.Timestamp < o.since {
			stats.skipped++
			continue
		}

		if o.strict && stats.processed > 0 && trade.Timestamp < last {
			return nil, stats, fmt.Errorf("%w: trade #%d at %d is older than %d", ErrUnsortedTrades, i, trade.Timestamp, last)
		}

		last = trade.Timestamp
		stats.processed++

		openingTime := types.FloorTimestamp(trade.Timestamp, bucketMs)
		if current == nil || openingTime >= current.Timestamp+bucketMs {
			if current != nil {
				candles = append(candles, *current)
			}

			candle := types.NewCandle(openingTime, trade)
			current = &candle
			continue
		}

		current.Update(trade)
	}

	if current != nil {
		candles = append(candles, *current)
	}

	return candles, stats, nil
}
