package ohlcv

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/c9s/ohlcv/pkg/metrics"
	"github.com/c9s/ohlcv/pkg/types"
)

// Builder wraps BuildOHLCVC with prometheus metrics and debug logging.
// The zero value is ready to use.
type Builder struct {
	Options []Option

	Logger log.FieldLogger
}

func (b *Builder) logger() log.FieldLogger {
	if b.Logger != nil {
		return b.Logger
	}
	return log.WithField("component", "ohlcv")
}

func (b *Builder) Build(trades []types.Trade, timeframe string, opts ...Option) ([]types.Candle, error) {
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	o := newOptions(append(append([]Option{}, b.Options...), opts...))

	startTime := time.Now()
	candles, stats, err := build(trades, timeframe, o)
	if err != nil {
		metrics.ObserveBuildError(timeframe)
		return nil, err
	}

	duration := time.Since(startTime)
	metrics.ObserveBuild(timeframe, len(candles), stats.processed, stats.skipped, duration)

	b.logger().Debugf("built %d %s candles from %d trades (%d skipped) in %s",
		len(candles), timeframe, stats.processed, stats.skipped, duration)
	return candles, nil
}

// BuildMulti builds the candles of every timeframe concurrently from the same
// read-only trade slice. The first failure cancels the rest.
func (b *Builder) BuildMulti(ctx context.Context, trades []types.Trade, timeframes []string, opts ...Option) (map[string][]types.Candle, error) {
	var (
		mu      sync.Mutex
		results = make(map[string][]types.Candle, len(timeframes))
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, timeframe := range timeframes {
		timeframe := timeframe
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			candles, err := b.Build(trades, timeframe, opts...)
			if err != nil {
				return err
			}

			mu.Lock()
			results[timeframe] = candles
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// BuildMulti is a shortcut of (&Builder{}).BuildMulti.
func BuildMulti(ctx context.Context, trades []types.Trade, timeframes []string, opts ...Option) (map[string][]types.Candle, error) {
	var b Builder
	return b.BuildMulti(ctx, trades, timeframes, opts...)
}
