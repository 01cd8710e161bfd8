package ohlcv

import "math"

// DefaultTimeframe is used when BuildOHLCVC receives an empty timeframe.
const DefaultTimeframe = "1m"

type options struct {
	since  int64
	limit  int
	strict bool
}

func newOptions(opts []Option) options {
	o := options{
		since: math.MinInt64,
		limit: math.MaxInt,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

type Option func(o *options)

// WithSince skips trades with a timestamp (ms) lower than since.
func WithSince(since int64) Option {
	return func(o *options) {
		o.since = since
	}
}

// WithLimit bounds the index of the last trade examined, inclusively.
// A limit of 0 processes only trades[0]; it does not cap the number of candles.
func WithLimit(limit int) Option {
	return func(o *options) {
		o.limit = limit
	}
}

// WithStrictOrdering makes the aggregation fail with ErrUnsortedTrades when
// a processed trade is older than the one before it.
func WithStrictOrdering() Option {
	return func(o *options) {
		o.strict = true
	}
}
