package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var CandlesBuiltMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ohlcv_candles_built_total",
		Help: "number of candles emitted by the trade aggregator",
	}, []string{"timeframe"})

var TradesProcessedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ohlcv_trades_processed_total",
		Help: "number of trades folded into candles",
	}, []string{"timeframe"})

var TradesSkippedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ohlcv_trades_skipped_total",
		Help: "number of trades skipped because they are older than since",
	}, []string{"timeframe"})

var BuildDurationMetrics = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ohlcv_build_duration_seconds",
		Help:    "time spent aggregating trades into candles",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"timeframe"})

var BuildErrorMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ohlcv_build_errors_total",
		Help: "number of failed aggregations",
	}, []string{"timeframe"})

func ObserveBuild(timeframe string, candles, processed, skipped int, duration time.Duration) {
	CandlesBuiltMetrics.WithLabelValues(timeframe).Add(float64(candles))
	TradesProcessedMetrics.WithLabelValues(timeframe).Add(float64(processed))
	TradesSkippedMetrics.WithLabelValues(timeframe).Add(float64(skipped))
	BuildDurationMetrics.WithLabelValues(timeframe).Observe(duration.Seconds())
}

func ObserveBuildError(timeframe string) {
	BuildErrorMetrics.WithLabelValues(timeframe).Inc()
}

func init() {
	prometheus.MustRegister(
		CandlesBuiltMetrics,
		TradesProcessedMetrics,
		TradesSkippedMetrics,
		BuildDurationMetrics,
		BuildErrorMetrics,
	)
}
