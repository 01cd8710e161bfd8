package util

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/c9s/ohlcv/pkg/types"
)

// LogErr logs the error with the message and arguments if the error is not nil.
// It returns true if the error is not nil.
//
//	LogErr(err)
//	LogErr(err, "unable to close the database")
//	LogErr(err, "unable to cache %s candles", symbol)
func LogErr(err error, msgAndArgs ...interface{}) bool {
	if err == nil {
		return false
	}

	switch len(msgAndArgs) {
	case 0:
		logrus.WithError(err).Error(err.Error())
	case 1:
		logrus.WithError(err).Error(msgAndArgs[0].(string))
	default:
		logrus.WithError(err).Errorf(msgAndArgs[0].(string), msgAndArgs[1:]...)
	}

	return true
}

// WarnFirstLogger reports repeated persistence failures of a candle series. Failures of the
// same symbol and timeframe are logged at warning level while they stay under threshold per
// window and at error level after that. Every series has its own budget.
type WarnFirstLogger struct {
	logger    logrus.FieldLogger
	threshold int
	window    time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewWarnFirstLogger(threshold int, window time.Duration, logger logrus.FieldLogger) *WarnFirstLogger {
	return &WarnFirstLogger{
		logger:    logger,
		threshold: threshold,
		window:    window,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (w *WarnFirstLogger) limiter(symbol string, timeframe types.Timeframe) *rate.Limiter {
	key := symbol + ":" + timeframe.String()

	w.mu.Lock()
	defer w.mu.Unlock()

	limiter, ok := w.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(w.window), w.threshold)
		w.limiters[key] = limiter
	}
	return limiter
}

// WarnOrError logs a failure of the symbol and timeframe series with both as log fields.
func (w *WarnFirstLogger) WarnOrError(err error, symbol string, timeframe types.Timeframe, msg string, args ...interface{}) {
	entry := w.logger.WithFields(logrus.Fields{
		"symbol":    symbol,
		"timeframe": timeframe,
	})

	if err != nil {
		entry = entry.WithError(err)
	}

	if w.limiter(symbol, timeframe).Allow() {
		entry.Warnf(msg, args...)
	} else {
		entry.Errorf(msg, args...)
	}
}
