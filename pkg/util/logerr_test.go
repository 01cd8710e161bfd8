package util

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/c9s/ohlcv/pkg/types"
)

func TestLogErr(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	assert.False(t, LogErr(nil, "never logged"))
	assert.Empty(t, hook.AllEntries())

	assert.True(t, LogErr(errors.New("boom"), "unable to cache %s candles", "BTCUSDT"))
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		assert.Equal(t, "unable to cache BTCUSDT candles", hook.LastEntry().Message)
	}
}

func TestWarnFirstLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()

	w := NewWarnFirstLogger(2, time.Hour, logger)
	for i := 0; i < 3; i++ {
		w.WarnOrError(errors.New("db down"), "BTCUSDT", types.Timeframe1m, "unable to store candles #%d", i)
	}

	// a different series has its own budget
	w.WarnOrError(errors.New("db down"), "ETHUSDT", types.Timeframe1m, "unable to store candles")

	entries := hook.AllEntries()
	if assert.Len(t, entries, 4) {
		assert.Equal(t, logrus.WarnLevel, entries[0].Level)
		assert.Equal(t, logrus.WarnLevel, entries[1].Level)
		assert.Equal(t, logrus.ErrorLevel, entries[2].Level)
		assert.Equal(t, logrus.WarnLevel, entries[3].Level)

		assert.Equal(t, "BTCUSDT", entries[0].Data["symbol"])
		assert.Equal(t, types.Timeframe1m, entries[0].Data["timeframe"])
		assert.Equal(t, "unable to store candles #2", entries[2].Message)
		assert.Equal(t, "ETHUSDT", entries[3].Data["symbol"])
	}
}
