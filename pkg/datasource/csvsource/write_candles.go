package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/c9s/ohlcv/pkg/types"
)

var candleHeader = []string{"timestamp", "open", "high", "low", "close", "volume", "count"}

// WriteCandles writes the candles as csv rows with a header.
func WriteCandles(w io.Writer, candles []types.Candle) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(candleHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for _, c := range candles {
		row := []string{
			strconv.FormatInt(c.Timestamp, 10),
			formatFloat(c.Open),
			formatFloat(c.High),
			formatFloat(c.Low),
			formatFloat(c.Close),
			formatFloat(c.Volume),
			strconv.FormatInt(c.Count, 10),
		}

		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing record")
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCandlesFile writes the candles under dir/candles/<timeframe>/<symbol>-<from>[-<to>].csv
// and returns the file path.
func WriteCandlesFile(dir, symbol string, timeframe types.Timeframe, candles []types.Candle) (fileName string, err error) {
	if len(candles) == 0 {
		return "", fmt.Errorf("no candles to write")
	}

	from := candles[0].StartTime().UTC()
	end := candles[len(candles)-1].StartTime().UTC()
	to := ""
	if end.Format(time.DateOnly) != from.Format(time.DateOnly) {
		to = "-" + end.Format(time.DateOnly)
	}

	dir = filepath.Join(dir, "candles", timeframe.String())
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	fileName = filepath.Join(dir, fmt.Sprintf("%s-%s%s.csv", symbol, from.Format(time.DateOnly), to))

	file, err := os.Create(fileName)
	if err != nil {
		return "", errors.Wrap(err, "failed to open file")
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := WriteCandles(file, candles); err != nil {
		return "", err
	}

	return fileName, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
