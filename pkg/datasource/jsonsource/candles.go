package jsonsource

import (
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/c9s/ohlcv/pkg/types"
)

// MarshalCandles encodes candles as an array of [timestamp, open, high, low, close, volume, count] tuples.
func MarshalCandles(candles []types.Candle) []byte {
	var a fastjson.Arena

	arr := a.NewArray()
	for i, c := range candles {
		tuple := a.NewArray()
		tuple.SetArrayItem(0, a.NewNumberString(strconv.FormatInt(c.Timestamp, 10)))
		tuple.SetArrayItem(1, a.NewNumberFloat64(c.Open))
		tuple.SetArrayItem(2, a.NewNumberFloat64(c.High))
		tuple.SetArrayItem(3, a.NewNumberFloat64(c.Low))
		tuple.SetArrayItem(4, a.NewNumberFloat64(c.Close))
		tuple.SetArrayItem(5, a.NewNumberFloat64(c.Volume))
		tuple.SetArrayItem(6, a.NewNumberString(strconv.FormatInt(c.Count, 10)))
		arr.SetArrayItem(i, tuple)
	}

	return arr.MarshalTo(nil)
}
