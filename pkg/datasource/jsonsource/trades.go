package jsonsource

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
	"go.uber.org/multierr"

	"github.com/c9s/ohlcv/pkg/types"
)

// ParseTrades decodes a json array of unified trades:
//
//	[{"id": "1", "symbol": "BTCUSDT", "side": "buy", "timestamp": 1698623884463, "price": "34469.5", "amount": 0.002}]
//
// timestamp, price and amount are required and may be numbers or numeric strings.
// Every malformed element is reported, combined into one multierr error.
func ParseTrades(data []byte) ([]types.Trade, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse trades payload")
	}

	arr, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: payload must be a json array of trades, got %s", types.ErrMalformedTrade, v.Type())
	}

	var errs error
	trades := make([]types.Trade, 0, len(arr))
	for i, item := range arr {
		trade, err := parseTrade(item)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: trade #%d: %v", types.ErrMalformedTrade, i, err))
			continue
		}

		trades = append(trades, trade)
	}

	if errs != nil {
		return nil, errs
	}

	return trades, nil
}

func parseTrade(v *fastjson.Value) (trade types.Trade, err error) {
	if v.Type() != fastjson.TypeObject {
		return trade, fmt.Errorf("expecting an object, got %s", v.Type())
	}

	if trade.Timestamp, err = parseTimestamp(v, "timestamp"); err != nil {
		return trade, err
	}

	if trade.Price, err = parseNumber(v, "price"); err != nil {
		return trade, err
	}

	if trade.Amount, err = parseNumber(v, "amount"); err != nil {
		return trade, err
	}

	if err := trade.Validate(); err != nil {
		return trade, err
	}

	trade.ID = parseOptionalString(v, "id")
	trade.Symbol = parseOptionalString(v, "symbol")
	trade.Side = types.ParseSideType(parseOptionalString(v, "side"))
	return trade, nil
}

func parseTimestamp(v *fastjson.Value, key string) (int64, error) {
	f := v.Get(key)
	if f == nil {
		return 0, fmt.Errorf("missing %q", key)
	}

	switch f.Type() {
	case fastjson.TypeNumber:
		if i, err := f.Int64(); err == nil {
			return i, nil
		}

		// exponent notation, e.g. 1.6986e12
		ff, err := f.Float64()
		if err != nil || ff != math.Trunc(ff) {
			return 0, fmt.Errorf("%q must be an integer of milliseconds", key)
		}
		return int64(ff), nil

	case fastjson.TypeString:
		i, err := strconv.ParseInt(string(f.GetStringBytes()), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q must be an integer of milliseconds: %w", key, err)
		}
		return i, nil
	}

	return 0, fmt.Errorf("%q must be a number, got %s", key, f.Type())
}

func parseNumber(v *fastjson.Value, key string) (float64, error) {
	f := v.Get(key)
	if f == nil {
		return 0, fmt.Errorf("missing %q", key)
	}

	switch f.Type() {
	case fastjson.TypeNumber:
		return f.Float64()

	case fastjson.TypeString:
		n, err := strconv.ParseFloat(string(f.GetStringBytes()), 64)
		if err != nil {
			return 0, fmt.Errorf("%q must be numeric: %w", key, err)
		}
		return n, nil
	}

	return 0, fmt.Errorf("%q must be a number, got %s", key, f.Type())
}

func parseOptionalString(v *fastjson.Value, key string) string {
	f := v.Get(key)
	if f == nil {
		return ""
	}

	switch f.Type() {
	case fastjson.TypeString:
		return string(f.GetStringBytes())
	case fastjson.TypeNumber:
		return f.String()
	}
	return ""
}
