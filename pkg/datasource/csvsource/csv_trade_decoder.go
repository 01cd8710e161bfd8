package csvsource

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/c9s/ohlcv/pkg/types"
)

var (
	// ErrNotEnoughColumns is returned when the CSV trade record does not have enough columns.
	ErrNotEnoughColumns = errors.New("not enough columns")

	// ErrInvalidTimeFormat is returned when the CSV trade record does not have a valid unix timestamp.
	ErrInvalidTimeFormat = errors.New("cannot parse time string")

	// ErrInvalidPriceFormat is returned when the CSV trade price is not a positive decimal.
	ErrInvalidPriceFormat = errors.New("price must be in valid decimal format")

	// ErrInvalidVolumeFormat is returned when the CSV trade size is not a positive decimal.
	ErrInvalidVolumeFormat = errors.New("volume must be in valid float format")
)

var errNotPositive = errors.New("value must be a positive number")

// microsecondThreshold separates millisecond from microsecond timestamps, binance
// switched its spot dumps to microseconds in 2025.
const microsecondThreshold = 1e14

// CSVTradeDecoder is an extension point for CSVTradeReader to support custom file formats.
// A nil trade with a nil error means the record is skipped (e.g. a header).
type CSVTradeDecoder func(record []string, index int) (*types.Trade, error)

// BinanceCSVTradeDecoder decodes a binance aggTrades dump record:
// aggTradeId,price,quantity,firstTradeId,lastTradeId,timestamp,isBuyerMaker,isBestMatch
func BinanceCSVTradeDecoder(row []string, index int) (*types.Trade, error) {
	if len(row) < 7 {
		return nil, ErrNotEnoughColumns
	}

	timestamp, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		if index == 0 {
			return nil, nil
		}
		return nil, ErrInvalidTimeFormat
	}

	if timestamp > microsecondThreshold {
		timestamp /= 1000
	}

	price, err := parsePositive(row[1])
	if err != nil {
		return nil, ErrInvalidPriceFormat
	}

	size, err := parsePositive(row[2])
	if err != nil {
		return nil, ErrInvalidVolumeFormat
	}

	side := types.SideTypeBuy
	if strings.EqualFold(row[6], "true") {
		// the buyer is the maker, so the taker sold
		side = types.SideTypeSell
	}

	return &types.Trade{
		ID:        row[0],
		Side:      side,
		Timestamp: timestamp,
		Price:     price,
		Amount:    size,
	}, nil
}

// BybitCSVTradeDecoder decodes a bybit public trading history record:
// timestamp,symbol,side,size,price,tickDirection,trdMatchID,grossValue,homeNotional,foreignNotional
// The first row is the header.
func BybitCSVTradeDecoder(row []string, index int) (*types.Trade, error) {
	if index == 0 {
		return nil, nil
	}

	if len(row) < 7 {
		return nil, ErrNotEnoughColumns
	}

	timestamp, err := parseSecondsToMillis(row[0])
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}

	size, err := parsePositive(row[3])
	if err != nil {
		return nil, ErrInvalidVolumeFormat
	}

	price, err := parsePositive(row[4])
	if err != nil {
		return nil, ErrInvalidPriceFormat
	}

	return &types.Trade{
		ID:        row[6],
		Symbol:    row[1],
		Side:      types.ParseSideType(row[2]),
		Timestamp: timestamp,
		Price:     price,
		Amount:    size,
	}, nil
}

// PlainCSVTradeDecoder decodes timestamp_ms,price,amount[,side[,id]] records.
// A non-numeric first row is treated as a header.
func PlainCSVTradeDecoder(row []string, index int) (*types.Trade, error) {
	if len(row) < 3 {
		return nil, ErrNotEnoughColumns
	}

	timestamp, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		if index == 0 {
			return nil, nil
		}
		return nil, ErrInvalidTimeFormat
	}

	price, err := parsePositive(row[1])
	if err != nil {
		return nil, ErrInvalidPriceFormat
	}

	amount, err := parsePositive(row[2])
	if err != nil {
		return nil, ErrInvalidVolumeFormat
	}

	trade := &types.Trade{
		Timestamp: timestamp,
		Price:     price,
		Amount:    amount,
	}

	if len(row) > 3 {
		trade.Side = types.ParseSideType(strings.TrimSpace(row[3]))
	}

	if len(row) > 4 {
		trade.ID = strings.TrimSpace(row[4])
	}

	return trade, nil
}

// DecoderByName returns the decoder registered for the format name.
func DecoderByName(name string) (CSVTradeDecoder, bool) {
	switch strings.ToLower(name) {
	case "binance":
		return BinanceCSVTradeDecoder, true
	case "bybit":
		return BybitCSVTradeDecoder, true
	case "plain", "csv":
		return PlainCSVTradeDecoder, true
	}
	return nil, false
}

func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errNotPositive
	}

	return v, nil
}

// parseSecondsToMillis parses "1698623884.4630" into 1698623884463 without going through float64.
func parseSecondsToMillis(s string) (int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	seconds, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}

	if len(frac) > 3 {
		frac = frac[:3]
	}
	frac += strings.Repeat("0", 3-len(frac))

	millis, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return 0, err
	}

	if strings.HasPrefix(whole, "-") {
		return seconds*1000 - int64(millis), nil
	}
	return seconds*1000 + int64(millis), nil
}
