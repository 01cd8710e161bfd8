package csvsource

import (
	"encoding/csv"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/ohlcv/pkg/types"
)

func TestBinanceCSVTradeDecoder(t *testing.T) {
	tests := []struct {
		name string
		give string
		want *types.Trade
		err  error
	}{
		{
			name: "Read Trade",
			give: "11782578,6.00000000,1.00000000,14974844,14974844,1698623884463,True,True",
			want: &types.Trade{ID: "11782578", Side: types.SideTypeSell, Timestamp: 1698623884463, Price: 6, Amount: 1},
		},
		{
			name: "Microsecond timestamp",
			give: "11782578,6.5,2,14974844,14974844,1738368000123456,False,True",
			want: &types.Trade{ID: "11782578", Side: types.SideTypeBuy, Timestamp: 1738368000123, Price: 6.5, Amount: 2},
		},
		{
			name: "Not enough columns",
			give: "1609459200000,28923.63000000,29031.34000000",
			err:  ErrNotEnoughColumns,
		},
		{
			name: "Invalid time format",
			give: "11782578,6.00000000,1.00000000,14974844,14974844,23/12/2021,True,True",
			err:  ErrInvalidTimeFormat,
		},
		{
			name: "Invalid price format",
			give: "11782578,sixty,1.00000000,14974844,14974844,1698623884463,True,True",
			err:  ErrInvalidPriceFormat,
		},
		{
			name: "Invalid size format",
			give: "11782578,1.00000000,one,14974844,14974844,1698623884463,True,True",
			err:  ErrInvalidVolumeFormat,
		},
		{
			name: "Negative size",
			give: "11782578,1.00000000,-1,14974844,14974844,1698623884463,True,True",
			err:  ErrInvalidVolumeFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trade, err := BinanceCSVTradeDecoder(strings.Split(tt.give, ","), 1)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.want, trade)
		})
	}
}

func TestBinanceCSVTradeDecoder_Header(t *testing.T) {
	trade, err := BinanceCSVTradeDecoder(strings.Split("agg_trade_id,price,quantity,first_trade_id,last_trade_id,transact_time,is_buyer_maker", ","), 0)
	assert.NoError(t, err)
	assert.Nil(t, trade)
}

func TestBybitCSVTradeDecoder(t *testing.T) {
	header := strings.Split("timestamp,symbol,side,size,price,tickDirection,trdMatchID,grossValue,homeNotional,foreignNotional", ",")
	trade, err := BybitCSVTradeDecoder(header, 0)
	assert.NoError(t, err)
	assert.Nil(t, trade)

	row := strings.Split("1698623884.4630,BTCUSDT,Sell,0.002,34469.5,ZeroMinusTick,a7b7d2c1-5f5e-5b8b-a7e4-3c5d3b0c0c0b,6.8939e+09,0.002,68.939", ",")
	trade, err = BybitCSVTradeDecoder(row, 1)
	require.NoError(t, err)
	assert.Equal(t, &types.Trade{
		ID:        "a7b7d2c1-5f5e-5b8b-a7e4-3c5d3b0c0c0b",
		Symbol:    "BTCUSDT",
		Side:      types.SideTypeSell,
		Timestamp: 1698623884463,
		Price:     34469.5,
		Amount:    0.002,
	}, trade)

	row[0] = "1698623884"
	trade, err = BybitCSVTradeDecoder(row, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1698623884000), trade.Timestamp)

	row[0] = "yesterday"
	_, err = BybitCSVTradeDecoder(row, 3)
	assert.Equal(t, ErrInvalidTimeFormat, err)

	_, err = BybitCSVTradeDecoder(row[:3], 4)
	assert.Equal(t, ErrNotEnoughColumns, err)
}

func TestPlainCSVTradeDecoder(t *testing.T) {
	trade, err := PlainCSVTradeDecoder([]string{"timestamp", "price", "amount"}, 0)
	assert.NoError(t, err)
	assert.Nil(t, trade)

	trade, err = PlainCSVTradeDecoder([]string{"30000", "12", "2", "buy", "t-1"}, 1)
	require.NoError(t, err)
	assert.Equal(t, &types.Trade{ID: "t-1", Side: types.SideTypeBuy, Timestamp: 30000, Price: 12, Amount: 2}, trade)

	_, err = PlainCSVTradeDecoder([]string{"x", "12", "2"}, 1)
	assert.Equal(t, ErrInvalidTimeFormat, err)

	_, err = PlainCSVTradeDecoder([]string{"1", "0", "2"}, 1)
	assert.Equal(t, ErrInvalidPriceFormat, err)
}

func TestDecoderByName(t *testing.T) {
	for _, name := range []string{"binance", "Bybit", "plain", "csv"} {
		_, ok := DecoderByName(name)
		assert.True(t, ok, name)
	}

	_, ok := DecoderByName("okex")
	assert.False(t, ok)
}

func TestCSVTradeReader_ReadAll(t *testing.T) {
	data := "timestamp,price,amount\n0,10,1\n30000,12,2\n60000,9,1\n"
	reader := NewCSVTradeReader(csv.NewReader(strings.NewReader(data)))

	trades, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []types.Trade{
		{Timestamp: 0, Price: 10, Amount: 1},
		{Timestamp: 30000, Price: 12, Amount: 2},
		{Timestamp: 60000, Price: 9, Amount: 1},
	}, trades)
}

func TestCSVTradeReader_MalformedRecord(t *testing.T) {
	data := "0,10,1\n30000,twelve,2\n"
	reader := NewCSVTradeReader(csv.NewReader(strings.NewReader(data)))

	trade, err := reader.Read()
	require.NoError(t, err)
	assert.NotNil(t, trade)

	_, err = reader.Read()
	assert.ErrorIs(t, err, types.ErrMalformedTrade)
	assert.ErrorIs(t, err, ErrInvalidPriceFormat)
	assert.Contains(t, err.Error(), "record 1")

	_, err = reader.Read()
	assert.Equal(t, io.EOF, err)
}

func TestParseSecondsToMillis(t *testing.T) {
	tests := []struct {
		give string
		want int64
	}{
		{"1698623884.4630", 1698623884463},
		{"1698623884", 1698623884000},
		{"1.5", 1500},
		{"1.05", 1050},
		{"-1.5", -1500},
		{"-0.5", -500},
		{"-2", -2000},
	}

	for _, tt := range tests {
		got, err := parseSecondsToMillis(tt.give)
		if assert.NoError(t, err, tt.give) {
			assert.Equal(t, tt.want, got, tt.give)
		}
	}

	for _, give := range []string{"", "abc", "1.x", "1.-5"} {
		_, err := parseSecondsToMillis(give)
		assert.Error(t, err, give)
	}
}
