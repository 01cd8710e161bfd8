package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/c9s/ohlcv/pkg/types"
)

// CSVTradeReader reads unified trades from CSV records with a pluggable decoder.
type CSVTradeReader struct {
	csv     *csv.Reader
	decoder CSVTradeDecoder
	index   int
}

// MakeCSVTradeReader is a factory method type that creates a new CSVTradeReader.
type MakeCSVTradeReader func(csv *csv.Reader) *CSVTradeReader

// NewCSVTradeReader creates a new CSVTradeReader with the plain decoder.
func NewCSVTradeReader(csv *csv.Reader) *CSVTradeReader {
	return NewCSVTradeReaderWithDecoder(csv, PlainCSVTradeDecoder)
}

// NewCSVTradeReaderWithDecoder creates a new CSVTradeReader with the given decoder.
func NewCSVTradeReaderWithDecoder(csv *csv.Reader, decoder CSVTradeDecoder) *CSVTradeReader {
	csv.FieldsPerRecord = -1
	csv.ReuseRecord = true
	return &CSVTradeReader{
		csv:     csv,
		decoder: decoder,
	}
}

func NewBinanceCSVTradeReader(csv *csv.Reader) *CSVTradeReader {
	return NewCSVTradeReaderWithDecoder(csv, BinanceCSVTradeDecoder)
}

func NewBybitCSVTradeReader(csv *csv.Reader) *CSVTradeReader {
	return NewCSVTradeReaderWithDecoder(csv, BybitCSVTradeDecoder)
}

// Read reads the next record. It returns (nil, nil) for a skipped record and io.EOF at the end.
// Decode failures are reported as types.ErrMalformedTrade together with the decoder error.
func (r *CSVTradeReader) Read() (*types.Trade, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return nil, err
	}

	index := r.index
	r.index++

	trade, err := r.decoder(rec, index)
	if err != nil {
		return nil, fmt.Errorf("%w: record %d: %w", types.ErrMalformedTrade, index, err)
	}

	return trade, nil
}

// ReadAll reads all the trades from the underlying CSV data, in file order.
func (r *CSVTradeReader) ReadAll() (trades []types.Trade, err error) {
	for {
		trade, err := r.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return trades, err
		}

		if trade == nil {
			continue
		}

		trades = append(trades, *trade)
	}

	return trades, nil
}
