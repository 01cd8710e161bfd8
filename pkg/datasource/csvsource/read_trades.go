package csvsource

import (
	"encoding/csv"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/c9s/ohlcv/pkg/types"
)

// ReadTradesFromCSV reads a single .csv file or every .csv file under a directory,
// in lexical file order, with the given decoder. Trades keep their file order.
func ReadTradesFromCSV(path string, decoder CSVTradeDecoder) ([]types.Trade, error) {
	var trades []types.Trade

	err := filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(path) != ".csv" {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}

		//nolint:errcheck // Read ops only so safe to ignore err return
		defer file.Close()

		reader := NewCSVTradeReaderWithDecoder(csv.NewReader(file), decoder)
		newTrades, err := reader.ReadAll()
		if err != nil {
			return errors.Wrapf(err, "unable to read trades from %s", path)
		}

		trades = append(trades, newTrades...)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return trades, nil
}
