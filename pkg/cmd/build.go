package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/c9s/ohlcv/pkg/datasource/csvsource"
	"github.com/c9s/ohlcv/pkg/datasource/jsonsource"
	"github.com/c9s/ohlcv/pkg/ohlcv"
	"github.com/c9s/ohlcv/pkg/service"
	"github.com/c9s/ohlcv/pkg/style"
	"github.com/c9s/ohlcv/pkg/types"
	"github.com/c9s/ohlcv/pkg/util"
	"github.com/c9s/ohlcv/pkg/util/backoff"
)

func init() {
	BuildCmd.Flags().String("file", "", "trade file, or a directory of csv trade files")
	BuildCmd.Flags().String("format", "plain", "trade file format: binance, bybit, plain or json")
	BuildCmd.Flags().StringSlice("timeframe", nil, "candle timeframe, can be repeated (defaults to the config timeframes)")
	BuildCmd.Flags().Int64("since", 0, "skip trades older than this millisecond timestamp")
	BuildCmd.Flags().Int("limit", 0, "index of the last trade to aggregate (inclusive)")
	BuildCmd.Flags().Bool("strict", false, "reject trades that are not sorted by timestamp")
	BuildCmd.Flags().Bool("sort", false, "sort the trades by timestamp before aggregating")
	BuildCmd.Flags().String("symbol", "", "symbol of the trades, required by --output, --save-db and --save-cache")
	BuildCmd.Flags().String("output", "", "write the candles as csv files under this directory")
	BuildCmd.Flags().Bool("json", false, "print the candles as json tuples")
	BuildCmd.Flags().Bool("save-db", false, "save the candles into the configured database")
	BuildCmd.Flags().Bool("save-cache", false, "save the candles into the configured redis cache")
	RootCmd.AddCommand(BuildCmd)
}

// buildFlags holds the parsed flags of the build command
type buildFlags struct {
	file, format, symbol, output string

	timeframes []string
	options    []ohlcv.Option

	sort, json, saveDB, saveCache bool
}

func parseBuildFlags(cmd *cobra.Command) (*buildFlags, error) {
	var f buildFlags
	var err error

	flags := cmd.Flags()
	if f.file, err = flags.GetString("file"); err != nil {
		return nil, err
	} else if f.file == "" {
		return nil, errors.New("--file is required")
	}

	if f.format, err = flags.GetString("format"); err != nil {
		return nil, err
	}

	if f.symbol, err = flags.GetString("symbol"); err != nil {
		return nil, err
	}

	if f.output, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	if f.timeframes, err = flags.GetStringSlice("timeframe"); err != nil {
		return nil, err
	}

	if len(f.timeframes) == 0 {
		f.timeframes = userConfig.TimeframeStrings()
	}

	for _, timeframe := range f.timeframes {
		if _, err := types.ParseTimeframe(timeframe); err != nil {
			return nil, err
		}
	}

	if flags.Changed("since") {
		since, err := flags.GetInt64("since")
		if err != nil {
			return nil, err
		}
		f.options = append(f.options, ohlcv.WithSince(since))
	}

	if flags.Changed("limit") {
		limit, err := flags.GetInt("limit")
		if err != nil {
			return nil, err
		}
		f.options = append(f.options, ohlcv.WithLimit(limit))
	}

	strict, err := flags.GetBool("strict")
	if err != nil {
		return nil, err
	}

	if strict || userConfig.StrictOrdering {
		f.options = append(f.options, ohlcv.WithStrictOrdering())
	}

	for name, dst := range map[string]*bool{
		"sort":       &f.sort,
		"json":       &f.json,
		"save-db":    &f.saveDB,
		"save-cache": &f.saveCache,
	} {
		if *dst, err = flags.GetBool(name); err != nil {
			return nil, err
		}
	}

	if f.symbol == "" && (f.output != "" || f.saveDB || f.saveCache) {
		return nil, errors.New("--symbol is required by --output, --save-db and --save-cache")
	}

	return &f, nil
}

func readTrades(file, format string) ([]types.Trade, error) {
	if format == "json" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return jsonsource.ParseTrades(data)
	}

	decoder, ok := csvsource.DecoderByName(format)
	if !ok {
		return nil, fmt.Errorf("unsupported trade file format %q", format)
	}

	return csvsource.ReadTradesFromCSV(file, decoder)
}

// BuildCmd aggregates a trade file into candles
var BuildCmd = &cobra.Command{
	Use:     "build",
	Short:   "build candles from a trade file",
	Example: "ohlcv build --file BTCUSDT-aggTrades-2023-10.csv --format binance --timeframe 1m --timeframe 1h",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		flags, err := parseBuildFlags(cmd)
		if err != nil {
			return err
		}

		trades, err := readTrades(flags.file, flags.format)
		if err != nil {
			return err
		}

		log.Infof("loaded %d trades from %s", len(trades), flags.file)

		if flags.sort {
			types.SortTrades(trades)
		}

		builder := ohlcv.Builder{Options: flags.options}
		results, err := builder.BuildMulti(ctx, trades, flags.timeframes)
		if err != nil {
			return err
		}

		var store *service.CandleService
		if flags.saveDB {
			db, err := connectDatabase(ctx)
			if err != nil {
				return err
			}
			defer func() {
				util.LogErr(db.Close(), "unable to close the database")
			}()
			store = service.NewCandleService(db.DB)
		}

		var cache *service.RedisCandleCache
		if flags.saveCache {
			if userConfig.Redis == nil {
				return errors.New("redis is not configured")
			}
			cache = service.NewRedisCandleCache(*userConfig.Redis)
			defer func() {
				util.LogErr(cache.Close(), "unable to close the redis client")
			}()
		}

		out := cmd.OutOrStdout()
		for _, timeframe := range flags.timeframes {
			candles := results[timeframe]
			if err := outputCandles(out, flags, types.Timeframe(timeframe), candles); err != nil {
				return err
			}

			if store != nil {
				if err := store.BatchInsert(ctx, flags.symbol, types.Timeframe(timeframe), candles); err != nil {
					return err
				}
				log.Infof("saved %d %s %s candles into the database", len(candles), flags.symbol, timeframe)
			}

			if cache != nil {
				if err := cache.Save(ctx, flags.symbol, types.Timeframe(timeframe), candles); err != nil {
					return err
				}
			}
		}

		return nil
	},
}

func outputCandles(out io.Writer, flags *buildFlags, timeframe types.Timeframe, candles []types.Candle) error {
	switch {
	case flags.output != "":
		if len(candles) == 0 {
			log.Warnf("no %s candles to write", timeframe)
			return nil
		}

		fileName, err := csvsource.WriteCandlesFile(flags.output, flags.symbol, timeframe, candles)
		if err != nil {
			return err
		}
		log.Infof("%d %s candles written to %s", len(candles), timeframe, fileName)
		return nil

	case flags.json:
		_, err := fmt.Fprintf(out, "%s\n", jsonsource.MarshalCandles(candles))
		return err
	}

	title := fmt.Sprintf("%s %s candles", flags.symbol, timeframe)
	style.RenderCandles(out, title, candles)
	return nil
}

func connectDatabase(ctx context.Context) (*service.DatabaseService, error) {
	if userConfig.Database == nil {
		return nil, errors.New("database is not configured")
	}

	db, err := service.NewDatabaseService(userConfig.Database.Driver, userConfig.Database.DSN)
	if err != nil {
		return nil, err
	}

	if err := backoff.RetryConnect(ctx, userConfig.Database.Driver+" database", db.Connect); err != nil {
		return nil, err
	}

	if err := db.Upgrade(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
