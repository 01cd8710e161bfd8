package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/c9s/ohlcv/pkg/server"
	"github.com/c9s/ohlcv/pkg/service"
	"github.com/c9s/ohlcv/pkg/util"
	"github.com/c9s/ohlcv/pkg/util/backoff"
)

func init() {
	ServeCmd.Flags().String("bind", "", "bind address of the http api (defaults to the config server.bind)")
	RootCmd.AddCommand(ServeCmd)
}

// ServeCmd runs the http api
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the candle http api",
	RunE: func(cmd *cobra.Command, args []string) error {
		bind, err := cmd.Flags().GetString("bind")
		if err != nil {
			return err
		}

		if bind == "" {
			bind = userConfig.Server.Bind
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()

		srv := server.New(userConfig.Timeframe, userConfig.StrictOrdering)

		if userConfig.Database != nil {
			db, err := connectDatabase(ctx)
			if err != nil {
				return err
			}

			defer func() {
				util.LogErr(db.Close(), "unable to close the database")
			}()

			srv.Store = service.NewCandleService(db.DB)
			log.Infof("candles are stored in the %s database", db.Driver)
		}

		if userConfig.Redis != nil {
			cache := service.NewRedisCandleCache(*userConfig.Redis)
			err := backoff.RetryConnect(ctx, "redis "+userConfig.Redis.Addr, func() error {
				return cache.Ping(ctx)
			})
			if err != nil {
				log.WithError(err).Warnf("redis %s is not reachable, the candle cache is disabled", userConfig.Redis.Addr)
			} else {
				srv.Cache = cache
			}

			defer func() {
				util.LogErr(cache.Close(), "unable to close the redis client")
			}()
		}

		return srv.Run(ctx, bind)
	},
}
