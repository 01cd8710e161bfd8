package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/c9s/ohlcv/pkg/ohlcv"
	"github.com/c9s/ohlcv/pkg/types"
	"github.com/c9s/ohlcv/pkg/util"
)

var log = logrus.WithField("component", "server")

// DefaultMaxBodyBytes bounds the trade payload of a single aggregation request.
const DefaultMaxBodyBytes = 32 << 20

type CandleStore interface {
	BatchInsert(ctx context.Context, symbol string, timeframe types.Timeframe, candles []types.Candle) error
	Query(ctx context.Context, symbol string, timeframe types.Timeframe, since int64, limit uint64) ([]types.Candle, error)
}

type CandleCache interface {
	Save(ctx context.Context, symbol string, timeframe types.Timeframe, candles []types.Candle) error
	Load(ctx context.Context, symbol string, timeframe types.Timeframe) ([]types.Candle, error)
}

type Server struct {
	// Timeframe is used when the request does not specify one
	Timeframe types.Timeframe

	// StrictOrdering is the default of the strict query parameter
	StrictOrdering bool

	MaxBodyBytes int64

	// Store and Cache are optional
	Store CandleStore
	Cache CandleCache

	builder   ohlcv.Builder
	warnFirst *util.WarnFirstLogger
}

func New(timeframe types.Timeframe, strict bool) *Server {
	return &Server{
		Timeframe:      timeframe,
		StrictOrdering: strict,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		builder:        ohlcv.Builder{Logger: log},
		warnFirst:      util.NewWarnFirstLogger(5, time.Minute, log),
	}
}

func (s *Server) newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		AllowMethods:  []string{"GET", "POST"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/api/timeframes/:timeframe", s.getTimeframe)
	r.GET("/api/timeframes/:timeframe/round", s.roundTimeframe)
	r.POST("/api/ohlcv", s.buildOHLCV)
	r.GET("/api/candles/:symbol", s.queryCandles)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Handler returns the http handler of the api.
func (s *Server) Handler() http.Handler {
	return s.newEngine()
}

// Run serves the api on bind until ctx is done.
func (s *Server) Run(ctx context.Context, bind string) error {
	srv := &http.Server{
		Addr:              bind,
		Handler:           s.newEngine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		log.Infof("api server listening on %s", bind)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		log.Infof("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
