package server

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/c9s/ohlcv/pkg/datasource/jsonsource"
	"github.com/c9s/ohlcv/pkg/ohlcv"
	"github.com/c9s/ohlcv/pkg/service"
	"github.com/c9s/ohlcv/pkg/types"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ohlcv.ErrUnsortedTrades):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrUnsupportedTimeframe),
		errors.Is(err, types.ErrInvalidTimeframe),
		errors.Is(err, types.ErrMalformedTrade):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) timeframeQuery(c *gin.Context) (types.Timeframe, error) {
	timeframe := types.Timeframe(c.DefaultQuery("timeframe", s.Timeframe.String()))
	if timeframe == "" {
		timeframe = ohlcv.DefaultTimeframe
	}
	return timeframe, timeframe.Validate()
}

func queryInt64(c *gin.Context, key string) (int64, bool, error) {
	str, ok := c.GetQuery(key)
	if !ok || str == "" {
		return 0, false, nil
	}

	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, true, nil
}

func (s *Server) getTimeframe(c *gin.Context) {
	timeframe := c.Param("timeframe")
	seconds, err := types.ParseTimeframe(timeframe)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timeframe":    timeframe,
		"seconds":      seconds,
		"milliseconds": seconds * 1000,
	})
}

func (s *Server) roundTimeframe(c *gin.Context) {
	timestamp, ok, err := queryInt64(c, "timestamp")
	if err != nil || !ok {
		abortWithError(c, http.StatusBadRequest, errors.New("timestamp query parameter in milliseconds is required"))
		return
	}

	direction, err := types.ParseRoundDirection(c.Query("direction"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	rounded, err := types.RoundTimeframe(c.Param("timeframe"), timestamp, direction)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timeframe": c.Param("timeframe"),
		"timestamp": rounded,
		"direction": direction.String(),
	})
}

// buildOHLCV aggregates the posted json trades.
// Query parameters: timeframe, since, limit (trade index bound), strict, symbol (persist when set).
func (s *Server) buildOHLCV(c *gin.Context) {
	timeframe, err := s.timeframeQuery(c)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}

	var opts []ohlcv.Option
	if since, ok, err := queryInt64(c, "since"); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	} else if ok {
		opts = append(opts, ohlcv.WithSince(since))
	}

	if limit, ok, err := queryInt64(c, "limit"); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	} else if ok {
		opts = append(opts, ohlcv.WithLimit(int(limit)))
	}

	strict := s.StrictOrdering
	if str, ok := c.GetQuery("strict"); ok {
		if strict, err = strconv.ParseBool(str); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("strict must be a boolean: %w", err))
			return
		}
	}

	if strict {
		opts = append(opts, ohlcv.WithStrictOrdering())
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			abortWithError(c, http.StatusRequestEntityTooLarge, err)
			return
		}
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	trades, err := jsonsource.ParseTrades(body)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	candles, err := s.builder.Build(trades, timeframe.String(), opts...)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}

	response := gin.H{
		"timeframe": timeframe,
		"candles":   tuples(candles),
	}

	if symbol := c.Query("symbol"); symbol != "" {
		response["symbol"] = symbol
		response["stored"] = s.persist(c, symbol, timeframe, candles)
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) persist(c *gin.Context, symbol string, timeframe types.Timeframe, candles []types.Candle) bool {
	ctx := c.Request.Context()
	stored := false

	if s.Store != nil {
		if err := s.Store.BatchInsert(ctx, symbol, timeframe, candles); err != nil {
			s.warnFirst.WarnOrError(err, symbol, timeframe, "unable to store %d candles", len(candles))
		} else {
			stored = true
		}
	}

	if s.Cache != nil {
		if err := s.Cache.Save(ctx, symbol, timeframe, candles); err != nil {
			s.warnFirst.WarnOrError(err, symbol, timeframe, "unable to cache candles")
		}
	}

	return stored
}

func (s *Server) queryCandles(c *gin.Context) {
	symbol := c.Param("symbol")

	timeframe, err := s.timeframeQuery(c)
	if err != nil {
		abortWithError(c, errorStatus(err), err)
		return
	}

	since, hasSince, err := queryInt64(c, "since")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	} else if !hasSince {
		since = math.MinInt64
	}

	limit, hasLimit, err := queryInt64(c, "limit")
	if err != nil || limit < 0 {
		abortWithError(c, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
		return
	}

	ctx := c.Request.Context()

	// the cache only holds the full series, so it can not serve a ranged query
	if s.Cache != nil && !hasSince && !hasLimit {
		candles, err := s.Cache.Load(ctx, symbol, timeframe)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"symbol": symbol, "timeframe": timeframe, "candles": tuples(candles), "source": "cache"})
			return
		}

		if !errors.Is(err, service.ErrCacheMiss) {
			s.warnFirst.WarnOrError(err, symbol, timeframe, "unable to load candles from cache")
		}
	}

	if s.Store == nil {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("no candles of %s %s", symbol, timeframe))
		return
	}

	candles, err := s.Store.Query(ctx, symbol, timeframe, since, uint64(limit))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "timeframe": timeframe, "candles": tuples(candles), "source": "database"})
}

func tuples(candles []types.Candle) [][]interface{} {
	out := make([][]interface{}, len(candles))
	for i, c := range candles {
		out[i] = c.Tuple()
	}
	return out
}
