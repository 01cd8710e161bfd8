package service

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"github.com/c9s/ohlcv/pkg/types"
)

var ErrCandleNotFound = errors.New("candle not found")

// candleBatchSize keeps a multi-row insert under the placeholder limits of sqlite and mysql
const candleBatchSize = 500

var candleColumns = []string{"timestamp", "open", "high", "low", "close", "volume", "count"}

// CandleService stores the built candles keyed by symbol, timeframe and bucket timestamp.
type CandleService struct {
	DB *sqlx.DB

	dialect DatabaseDialect
}

func NewCandleService(db *sqlx.DB) *CandleService {
	return &CandleService{
		DB:      db,
		dialect: GetDialect(db.DriverName()),
	}
}

func (s *CandleService) Insert(ctx context.Context, symbol string, timeframe types.Timeframe, candle types.Candle) error {
	query, args, err := s.insertBuilder(symbol, timeframe, []types.Candle{candle}).ToSql()
	if err != nil {
		return err
	}

	_, err = s.DB.ExecContext(ctx, query, args...)
	return err
}

// BatchInsert upserts the candles in one transaction.
func (s *CandleService) BatchInsert(ctx context.Context, symbol string, timeframe types.Timeframe, candles []types.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	for start := 0; start < len(candles); start += candleBatchSize {
		end := start + candleBatchSize
		if end > len(candles) {
			end = len(candles)
		}

		query, args, err := s.insertBuilder(symbol, timeframe, candles[start:end]).ToSql()
		if err != nil {
			return rollback(tx, err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return rollback(tx, err)
		}
	}

	return tx.Commit()
}

func rollback(tx *sqlx.Tx, err error) error {
	if e := tx.Rollback(); e != nil {
		log.WithError(e).Errorf("cannot rollback candle insertion: %v", err)
	}
	return err
}

func (s *CandleService) insertBuilder(symbol string, timeframe types.Timeframe, candles []types.Candle) sq.InsertBuilder {
	b := sq.Insert("candles").
		Columns(append([]string{"symbol", "timeframe"}, candleColumns...)...).
		Suffix(s.dialect.CandleUpsertSuffix()).
		PlaceholderFormat(s.dialect.PlaceholderFormat())

	for _, c := range candles {
		b = b.Values(symbol, timeframe.String(), c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume, c.Count)
	}

	return b
}

// Query returns the candles at or after since, oldest first. A zero limit means no limit.
func (s *CandleService) Query(ctx context.Context, symbol string, timeframe types.Timeframe, since int64, limit uint64) ([]types.Candle, error) {
	sel := sq.Select(candleColumns...).
		From("candles").
		Where(sq.Eq{"symbol": symbol, "timeframe": timeframe.String()}).
		Where(sq.GtOrEq{"timestamp": since}).
		OrderBy("timestamp ASC").
		PlaceholderFormat(s.dialect.PlaceholderFormat())

	if limit > 0 {
		sel = sel.Limit(limit)
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	candles := make([]types.Candle, 0)
	if err := s.DB.SelectContext(ctx, &candles, query, args...); err != nil {
		return nil, err
	}

	return candles, nil
}

// QueryLast returns the latest stored candle, e.g. to resume an aggregation with since.
func (s *CandleService) QueryLast(ctx context.Context, symbol string, timeframe types.Timeframe) (*types.Candle, error) {
	query, args, err := sq.Select(candleColumns...).
		From("candles").
		Where(sq.Eq{"symbol": symbol, "timeframe": timeframe.String()}).
		OrderBy("timestamp DESC").
		Limit(1).
		PlaceholderFormat(s.dialect.PlaceholderFormat()).
		ToSql()
	if err != nil {
		return nil, err
	}

	var candle types.Candle
	if err := s.DB.GetContext(ctx, &candle, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandleNotFound
		}
		return nil, err
	}

	return &candle, nil
}
