package service

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// DatabaseDialect provides database-specific SQL syntax for the candle queries
type DatabaseDialect interface {
	// CandleUpsertSuffix is appended to the candle insert statement
	// so that re-aggregated buckets overwrite the stored ones
	CandleUpsertSuffix() string

	PlaceholderFormat() sq.PlaceholderFormat
}

// GetDialect returns the appropriate dialect for the given driver name
func GetDialect(driverName string) DatabaseDialect {
	switch driverName {
	case "mysql":
		return &MySQLDialect{}
	case "postgres":
		return &PostgreSQLDialect{}
	case "sqlite3":
		return &SQLiteDialect{}
	default:
		return &SQLiteDialect{} // default fallback
	}
}

var candleValueColumns = []string{"open", "high", "low", "close", "volume", "count"}

// MySQLDialect implements MySQL-specific SQL syntax
type MySQLDialect struct{}

func (d *MySQLDialect) CandleUpsertSuffix() string {
	clause := "ON DUPLICATE KEY UPDATE "
	for i, col := range candleValueColumns {
		if i > 0 {
			clause += ", "
		}
		clause += fmt.Sprintf("%s = VALUES(%s)", col, col)
	}
	return clause
}

func (d *MySQLDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

// PostgreSQLDialect implements PostgreSQL-specific SQL syntax
type PostgreSQLDialect struct{}

func (d *PostgreSQLDialect) CandleUpsertSuffix() string {
	return onConflictUpdate()
}

func (d *PostgreSQLDialect) PlaceholderFormat() sq.PlaceholderFormat {
	// PostgreSQL uses dollar placeholder format ($1, $2, etc.)
	return sq.Dollar
}

// SQLiteDialect implements SQLite-specific SQL syntax
type SQLiteDialect struct{}

func (d *SQLiteDialect) CandleUpsertSuffix() string {
	return onConflictUpdate()
}

func (d *SQLiteDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func onConflictUpdate() string {
	clause := "ON CONFLICT (symbol, timeframe, timestamp) DO UPDATE SET "
	for i, col := range candleValueColumns {
		if i > 0 {
			clause += ", "
		}
		clause += fmt.Sprintf("%s = excluded.%s", col, col)
	}
	return clause
}
