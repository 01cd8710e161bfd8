package postgres

import (
	"context"

	"github.com/c9s/rockhopper/v2"
)

func init() {
	AddMigration(upCandles, downCandles)
}

func upCandles(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	_, err = tx.ExecContext(ctx, "CREATE TABLE candles\n(\n    symbol    VARCHAR(32) NOT NULL,\n    timeframe VARCHAR(8)  NOT NULL,\n    timestamp BIGINT      NOT NULL,\n    open      DOUBLE PRECISION NOT NULL,\n    high      DOUBLE PRECISION NOT NULL,\n    low       DOUBLE PRECISION NOT NULL,\n    close     DOUBLE PRECISION NOT NULL,\n    volume    DOUBLE PRECISION NOT NULL,\n    count     BIGINT      NOT NULL,\n    PRIMARY KEY (symbol, timeframe, timestamp)\n);")
	return err
}

func downCandles(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	_, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS candles;")
	return err
}
