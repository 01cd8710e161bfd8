package mysql

import (
	"context"

	"github.com/c9s/rockhopper/v2"
)

func init() {
	AddMigration(upCandles, downCandles)
}

func upCandles(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	_, err = tx.ExecContext(ctx, "CREATE TABLE candles\n(\n    symbol    VARCHAR(32) NOT NULL,\n    timeframe VARCHAR(8)  NOT NULL,\n    timestamp BIGINT      NOT NULL,\n    open      DOUBLE NOT NULL,\n    high      DOUBLE NOT NULL,\n    low       DOUBLE NOT NULL,\n    close     DOUBLE NOT NULL,\n    volume    DOUBLE NOT NULL,\n    count     BIGINT      NOT NULL,\n    PRIMARY KEY (symbol, timeframe, timestamp)\n);")
	return err
}

func downCandles(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	_, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS candles;")
	return err
}
