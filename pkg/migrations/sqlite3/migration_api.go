package sqlite3

import (
	"github.com/c9s/rockhopper/v2"

	"github.com/c9s/ohlcv/pkg/migrations"
)

var registry = migrations.Registry{}

func AddMigration(up, down rockhopper.TransactionHandler) {
	registry.Add(migrations.PackageName, up, down)
}

func Migrations() rockhopper.MigrationSlice {
	return registry.Migrations()
}
