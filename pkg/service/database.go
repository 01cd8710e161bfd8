package service

import (
	"context"

	"github.com/c9s/rockhopper/v2"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/c9s/ohlcv/pkg/migrations/mysql"
	"github.com/c9s/ohlcv/pkg/migrations/postgres"
	"github.com/c9s/ohlcv/pkg/migrations/sqlite3"
)

type DatabaseService struct {
	Driver string
	DSN    string
	DB     *sqlx.DB
}

func NewDatabaseService(driver, dsn string) (*DatabaseService, error) {
	if driver == "mysql" {
		var err error
		dsn, err = ReformatMysqlDSN(dsn)
		if err != nil {
			return nil, err
		}
	}

	return &DatabaseService{
		Driver: driver,
		DSN:    dsn,
	}, nil
}

func (s *DatabaseService) Connect() error {
	var err error
	s.DB, err = sqlx.Connect(s.Driver, s.DSN)
	return errors.Wrapf(err, "unable to connect to %s database", s.Driver)
}

func (s *DatabaseService) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Upgrade applies the candle store migrations of the driver that are not applied yet.
func (s *DatabaseService) Upgrade(ctx context.Context) error {
	dialect, err := rockhopper.LoadDialect(s.Driver)
	if err != nil {
		return err
	}

	var migrations rockhopper.MigrationSlice
	switch s.Driver {
	case "sqlite3":
		migrations = sqlite3.Migrations()
	case "mysql":
		migrations = mysql.Migrations()
	case "postgres":
		migrations = postgres.Migrations()
	default:
		return errors.Errorf("no migrations for driver %s", s.Driver)
	}

	// sqlx.DB is different from sql.DB
	rh := rockhopper.New(s.Driver, dialect, s.DB.DB, rockhopper.TableName)
	if err := rh.Touch(ctx); err != nil {
		return errors.Wrap(err, "unable to create the migration version table")
	}

	_, lastAppliedMigration, err := rh.FindLastAppliedMigration(ctx, migrations)
	if err != nil {
		return err
	}

	next := migrations.Head()
	if lastAppliedMigration != nil {
		next = lastAppliedMigration.Next
	}

	if next == nil {
		return nil
	}

	return errors.Wrap(rockhopper.Up(ctx, rh, next, 0), "unable to migrate the candle store")
}

func ReformatMysqlDSN(dsn string) (string, error) {
	config, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}

	config.ParseTime = true
	dsn = config.FormatDSN()
	return dsn, nil
}
