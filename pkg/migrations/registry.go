package migrations

import (
	"fmt"
	"runtime"

	"github.com/c9s/rockhopper/v2"
)

// PackageName is the migration package of the candle store
const PackageName = "ohlcv"

// Registry holds the go migrations of one sql dialect, keyed by version.
type Registry map[int64]*rockhopper.Migration

// Add registers a migration versioned by the numeric prefix of the caller's file name,
// e.g. 20251015120000_candles.go.
func (r Registry) Add(packageName string, up, down rockhopper.TransactionHandler) {
	_, filename, _, _ := runtime.Caller(1)
	r.AddNamed(packageName, filename, up, down)
}

func (r Registry) AddNamed(packageName, filename string, up, down rockhopper.TransactionHandler) {
	v, err := rockhopper.FileNumericComponent(filename)
	if err != nil {
		panic(fmt.Sprintf("failed to add migration %q: %v", filename, err))
	}

	if existing, ok := r[v]; ok {
		panic(fmt.Sprintf("failed to add migration %q: version conflicts with %q", filename, existing.Source))
	}

	r[v] = &rockhopper.Migration{
		Package:    packageName,
		Registered: true,

		Version: v,
		UpFn:    up,
		DownFn:  down,
		Source:  filename,
		UseTx:   true,
	}
}

// Migrations returns the registered migrations sorted by version and linked together.
func (r Registry) Migrations() rockhopper.MigrationSlice {
	var migrations rockhopper.MigrationSlice
	for _, m := range r {
		migrations = append(migrations, m)
	}
	return migrations.SortAndConnect()
}
