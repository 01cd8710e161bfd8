package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/ohlcv/pkg/migrations"
)

func TestMigrations(t *testing.T) {
	ms := Migrations()
	require.NotEmpty(t, ms)
	assert.Equal(t, int64(20251015120000), ms[0].Version)
	assert.Equal(t, migrations.PackageName, ms[0].Package)
}
