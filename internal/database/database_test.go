package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/database"
)

func TestDialect_Rebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?) ON CONFLICT (a) DO UPDATE SET b = ?"

	assert.Equal(t, q, database.SQLite.Rebind(q))
	assert.Equal(t,
		"INSERT INTO t (a, b) VALUES ($1, $2) ON CONFLICT (a) DO UPDATE SET b = $3",
		database.Postgres.Rebind(q))
}

func TestParseDialect(t *testing.T) {
	d, err := database.ParseDialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, database.SQLite, d)

	_, err = database.ParseDialect("mysql")
	assert.Error(t, err)
}

func TestMigrate_SQLite(t *testing.T) {
	dsn := "file:" + t.TempDir() + "/tally.db"

	require.NoError(t, database.Migrate(database.SQLite, dsn))
	// Running again is a no-op.
	require.NoError(t, database.Migrate(database.SQLite, dsn))

	db, err := database.New(database.SQLite, dsn)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'accounts', 'transactions', 'category_rules')`).Scan(&n))
	assert.Equal(t, 4, n)
}
