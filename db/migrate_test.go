package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	conn, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn, nil))

	// schema_migrations records every applied version
	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.GreaterOrEqual(t, count, 2)

	// snapshots table exists after 001
	_, err = conn.Exec("SELECT id, created_at, description, module_order, enabled_state FROM snapshots")
	assert.NoError(t, err)
}

func TestMigrateIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	conn, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn, nil))

	var before int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&before))

	require.NoError(t, Migrate(conn, nil))

	var after int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&after))
	assert.Equal(t, before, after)
}
