package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenSQLiteInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"groups", "group_memberships", "resource_owners", "resource_permissions", "audit_logs"} {
		require.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestMigrateNilHandle(t *testing.T) {
	require.Error(t, Migrate(nil))
}
