package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "resguard",
		Password: "secret",
		Name:     "resguard",
		Host:     "db.internal",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=db.internal")
	require.Contains(t, dsn, "port=5433")
	require.Contains(t, dsn, "dbname=resguard")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{Name: "resguard"})
	require.Error(t, err)

	dsn, err = buildPostgresDSN(Config{DSN: "postgres://u:p@h/db"})
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@h/db", dsn)
}

func TestBuildSQLiteDSN(t *testing.T) {
	dsn, err := buildSQLiteDSN(Config{})
	require.NoError(t, err)
	require.Equal(t, "file::memory:?cache=shared&_foreign_keys=1", dsn)

	dsn, err = buildSQLiteDSN(Config{Path: t.TempDir() + "/resguard.sqlite"})
	require.NoError(t, err)
	require.Contains(t, dsn, "_journal_mode=WAL")
	require.Contains(t, dsn, "_busy_timeout=5000")
	require.Contains(t, dsn, "_foreign_keys=1")

	dsn, err = buildSQLiteDSN(Config{DSN: "file:custom.db?_foreign_keys=1"})
	require.NoError(t, err)
	require.Equal(t, "file:custom.db?_foreign_keys=1", dsn)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "resguard",
		Password: "secret",
		Name:     "resguard",
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "resguard:secret@tcp(127.0.0.1:3306)/resguard")
	require.Contains(t, dsn, "parseTime=true")
	require.Contains(t, dsn, "charset=utf8mb4")
	require.Contains(t, dsn, "loc=Local")

	dsn, err = buildMySQLDSN(Config{
		User:    "resguard",
		Name:    "resguard",
		Options: map[string]string{"tls": "skip-verify"},
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "tls=skip-verify")

	_, err = buildMySQLDSN(Config{User: "resguard"})
	require.Error(t, err)
}
