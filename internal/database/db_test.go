package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chiller-selector/internal/config"
)

func TestNew_SQLite(t *testing.T) {
	db, err := New(&config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "chillers.db")})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.PingContext(context.Background()))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "oracle"})
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}

func TestNew_ClosesHandleWhenUnreachable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "chillers.db")

	_, err := New(&config.Config{DBDriver: "sqlite", SQLitePath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")

	db, err := NewSQLite(path)
	require.NoError(t, err)
	require.Error(t, prepare(context.Background(), db, "sqlite"))
	assert.EqualError(t, db.PingContext(context.Background()), "sql: database is closed")
}
