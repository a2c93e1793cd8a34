package database

import (
	"chiller-selector/internal/config"
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// New opens the chiller store selected by cfg.DBDriver and returns a Bun DB handle.
func New(cfg *config.Config) (*bun.DB, error) {
	var (
		db  *bun.DB
		err error
	)

	switch cfg.DBDriver {
	case "postgres":
		db = newPostgres(cfg.DatabaseURL)
	case "sqlite", "":
		db, err = NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	// Optional query logging
	if cfg.BunDebug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := prepare(ctx, db, cfg.DBDriver); err != nil {
		return nil, err
	}
	return db, nil
}

// prepare checks the connection and applies session settings. The handle is
// closed when either step fails.
func prepare(ctx context.Context, db *bun.DB, driver string) error {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "postgres" {
		if _, err := db.ExecContext(ctx, `SET statement_timeout = '120s';`); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to set database configuration: %w", err)
		}
	}
	return nil
}

func newPostgres(dsn string) *bun.DB {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(60*time.Second),
		pgdriver.WithDialTimeout(15*time.Second),
		pgdriver.WithReadTimeout(60*time.Second),
		pgdriver.WithWriteTimeout(30*time.Second),
	)

	sqldb := sql.OpenDB(connector)

	sqldb.SetMaxOpenConns(10)
	sqldb.SetMaxIdleConns(5)
	sqldb.SetConnMaxLifetime(5 * time.Minute)
	sqldb.SetConnMaxIdleTime(10 * time.Minute)

	return bun.NewDB(sqldb, pgdialect.New())
}

// NewSQLite opens a local single-writer store. Use ":memory:" for a throwaway
// database; the pool is pinned to one connection so every call sees the same data.
func NewSQLite(path string) (*bun.DB, error) {
	dsn := "file:" + path + "?_busy_timeout=5000"
	if path == ":memory:" {
		dsn = ":memory:"
	}

	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
