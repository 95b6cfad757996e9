package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"goalpulse/internal/config"
	"goalpulse/internal/snapshot"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Connect opens the primary snapshot database. An empty DSN returns nil.
func Connect(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}
	driver, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.MaxIdleTime)

	pingCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// Dialect maps a configured driver to the snapshot store dialect.
func Dialect(driver string) snapshot.Dialect {
	if name, _ := driverName(driver); name == "sqlite" {
		return snapshot.DialectSQLite
	}
	return snapshot.DialectPostgres
}

func driverName(driver string) (string, error) {
	switch driver {
	case "", "pgx", "postgres", "postgresql":
		return "pgx", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", driver)
	}
}
