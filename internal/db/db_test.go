package db

import (
	"context"
	"path/filepath"
	"testing"

	"goalpulse/internal/config"
	"goalpulse/internal/snapshot"
)

func TestConnect_Empty(t *testing.T) {
	db, err := Connect(context.Background(), config.DBConfig{DSN: ""})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if db != nil {
		t.Error("expected nil db for empty DSN")
	}
}

func TestConnect_UnknownDriver(t *testing.T) {
	if _, err := Connect(context.Background(), config.DBConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestConnect_SQLite(t *testing.T) {
	cfg := config.Default().DB
	cfg.Driver = "sqlite"
	cfg.DSN = filepath.Join(t.TempDir(), "snapshots.sqlite")

	db, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	store := snapshot.NewSQLStore(db, Dialect(cfg.Driver))
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
}

func TestDialect(t *testing.T) {
	cases := map[string]snapshot.Dialect{
		"":         snapshot.DialectPostgres,
		"pgx":      snapshot.DialectPostgres,
		"postgres": snapshot.DialectPostgres,
		"sqlite":   snapshot.DialectSQLite,
		"sqlite3":  snapshot.DialectSQLite,
	}
	for driver, want := range cases {
		if got := Dialect(driver); got != want {
			t.Errorf("Dialect(%q) = %s, want %s", driver, got, want)
		}
	}
}
