package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"goalpulse/internal/audit"
	"goalpulse/internal/config"
	"goalpulse/internal/dashboard"
	"goalpulse/internal/db"
	"goalpulse/internal/goals"
	"goalpulse/internal/notify"
	"goalpulse/internal/snapshot"
	"goalpulse/internal/workspace"
)

// app is the wired runtime for one workspace.
type app struct {
	ws       *workspace.Workspace
	cfg      config.Config
	logger   *log.Logger
	audit    *audit.Logger
	source   *goals.FileSource
	local    *snapshot.FileStore
	store    snapshot.Store
	notifier *notify.Notifier
	now      func() time.Time

	db *sql.DB
}

type appOptions struct {
	GoalsPath string
	AsOf      string
}

func openApp(ctx context.Context, workspacePath string, opts appOptions) (*app, error) {
	if strings.TrimSpace(workspacePath) == "" {
		return nil, fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(workspacePath)
	if err != nil {
		return nil, err
	}
	if err := ws.EnsureDirs(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadFromFile(ws.ConfigPath)
	if err != nil {
		return nil, err
	}
	loc := cfg.Location()

	now, err := clockFor(opts.AsOf, loc)
	if err != nil {
		return nil, err
	}

	goalsPath := cfg.Goals.Path
	if opts.GoalsPath != "" {
		goalsPath = opts.GoalsPath
	}
	goalsPath, err = ws.ResolvePath(goalsPath)
	if err != nil {
		return nil, fmt.Errorf("resolve goals path: %w", err)
	}
	historyPath, err := ws.ResolvePath(cfg.Snapshots.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot path: %w", err)
	}

	a := &app{
		ws:       ws,
		cfg:      cfg,
		logger:   log.New(os.Stderr, appName+": ", log.LstdFlags),
		audit:    audit.NewLogger(ws.AuditDBPath),
		source:   &goals.FileSource{Path: goalsPath},
		notifier: &notify.Notifier{Enabled: cfg.Notify.Enabled},
		now:      now,
	}

	a.local = snapshot.NewFileStore(historyPath)
	a.local.Retention = cfg.Snapshots.RetentionDays
	a.local.Now = now

	a.store = snapshot.NewFallbackStore(a.openPrimary(ctx), a.local, a.logger)
	return a, nil
}

// clockFor returns the wall clock in loc, or a fixed clock when asOf is set.
func clockFor(asOf string, loc *time.Location) (func() time.Time, error) {
	if asOf == "" {
		return func() time.Time { return time.Now().In(loc) }, nil
	}
	t, ok := goals.ParseTime(asOf, loc)
	if !ok {
		return nil, fmt.Errorf("parse --as-of %q", asOf)
	}
	return func() time.Time { return t }, nil
}

// openPrimary connects the configured database. Any failure degrades to the
// local store.
func (a *app) openPrimary(ctx context.Context) snapshot.Store {
	conn, err := db.Connect(ctx, a.cfg.DB)
	if err != nil {
		a.logger.Printf("primary snapshot store unavailable: %v", err)
		return nil
	}
	if conn == nil {
		return nil
	}
	primary := snapshot.NewSQLStore(conn, db.Dialect(a.cfg.DB.Driver)).WithClock(a.now)
	if err := primary.EnsureSchema(ctx); err != nil {
		a.logger.Printf("primary snapshot store unavailable: %v", err)
		_ = conn.Close()
		return nil
	}
	a.db = conn
	return primary
}

func (a *app) service() (*dashboard.Service, error) {
	return dashboard.New(dashboard.Options{
		Source:        a.source,
		Store:         a.store,
		Notifier:      a.notifier,
		Audit:         a.audit,
		Logger:        a.logger,
		SourceTimeout: a.cfg.Source.Timeout,
		HistoryDays:   a.cfg.Trends.HistoryDays,
		CacheTTL:      a.cfg.Cache.TTL,
		CacheSize:     a.cfg.Cache.Size,
		Location:      a.cfg.Location(),
		Now:           a.now,
	})
}

func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
