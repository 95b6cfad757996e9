package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goalpulse/internal/dashboard"
)

const (
	DefaultInterval      = time.Hour
	DefaultWatchInterval = 30 * time.Second
)

// Refresher recomputes the dashboard.
type Refresher interface {
	Refresh(ctx context.Context) (dashboard.Dashboard, error)
	Invalidate()
}

// Auditor records daemon lifecycle events.
type Auditor interface {
	LogEvent(actor string, eventType string, payload any) error
}

// Daemon refreshes the dashboard on a fixed interval and whenever the goals
// file changes.
type Daemon struct {
	Service       Refresher
	Watcher       *FileWatcher
	Audit         Auditor
	Logger        *log.Logger
	Workspace     string
	Interval      time.Duration
	WatchInterval time.Duration

	// HandleSignals stops the loop on SIGINT/SIGTERM.
	HandleSignals bool
}

// Config holds daemon configuration.
type Config struct {
	Service       Refresher
	Audit         Auditor
	Logger        *log.Logger
	Workspace     string
	GoalsPath     string
	Interval      time.Duration
	WatchInterval time.Duration
}

// New creates a daemon with defaults applied.
func New(cfg Config) (*Daemon, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("dashboard service is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = DefaultWatchInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	d := &Daemon{
		Service:       cfg.Service,
		Audit:         cfg.Audit,
		Logger:        cfg.Logger,
		Workspace:     cfg.Workspace,
		Interval:      cfg.Interval,
		WatchInterval: cfg.WatchInterval,
		HandleSignals: true,
	}
	if cfg.GoalsPath != "" {
		d.Watcher = NewFileWatcher(cfg.GoalsPath)
	}
	return d, nil
}

// Run refreshes once, then loops until ctx is cancelled or a signal arrives.
// Refresh failures are logged and the loop continues.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.HandleSignals {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	d.record("daemon_started", map[string]any{
		"workspace":      d.Workspace,
		"interval":       d.Interval.String(),
		"watch_interval": d.WatchInterval.String(),
	})

	if d.Watcher != nil {
		if _, err := d.Watcher.Changed(); err != nil {
			d.Logger.Printf("watch goals: %v", err)
		}
	}
	d.refresh(ctx, "startup")

	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	var watchC <-chan time.Time
	if d.Watcher != nil {
		watchTicker := time.NewTicker(d.WatchInterval)
		defer watchTicker.Stop()
		watchC = watchTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			d.record("daemon_stopped", map[string]any{"workspace": d.Workspace})
			return nil

		case <-ticker.C:
			d.refresh(ctx, "interval")

		case <-watchC:
			changed, err := d.Watcher.Changed()
			if err != nil {
				d.Logger.Printf("watch goals: %v", err)
				continue
			}
			if changed {
				d.Service.Invalidate()
				d.refresh(ctx, "goals_changed")
			}
		}
	}
}

func (d *Daemon) refresh(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	dash, err := d.Service.Refresh(ctx)
	if err != nil {
		d.Logger.Printf("refresh (%s) failed: %v", trigger, err)
		return
	}
	d.Logger.Printf("refresh (%s): %d goals, health %d (%s)",
		trigger, dash.GoalCount, dash.Company.HealthScore, dash.Company.HealthStatus)
}

func (d *Daemon) record(eventType string, payload map[string]any) {
	if d.Audit == nil {
		return
	}
	if err := d.Audit.LogEvent("daemon", eventType, payload); err != nil {
		d.Logger.Printf("audit log failed: %v", err)
	}
}
