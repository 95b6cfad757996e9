package dashboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"goalpulse/internal/cache"
	"goalpulse/internal/goals"
	"goalpulse/internal/metrics"
	"goalpulse/internal/notify"
	"goalpulse/internal/snapshot"
)

const (
	DefaultSourceTimeout = 30 * time.Second
	DefaultHistoryDays   = 30

	cacheKey = "dashboard"
	actor    = "goalpulse"
)

// Notifier delivers a health change message.
type Notifier interface {
	Send(title, message string) error
}

// Auditor records structured events.
type Auditor interface {
	LogEvent(actor string, eventType string, payload any) error
}

// Options wires a Service. Source is required; everything else is optional.
type Options struct {
	Source        goals.Source
	Store         snapshot.Store
	Notifier      Notifier
	Audit         Auditor
	Logger        *log.Logger
	SourceTimeout time.Duration
	HistoryDays   int
	CacheTTL      time.Duration
	CacheSize     int
	Location      *time.Location
	Now           func() time.Time
}

// Dashboard is one consistent computation over a single fetch.
type Dashboard struct {
	AsOf       time.Time                `json:"asOf"`
	GoalCount  int                      `json:"goalCount"`
	Individual []metrics.OwnerMetrics   `json:"individual"`
	Squads     []metrics.SquadMetrics   `json:"squads"`
	Company    metrics.CompanyMetrics   `json:"company"`
	Executive  metrics.ExecutiveMetrics `json:"executive"`
	Trends     snapshot.Trends          `json:"trends"`
	Snapshot   *snapshot.Snapshot       `json:"snapshot,omitempty"`
}

// Service fetches goals, computes every view and records history.
type Service struct {
	source        goals.Source
	store         snapshot.Store
	notifier      Notifier
	audit         Auditor
	logger        *log.Logger
	sourceTimeout time.Duration
	historyDays   int
	loc           *time.Location
	now           func() time.Time
	cache         *cache.TTL[Dashboard]

	mu sync.Mutex
}

// New validates opts and returns a Service.
func New(opts Options) (*Service, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("goal source is required")
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = DefaultHistoryDays
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c, err := cache.New[Dashboard](opts.CacheSize, opts.CacheTTL, opts.Now)
	if err != nil {
		return nil, err
	}
	return &Service{
		source:        opts.Source,
		store:         opts.Store,
		notifier:      opts.Notifier,
		audit:         opts.Audit,
		logger:        opts.Logger,
		sourceTimeout: opts.SourceTimeout,
		historyDays:   opts.HistoryDays,
		loc:           opts.Location,
		now:           opts.Now,
		cache:         c,
	}, nil
}

// Dashboard returns the cached dashboard, refreshing when it has expired.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if d, ok := s.cache.Get(cacheKey); ok {
		return d, nil
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the dashboard regardless of the cache.
func (s *Service) Refresh(ctx context.Context) (Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asOf := s.now().In(s.loc)
	s.record("dashboard_refresh_started", map[string]any{
		"source": s.source.Name(),
		"as_of":  asOf.Format(time.RFC3339),
	})

	list, err := s.fetch(ctx)
	if err != nil {
		s.record("dashboard_refresh_failed", map[string]any{"error": err.Error()})
		return Dashboard{}, err
	}

	report := metrics.Compute(list, asOf)
	d := Dashboard{
		AsOf:       asOf,
		GoalCount:  len(list),
		Individual: report.Individual,
		Squads:     report.Squads,
		Company:    report.Company,
		Executive:  report.Executive,
		Trends:     snapshot.NeutralTrends(),
	}

	if s.store != nil {
		d.Snapshot, d.Trends = s.persist(ctx, asOf, report)
	}

	s.cache.Set(cacheKey, d)
	s.record("dashboard_refresh_finished", map[string]any{
		"goals":         d.GoalCount,
		"health_score":  d.Company.HealthScore,
		"health_status": d.Company.HealthStatus,
		"snapshot":      d.Snapshot != nil,
	})
	return d, nil
}

// persist takes today's snapshot and computes trends from history. A failed
// snapshot leaves trends neutral.
func (s *Service) persist(ctx context.Context, asOf time.Time, report metrics.Report) (*snapshot.Snapshot, snapshot.Trends) {
	snap, err := snapshot.Take(ctx, s.store, asOf, report.Company, report.Individual, report.Squads)
	if err != nil {
		s.logger.Printf("snapshot failed: %v", err)
		return nil, snapshot.NeutralTrends()
	}

	history, err := s.store.List(ctx, s.historyDays)
	if err != nil {
		s.logger.Printf("snapshot history unavailable: %v", err)
		return &snap, snapshot.NeutralTrends()
	}
	s.notifyHealthChange(history, asOf.Format(snapshot.DateLayout), report.Company)
	return &snap, snapshot.ComputeTrends(history)
}

// Invalidate drops the cached dashboard.
func (s *Service) Invalidate() {
	s.cache.Invalidate(cacheKey)
}

func (s *Service) fetch(ctx context.Context) ([]goals.Goal, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	list, err := s.source.Fetch(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("fetch goals from %s: %w", s.source.Name(), err)
	}
	return list, nil
}

// notifyHealthChange compares against the newest snapshot before today.
func (s *Service) notifyHealthChange(history []snapshot.Snapshot, today string, company metrics.CompanyMetrics) {
	if s.notifier == nil {
		return
	}
	var previous *snapshot.Snapshot
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Date < today {
			previous = &history[i]
			break
		}
	}
	if previous == nil {
		return
	}
	prevStatus := metrics.RiskLevel(previous.Company.HealthStatus)
	if prevStatus == company.HealthStatus {
		return
	}
	title, message := notify.FormatHealthChange(prevStatus, company.HealthStatus, company.HealthScore)
	if err := s.notifier.Send(title, message); err != nil {
		s.logger.Printf("health notification failed: %v", err)
	}
}

func (s *Service) record(eventType string, payload map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogEvent(actor, eventType, payload); err != nil {
		s.logger.Printf("audit %s: %v", eventType, err)
	}
}
