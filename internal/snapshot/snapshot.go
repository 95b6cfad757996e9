package snapshot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"goalpulse/internal/metrics"
)

// DateLayout is the day key of a snapshot.
const DateLayout = "2006-01-02"

// DefaultRetentionDays bounds the local snapshot history.
const DefaultRetentionDays = 90

// Snapshot is the persisted daily capture of company metrics.
type Snapshot struct {
	Date      string          `json:"date" yaml:"date"`
	Timestamp string          `json:"timestamp" yaml:"timestamp"`
	Company   CompanySnapshot `json:"company" yaml:"company"`
	Team      *TeamSnapshot   `json:"team,omitempty" yaml:"team,omitempty"`
}

// CompanySnapshot is the subset of company metrics kept in history.
type CompanySnapshot struct {
	Completed      int    `json:"completed" yaml:"completed"`
	Overdue        int    `json:"overdue" yaml:"overdue"`
	Blocked        int    `json:"blocked" yaml:"blocked"`
	Active         int    `json:"active" yaml:"active"`
	HealthScore    int    `json:"healthScore" yaml:"healthScore"`
	HealthStatus   string `json:"healthStatus" yaml:"healthStatus"`
	SlippageRate   int    `json:"slippageRate" yaml:"slippageRate"`
	CompletionRate int    `json:"completionRate" yaml:"completionRate"`
	TotalPlanned   int    `json:"totalPlanned" yaml:"totalPlanned"`
}

// TeamSnapshot carries people-level figures used by the velocity trend.
type TeamSnapshot struct {
	Owners         int     `json:"owners" yaml:"owners"`
	Squads         int     `json:"squads" yaml:"squads"`
	VelocityPoints float64 `json:"velocityPoints" yaml:"velocityPoints"`
}

// Store persists snapshots keyed by date.
type Store interface {
	// Save upserts the snapshot for its date.
	Save(ctx context.Context, snap Snapshot) error
	// List returns snapshots dated within the last days days, ascending by date.
	List(ctx context.Context, days int) ([]Snapshot, error)
}

// Build assembles the snapshot for asOf from computed metrics.
func Build(asOf time.Time, company metrics.CompanyMetrics, individual []metrics.OwnerMetrics, squads []metrics.SquadMetrics) Snapshot {
	return Snapshot{
		Date:      asOf.Format(DateLayout),
		Timestamp: asOf.UTC().Format(time.RFC3339),
		Company: CompanySnapshot{
			Completed:      company.Completed,
			Overdue:        company.Overdue,
			Blocked:        company.Blocked,
			Active:         company.Active,
			HealthScore:    company.HealthScore,
			HealthStatus:   string(company.HealthStatus),
			SlippageRate:   company.SlippageRate,
			CompletionRate: company.CompletionRate,
			TotalPlanned:   company.TotalPlanned,
		},
		Team: &TeamSnapshot{
			Owners:         len(individual),
			Squads:         len(squads),
			VelocityPoints: metrics.CompletedVelocity(individual),
		},
	}
}

// Take builds the snapshot for asOf and saves it to store.
func Take(ctx context.Context, store Store, asOf time.Time, company metrics.CompanyMetrics, individual []metrics.OwnerMetrics, squads []metrics.SquadMetrics) (Snapshot, error) {
	snap := Build(asOf, company, individual, squads)
	if store == nil {
		return snap, fmt.Errorf("snapshot store is required")
	}
	if err := store.Save(ctx, snap); err != nil {
		return snap, fmt.Errorf("save snapshot %s: %w", snap.Date, err)
	}
	return snap, nil
}

// cutoffDate is the earliest date included in a days-long window ending at asOf.
func cutoffDate(asOf time.Time, days int) string {
	if days < 0 {
		days = 0
	}
	return asOf.AddDate(0, 0, -days).Format(DateLayout)
}

// upsert replaces any snapshot with the same date, sorts ascending and keeps
// the newest retain dates.
func upsert(history []Snapshot, snap Snapshot, retain int) []Snapshot {
	out := make([]Snapshot, 0, len(history)+1)
	for _, s := range history {
		if s.Date == snap.Date {
			continue
		}
		out = append(out, s)
	}
	out = append(out, snap)
	sortByDate(out)
	if retain > 0 && len(out) > retain {
		out = out[len(out)-retain:]
	}
	return out
}

func window(history []Snapshot, cutoff string) []Snapshot {
	out := make([]Snapshot, 0, len(history))
	for _, s := range history {
		if s.Date >= cutoff {
			out = append(out, s)
		}
	}
	sortByDate(out)
	return out
}

// YYYY-MM-DD compares lexicographically in chronological order.
func sortByDate(list []Snapshot) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date < list[j].Date
	})
}
