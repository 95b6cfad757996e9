package metrics

import (
	"math"
	"time"

	"goalpulse/internal/goals"
)

// CompanyMetrics is the company-wide rollup.
type CompanyMetrics struct {
	TotalPlanned int `json:"totalPlanned"`
	Counts
	OverdueHighPriority int             `json:"overdueHighPriority"`
	WithDueDate         int             `json:"withDueDate"`
	UpdatedThisWeek     int             `json:"updatedThisWeek"`
	SlippageRate        int             `json:"slippageRate"`
	CompletionRate      int             `json:"completionRate"`
	UpdateRecency       int             `json:"updateRecency"`
	AvgBlockedAge       int             `json:"avgBlockedAge"`
	HighPriorityLag     int             `json:"highPriorityLag"`
	HealthScore         int             `json:"healthScore"`
	HealthStatus        RiskLevel       `json:"healthStatus"`
	StatusBreakdown     StatusBreakdown `json:"statusBreakdown"`
	AsOf                string          `json:"asOf"`
}

// ComputeCompany folds the full goal list into company metrics and scores it.
func ComputeCompany(list []goals.Goal, asOf time.Time) CompanyMetrics {
	m := CompanyMetrics{
		TotalPlanned:    len(list),
		StatusBreakdown: StatusBreakdown{},
		AsOf:            asOf.Format(time.RFC3339),
	}

	var blockedAgeSum, lagSum float64
	for _, g := range list {
		c := classify(g, asOf)
		m.Counts.add(c)
		m.StatusBreakdown.add(g)

		if _, ok := g.Due(asOf.Location()); ok {
			m.WithDueDate++
		}
		if c.staleness.Within(StaleAfterDays) {
			m.UpdatedThisWeek++
		}
		if c.status == goals.StatusBlocked {
			blockedAgeSum += float64(c.staleness.Report())
		}
		if c.overdue && c.highPriority {
			m.OverdueHighPriority++
			lagSum += float64(overdueDays(g, asOf))
		}
	}

	updateRecency := 100.0
	if m.TotalPlanned > 0 {
		updateRecency = float64(m.UpdatedThisWeek) / float64(m.TotalPlanned) * 100
	}
	highPriorityLag := lagSum / math.Max(1, float64(m.OverdueHighPriority))

	m.SlippageRate = percent(m.Overdue, m.WithDueDate)
	m.CompletionRate = percent(m.Completed, m.TotalPlanned)
	m.UpdateRecency = int(math.Round(updateRecency))
	if m.Blocked > 0 {
		m.AvgBlockedAge = int(math.Round(blockedAgeSum / float64(m.Blocked)))
	}
	m.HighPriorityLag = int(math.Round(highPriorityLag))

	m.HealthScore = HealthScore(HealthInputs{
		TotalPlanned:    m.TotalPlanned,
		Completed:       m.Completed,
		Overdue:         m.Overdue,
		Blocked:         m.Blocked,
		UpdateRecency:   updateRecency,
		HighPriorityLag: highPriorityLag,
	})
	m.HealthStatus = HealthStatusFor(m.HealthScore)
	return m
}
