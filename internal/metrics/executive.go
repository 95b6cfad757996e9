package metrics

import (
	"sort"
	"time"

	"goalpulse/internal/goals"
)

const (
	// TopRiskLimit caps the executive risk list.
	TopRiskLimit = 5
	// DeliveryDropRatio is the overdue share above which an owner is flagged.
	DeliveryDropRatio = 0.30
)

// DeliveryDrop flags an owner whose overdue share is too high.
type DeliveryDrop struct {
	Owner        string `json:"owner"`
	Squad        string `json:"squad"`
	Overdue      int    `json:"overdue"`
	TotalGoals   int    `json:"totalGoals"`
	OverdueRatio int    `json:"overdueRatio"`
}

// SquadVelocity summarises delivery pace per squad.
type SquadVelocity struct {
	Squad            string  `json:"squad"`
	Completed        int     `json:"completed"`
	TotalGoals       int     `json:"totalGoals"`
	CompletionRate   int     `json:"completionRate"`
	CompletedEffort  float64 `json:"completedEffort"`
	EffortInProgress float64 `json:"effortInProgress"`
	WeeklyVelocity   float64 `json:"weeklyVelocity"`
}

// RiskCounts tallies detected risks by severity.
type RiskCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Caution  int `json:"caution"`
}

// ExecutiveMetrics is the leadership digest.
type ExecutiveMetrics struct {
	HealthScore         int             `json:"healthScore"`
	HealthStatus        RiskLevel       `json:"healthStatus"`
	TopRisks            []GoalRisk      `json:"topRisks"`
	RiskCounts          RiskCounts      `json:"riskCounts"`
	OverdueHighPriority []GoalRef       `json:"overdueHighPriority"`
	Blocked             []GoalRef       `json:"blocked"`
	Slipping            []GoalRef       `json:"slipping"`
	DeliveryDrops       []DeliveryDrop  `json:"deliveryDrops"`
	SquadVelocity       []SquadVelocity `json:"squadVelocity"`
}

// ComputeExecutive derives the executive digest from the goal list. It runs
// the company, individual and squad reducers over the same list and asOf.
func ComputeExecutive(list []goals.Goal, asOf time.Time) ExecutiveMetrics {
	company := ComputeCompany(list, asOf)
	m := ExecutiveMetrics{
		HealthScore:         company.HealthScore,
		HealthStatus:        company.HealthStatus,
		TopRisks:            []GoalRisk{},
		OverdueHighPriority: []GoalRef{},
		Blocked:             []GoalRef{},
		Slipping:            []GoalRef{},
		DeliveryDrops:       []DeliveryDrop{},
		SquadVelocity:       []SquadVelocity{},
	}

	var all []GoalRisk
	for _, g := range list {
		c := classify(g, asOf)
		ref := refFor(g, c.staleness)
		for _, r := range c.risks {
			all = append(all, GoalRisk{Risk: r, Goal: ref})
			switch r.Type {
			case RiskCritical:
				m.RiskCounts.Critical++
			case RiskWarning:
				m.RiskCounts.Warning++
			case RiskCaution:
				m.RiskCounts.Caution++
			}
		}
		if c.overdue && c.highPriority {
			m.OverdueHighPriority = append(m.OverdueHighPriority, ref)
		}
		if c.status == goals.StatusBlocked {
			m.Blocked = append(m.Blocked, ref)
		}
		if c.overdue && c.status == goals.StatusActive {
			m.Slipping = append(m.Slipping, ref)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Type.severity() < all[j].Type.severity()
	})
	if len(all) > TopRiskLimit {
		all = all[:TopRiskLimit]
	}
	m.TopRisks = append(m.TopRisks, all...)

	for _, owner := range ComputeIndividual(list, asOf) {
		if owner.TotalGoals == 0 {
			continue
		}
		ratio := float64(owner.Overdue) / float64(owner.TotalGoals)
		if ratio > DeliveryDropRatio {
			m.DeliveryDrops = append(m.DeliveryDrops, DeliveryDrop{
				Owner:        owner.Name,
				Squad:        owner.Squad,
				Overdue:      owner.Overdue,
				TotalGoals:   owner.TotalGoals,
				OverdueRatio: percent(owner.Overdue, owner.TotalGoals),
			})
		}
	}

	for _, squad := range ComputeSquads(list, asOf) {
		m.SquadVelocity = append(m.SquadVelocity, SquadVelocity{
			Squad:            squad.Name,
			Completed:        squad.Completed,
			TotalGoals:       squad.TotalGoals,
			CompletionRate:   percent(squad.Completed, squad.TotalGoals),
			CompletedEffort:  squad.CompletedEffort,
			EffortInProgress: squad.EffortInProgress,
			WeeklyVelocity:   squad.WeeklyVelocity(),
		})
	}
	return m
}
