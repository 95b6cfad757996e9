package metrics

import (
	"math"
	"sort"
	"time"

	"goalpulse/internal/goals"
)

const (
	// UncategorizedSquad collects goals with neither squad nor parent goal.
	UncategorizedSquad = "Uncategorized"
	// ConcentrationThreshold is the share of squad effort one owner may hold
	// before the squad is flagged.
	ConcentrationThreshold = 0.6
)

// SquadMetrics is the per-team rollup.
type SquadMetrics struct {
	Name string `json:"name"`
	Counts
	TotalGoals              int                `json:"totalGoals"`
	TotalEffort             float64            `json:"totalEffort"`
	EffortInProgress        float64            `json:"effortInProgress"`
	CompletedEffort         float64            `json:"completedEffort"`
	Owners                  []string           `json:"owners"`
	OwnedGoals              int                `json:"ownedGoals"`
	OwnershipClarity        int                `json:"ownershipClarity"`
	EffortByOwner           map[string]float64 `json:"effortByOwner"`
	EffortConcentrationRisk bool               `json:"effortConcentrationRisk"`
	StuckGoals              []GoalRef          `json:"stuckGoals"`
	RiskCount               int                `json:"riskCount"`
	RiskLevel               RiskLevel          `json:"riskLevel"`
	StatusBreakdown         StatusBreakdown    `json:"statusBreakdown"`
	Velocity                []VelocityBucket   `json:"velocity"`

	owners   map[string]struct{}
	risks    []Risk
	velocity *velocitySeries
}

// SquadName returns the squad bucket a goal belongs to.
func SquadName(g goals.Goal) string {
	if g.Squad != "" {
		return g.Squad
	}
	if g.ParentGoal != "" {
		return g.ParentGoal
	}
	return UncategorizedSquad
}

// ComputeSquads groups goals by squad. Squads are returned sorted by name.
func ComputeSquads(list []goals.Goal, asOf time.Time) []SquadMetrics {
	bySquad := make(map[string]*SquadMetrics)
	var order []string

	for _, g := range list {
		name := SquadName(g)
		squad, ok := bySquad[name]
		if !ok {
			squad = &SquadMetrics{
				Name:            name,
				EffortByOwner:   map[string]float64{},
				StuckGoals:      []GoalRef{},
				StatusBreakdown: StatusBreakdown{},
				owners:          map[string]struct{}{},
				velocity:        newVelocitySeries(asOf),
			}
			bySquad[name] = squad
			order = append(order, name)
		}
		squad.fold(g, asOf)
	}

	sort.Strings(order)
	out := make([]SquadMetrics, 0, len(order))
	for _, name := range order {
		squad := bySquad[name]
		squad.finish()
		out = append(out, *squad)
	}
	return out
}

func (s *SquadMetrics) fold(g goals.Goal, asOf time.Time) {
	c := classify(g, asOf)
	s.TotalGoals++
	s.Counts.add(c)
	s.StatusBreakdown.add(g)

	effort := g.EffortPoints.Float()
	s.TotalEffort += effort
	s.EffortByOwner[g.OwnerName()] += effort
	if c.inFlight() {
		s.EffortInProgress += effort
	}
	if c.status == goals.StatusCompleted {
		s.CompletedEffort += effort
		s.velocity.add(g, asOf)
	}

	if g.HasOwner() {
		s.OwnedGoals++
		s.owners[g.OwnerName()] = struct{}{}
	}

	if c.staleness.Exceeds(StuckAfterDays) || (c.overdue && c.status == goals.StatusActive) {
		s.StuckGoals = append(s.StuckGoals, refFor(g, c.staleness))
	}

	s.risks = append(s.risks, c.risks...)
}

func (s *SquadMetrics) finish() {
	s.Owners = make([]string, 0, len(s.owners))
	for name := range s.owners {
		s.Owners = append(s.Owners, name)
	}
	sort.Strings(s.Owners)

	if s.TotalGoals > 0 {
		s.OwnershipClarity = int(math.Round(float64(s.OwnedGoals) / float64(s.TotalGoals) * 100))
	}

	if s.TotalEffort > 0 {
		var top float64
		for _, effort := range s.EffortByOwner {
			top = math.Max(top, effort)
		}
		s.EffortConcentrationRisk = top/s.TotalEffort > ConcentrationThreshold
	}

	s.RiskCount = len(s.risks)
	s.RiskLevel = RiskLevelFor(s.risks)
	s.Velocity = s.velocity.buckets
}

// WeeklyVelocity is the mean completed effort per week over the series.
func (s SquadMetrics) WeeklyVelocity() float64 {
	if len(s.Velocity) == 0 {
		return 0
	}
	var sum float64
	for _, b := range s.Velocity {
		sum += b.Points
	}
	return sum / float64(len(s.Velocity))
}
