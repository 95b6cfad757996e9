package metrics

import (
	"sort"
	"time"

	"goalpulse/internal/goals"
)

// IndependentSquad labels owners whose goals carry no squad.
const IndependentSquad = "Independent Contributors"

// OwnerMetrics is the per-person rollup.
type OwnerMetrics struct {
	Name  string `json:"name"`
	Squad string `json:"squad"`
	Counts
	TotalGoals          int              `json:"totalGoals"`
	TotalEffort         float64          `json:"totalEffort"`
	EffortInProgress    float64          `json:"effortInProgress"`
	DaysSinceLastUpdate goals.Staleness  `json:"daysSinceLastUpdate"`
	Risks               []GoalRisk       `json:"risks"`
	RiskLevel           RiskLevel        `json:"riskLevel"`
	StatusBreakdown     StatusBreakdown  `json:"statusBreakdown"`
	Velocity            []VelocityBucket `json:"velocity"`
	Goals               []goals.Goal     `json:"goals"`

	seenUpdate bool
	velocity   *velocitySeries
}

// ComputeIndividual groups goals by owner. Owners are returned sorted by name.
func ComputeIndividual(list []goals.Goal, asOf time.Time) []OwnerMetrics {
	byOwner := make(map[string]*OwnerMetrics)
	var order []string

	for _, g := range list {
		name := g.OwnerName()
		owner, ok := byOwner[name]
		if !ok {
			squad := g.Squad
			if squad == "" {
				squad = IndependentSquad
			}
			owner = &OwnerMetrics{
				Name:            name,
				Squad:           squad,
				Risks:           []GoalRisk{},
				StatusBreakdown: StatusBreakdown{},
				velocity:        newVelocitySeries(asOf),
			}
			byOwner[name] = owner
			order = append(order, name)
		}
		owner.fold(g, asOf)
	}

	sort.Strings(order)
	out := make([]OwnerMetrics, 0, len(order))
	for _, name := range order {
		owner := byOwner[name]
		owner.TotalGoals = len(owner.Goals)
		owner.RiskLevel = RiskLevelFor(owner.Risks)
		owner.Velocity = owner.velocity.buckets
		out = append(out, *owner)
	}
	return out
}

func (o *OwnerMetrics) fold(g goals.Goal, asOf time.Time) {
	c := classify(g, asOf)
	o.Goals = append(o.Goals, g)
	o.Counts.add(c)
	o.StatusBreakdown.add(g)

	effort := g.EffortPoints.Float()
	o.TotalEffort += effort
	if c.inFlight() {
		o.EffortInProgress += effort
	}

	if !o.seenUpdate || c.staleness.Less(o.DaysSinceLastUpdate) {
		o.DaysSinceLastUpdate = c.staleness
		o.seenUpdate = true
	}

	ref := refFor(g, c.staleness)
	for _, r := range c.risks {
		o.Risks = append(o.Risks, GoalRisk{Risk: r, Goal: ref})
	}

	if c.status == goals.StatusCompleted {
		o.velocity.add(g, asOf)
	}
}

// CompletedVelocity sums the velocity series of every owner.
func CompletedVelocity(owners []OwnerMetrics) float64 {
	var sum float64
	for _, o := range owners {
		for _, b := range o.Velocity {
			sum += b.Points
		}
	}
	return sum
}
