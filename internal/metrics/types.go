package metrics

import (
	"goalpulse/internal/goals"
)

// RiskType is the severity of a detected risk.
type RiskType string

const (
	RiskCritical RiskType = "critical"
	RiskWarning  RiskType = "warning"
	RiskCaution  RiskType = "caution"
)

// severity orders risk types for sorting; lower is more severe.
func (t RiskType) severity() int {
	switch t {
	case RiskCritical:
		return 0
	case RiskWarning:
		return 1
	case RiskCaution:
		return 2
	default:
		return 3
	}
}

// RiskLevel is the traffic-light rating of an owner, squad or company.
type RiskLevel string

const (
	LevelGreen RiskLevel = "green"
	LevelAmber RiskLevel = "amber"
	LevelRed   RiskLevel = "red"
)

// Risk is a single condition detected on an open goal.
type Risk struct {
	Type    RiskType `json:"type"`
	Message string   `json:"message"`
}

// GoalRef identifies a goal in rollup output.
type GoalRef struct {
	ID              string `json:"id"`
	Title           string `json:"goalTitle"`
	Owner           string `json:"owner"`
	Squad           string `json:"squad,omitempty"`
	Status          string `json:"status"`
	Priority        string `json:"priority,omitempty"`
	DueDate         string `json:"dueDate,omitempty"`
	URL             string `json:"url,omitempty"`
	DaysSinceUpdate int    `json:"daysSinceUpdate"`
}

// GoalRisk is a Risk enriched with the goal it was raised on.
type GoalRisk struct {
	Risk
	Goal GoalRef `json:"goal"`
}

// VelocityBucket is the effort completed in one Monday-aligned week.
type VelocityBucket struct {
	WeekStart string  `json:"weekStart"`
	Points    float64 `json:"points"`
}

// StatusBreakdown counts goals by raw status string.
type StatusBreakdown map[string]int

// UnknownStatusLabel is the breakdown key for goals without a status.
const UnknownStatusLabel = "Unknown"

func (b StatusBreakdown) add(g goals.Goal) {
	key := g.Status
	if key == "" {
		key = UnknownStatusLabel
	}
	b[key]++
}

// Counts are the per-state tallies shared by every aggregate.
type Counts struct {
	Active       int `json:"active"`
	Blocked      int `json:"blocked"`
	Overdue      int `json:"overdue"`
	Completed    int `json:"completed"`
	NotStarted   int `json:"notStarted"`
	HighPriority int `json:"highPriority"`
}

func (c *Counts) add(cl classification) {
	switch cl.status {
	case goals.StatusActive:
		c.Active++
	case goals.StatusBlocked:
		c.Blocked++
	case goals.StatusCompleted:
		c.Completed++
	case goals.StatusNotStarted:
		c.NotStarted++
	}
	if cl.overdue {
		c.Overdue++
	}
	if cl.highPriority {
		c.HighPriority++
	}
}

func refFor(g goals.Goal, staleness goals.Staleness) GoalRef {
	return GoalRef{
		ID:              g.ID,
		Title:           g.DisplayTitle(),
		Owner:           g.OwnerName(),
		Squad:           g.Squad,
		Status:          g.Status,
		Priority:        g.Priority,
		DueDate:         g.DueDate,
		URL:             g.URL(),
		DaysSinceUpdate: staleness.Report(),
	}
}
