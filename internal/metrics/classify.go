package metrics

import (
	"fmt"
	"strings"
	"time"

	"goalpulse/internal/goals"
)

const (
	// StaleAfterDays is the staleness beyond which an open goal carries a warning.
	StaleAfterDays = 7
	// StuckAfterDays is the staleness beyond which a squad goal counts as stuck.
	StuckAfterDays = 14
)

const day = 24 * time.Hour

func IsActive(status string) bool     { return goals.ParseStatus(status) == goals.StatusActive }
func IsBlocked(status string) bool    { return goals.ParseStatus(status) == goals.StatusBlocked }
func IsCompleted(status string) bool  { return goals.ParseStatus(status) == goals.StatusCompleted }
func IsNotStarted(status string) bool { return goals.ParseStatus(status) == goals.StatusNotStarted }

// IsOverdue reports whether the goal has a due date before the start of
// asOf's day and is not completed. Goals without a due date are never overdue.
func IsOverdue(g goals.Goal, asOf time.Time) bool {
	if g.State() == goals.StatusCompleted {
		return false
	}
	due, ok := g.Due(asOf.Location())
	if !ok {
		return false
	}
	return due.Before(goals.StartOfDay(asOf))
}

// IsHighPriority reports whether the goal's priority is "high".
func IsHighPriority(g goals.Goal) bool {
	return strings.EqualFold(strings.TrimSpace(g.Priority), "high")
}

// DaysSinceUpdate returns whole days between lastUpdated and asOf.
func DaysSinceUpdate(g goals.Goal, asOf time.Time) goals.Staleness {
	updated, ok := g.Updated(asOf.Location())
	if !ok {
		return goals.UnknownStaleness()
	}
	days := int(asOf.Sub(updated) / day)
	if days < 0 {
		days = 0
	}
	return goals.KnownStaleness(days)
}

// overdueDays is the number of whole days the goal is past its due date.
func overdueDays(g goals.Goal, asOf time.Time) int {
	due, ok := g.Due(asOf.Location())
	if !ok {
		return 0
	}
	days := int(asOf.Sub(due) / day)
	if days < 0 {
		return 0
	}
	return days
}

// DetectRisks returns the risks raised on a goal, most severe check first.
// Completed goals never carry risks.
func DetectRisks(g goals.Goal, asOf time.Time) []Risk {
	return classify(g, asOf).risks
}

// RiskLevelFor rates a risk list: red on any critical, amber on any warning,
// green otherwise. Caution-only lists are green.
func RiskLevelFor[R interface{ riskType() RiskType }](risks []R) RiskLevel {
	level := LevelGreen
	for _, r := range risks {
		switch r.riskType() {
		case RiskCritical:
			return LevelRed
		case RiskWarning:
			level = LevelAmber
		}
	}
	return level
}

func (r Risk) riskType() RiskType { return r.Type }

// classification caches the per-goal predicates so each reducer evaluates a
// goal once.
type classification struct {
	status       goals.Status
	overdue      bool
	highPriority bool
	staleness    goals.Staleness
	risks        []Risk
}

func classify(g goals.Goal, asOf time.Time) classification {
	c := classification{
		status:       g.State(),
		overdue:      IsOverdue(g, asOf),
		highPriority: IsHighPriority(g),
		staleness:    DaysSinceUpdate(g, asOf),
	}
	if c.status == goals.StatusCompleted {
		return c
	}

	if c.highPriority && c.overdue {
		c.risks = append(c.risks, Risk{Type: RiskCritical, Message: "High priority overdue"})
	}
	if c.staleness.Exceeds(StaleAfterDays) {
		c.risks = append(c.risks, Risk{
			Type:    RiskWarning,
			Message: fmt.Sprintf("No update in %d days", c.staleness.Report()),
		})
	}
	if c.status == goals.StatusBlocked {
		c.risks = append(c.risks, Risk{Type: RiskWarning, Message: "Blocked"})
	}
	if c.overdue {
		c.risks = append(c.risks, Risk{Type: RiskCaution, Message: "Overdue"})
	}
	return c
}

func (c classification) inFlight() bool {
	return c.status == goals.StatusActive || c.status == goals.StatusBlocked
}
