package snapshot

import "time"

// Direction is the movement of a metric between two snapshots.
type Direction string

const (
	Up      Direction = "up"
	Down    Direction = "down"
	Neutral Direction = "neutral"
)

// Baseline lookup: a snapshot 6–8 days before the latest, else 7 slots back.
const (
	baselineMinDays = 6
	baselineMaxDays = 8
	baselineSlots   = 7
)

// WeekOverWeek holds raw deltas between the latest and baseline snapshots.
type WeekOverWeek struct {
	CompletionDelta int     `json:"completionDelta"`
	OverdueDelta    int     `json:"overdueDelta"`
	HealthDelta     int     `json:"healthDelta"`
	VelocityDelta   float64 `json:"velocityDelta"`
	From            string  `json:"from"`
	To              string  `json:"to"`
}

// Trends describes how company metrics moved over roughly a week.
type Trends struct {
	CompletionTrend Direction     `json:"completionTrend"`
	OverdueTrend    Direction     `json:"overdueTrend"`
	HealthTrend     Direction     `json:"healthTrend"`
	VelocityTrend   Direction     `json:"velocityTrend"`
	WeekOverWeek    *WeekOverWeek `json:"weekOverWeek"`
}

// NeutralTrends is returned when there is not enough history.
func NeutralTrends() Trends {
	return Trends{
		CompletionTrend: Neutral,
		OverdueTrend:    Neutral,
		HealthTrend:     Neutral,
		VelocityTrend:   Neutral,
	}
}

// ComputeTrends compares the last snapshot with its week-ago baseline.
// snapshots must be ascending by date.
func ComputeTrends(snapshots []Snapshot) Trends {
	if len(snapshots) < 2 {
		return NeutralTrends()
	}

	latest := snapshots[len(snapshots)-1]
	previous := baseline(snapshots)

	t := Trends{
		CompletionTrend: direction(float64(latest.Company.Completed), float64(previous.Company.Completed)),
		OverdueTrend:    direction(float64(latest.Company.Overdue), float64(previous.Company.Overdue)),
		HealthTrend:     direction(float64(latest.Company.HealthScore), float64(previous.Company.HealthScore)),
		VelocityTrend:   Neutral,
		WeekOverWeek: &WeekOverWeek{
			CompletionDelta: latest.Company.Completed - previous.Company.Completed,
			OverdueDelta:    latest.Company.Overdue - previous.Company.Overdue,
			HealthDelta:     latest.Company.HealthScore - previous.Company.HealthScore,
			From:            previous.Date,
			To:              latest.Date,
		},
	}
	if latest.Team != nil && previous.Team != nil {
		t.VelocityTrend = direction(latest.Team.VelocityPoints, previous.Team.VelocityPoints)
		t.WeekOverWeek.VelocityDelta = latest.Team.VelocityPoints - previous.Team.VelocityPoints
	}
	return t
}

func baseline(snapshots []Snapshot) Snapshot {
	latest := snapshots[len(snapshots)-1]
	if latestDate, err := time.Parse(DateLayout, latest.Date); err == nil {
		for _, s := range snapshots[:len(snapshots)-1] {
			d, err := time.Parse(DateLayout, s.Date)
			if err != nil {
				continue
			}
			gap := int(latestDate.Sub(d).Hours() / 24)
			if gap >= baselineMinDays && gap <= baselineMaxDays {
				return s
			}
		}
	}
	idx := len(snapshots) - 1 - baselineSlots
	if idx < 0 {
		idx = 0
	}
	return snapshots[idx]
}

func direction(current, previous float64) Direction {
	switch {
	case current > previous:
		return Up
	case current < previous:
		return Down
	default:
		return Neutral
	}
}
