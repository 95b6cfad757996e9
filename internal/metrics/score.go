package metrics

import "math"

// Health score weights. Each term is normalized to [0,1] before weighting.
const (
	weightCompletion   = 30
	weightOnTime       = 25
	weightRecency      = 20
	weightUnblocked    = 15
	weightPriorityLag  = 10
	priorityLagCapDays = 30
)

// Health status thresholds.
const (
	RedBelow   = 50
	AmberBelow = 70
)

// HealthInputs are the unrounded company figures the score is built from.
type HealthInputs struct {
	TotalPlanned    int
	Completed       int
	Overdue         int
	Blocked         int
	UpdateRecency   float64 // percent, 0..100
	HighPriorityLag float64 // days
}

// HealthScore computes the weighted 0..100 company health score. The sum is
// rounded once at the end.
func HealthScore(in HealthInputs) int {
	var completionRate, overdueRate, blockedRate float64
	if in.TotalPlanned > 0 {
		total := float64(in.TotalPlanned)
		completionRate = float64(in.Completed) / total
		overdueRate = float64(in.Overdue) / total
		blockedRate = float64(in.Blocked) / total
	}
	lag := math.Min(in.HighPriorityLag/priorityLagCapDays, 1)

	score := completionRate*weightCompletion +
		(1-overdueRate)*weightOnTime +
		(in.UpdateRecency/100)*weightRecency +
		(1-blockedRate)*weightUnblocked +
		(1-lag)*weightPriorityLag
	return int(math.Round(score))
}

// HealthStatusFor maps a score onto red (<50), amber (<70) or green.
func HealthStatusFor(score int) RiskLevel {
	switch {
	case score < RedBelow:
		return LevelRed
	case score < AmberBelow:
		return LevelAmber
	default:
		return LevelGreen
	}
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
