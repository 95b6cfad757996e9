package metrics

import (
	"time"

	"goalpulse/internal/goals"
)

// VelocityWeeks is the number of weekly buckets in a velocity series.
const VelocityWeeks = 4

// WeekStart returns midnight on the Monday of t's week.
func WeekStart(t time.Time) time.Time {
	start := goals.StartOfDay(t)
	offset := (int(start.Weekday()) + 6) % 7
	return start.AddDate(0, 0, -offset)
}

// velocitySeries accumulates completed effort into pre-seeded weekly buckets.
type velocitySeries struct {
	buckets []VelocityBucket
	index   map[string]int
}

func newVelocitySeries(asOf time.Time) *velocitySeries {
	current := WeekStart(asOf)
	s := &velocitySeries{
		buckets: make([]VelocityBucket, VelocityWeeks),
		index:   make(map[string]int, VelocityWeeks),
	}
	for i := 0; i < VelocityWeeks; i++ {
		week := current.AddDate(0, 0, -7*(VelocityWeeks-1-i)).Format("2006-01-02")
		s.buckets[i] = VelocityBucket{WeekStart: week}
		s.index[week] = i
	}
	return s
}

// add credits a completed goal's effort to the week it was finished in.
// Completions outside the window are dropped.
func (s *velocitySeries) add(g goals.Goal, asOf time.Time) {
	loc := asOf.Location()
	finished, ok := g.Updated(loc)
	if !ok {
		finished, ok = g.Created(loc)
	}
	if !ok {
		finished = asOf
	}
	key := WeekStart(finished.In(loc)).Format("2006-01-02")
	if i, ok := s.index[key]; ok {
		s.buckets[i].Points += g.EffortPoints.Float()
	}
}

func (s *velocitySeries) total() float64 {
	var sum float64
	for _, b := range s.buckets {
		sum += b.Points
	}
	return sum
}
