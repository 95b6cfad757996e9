package metrics

import (
	"time"

	"github.com/sourcegraph/conc"

	"goalpulse/internal/goals"
)

// Report bundles the four views computed from one goal list.
type Report struct {
	AsOf       string           `json:"asOf"`
	Individual []OwnerMetrics   `json:"individual"`
	Squads     []SquadMetrics   `json:"squads"`
	Company    CompanyMetrics   `json:"company"`
	Executive  ExecutiveMetrics `json:"executive"`
}

// Compute runs every reducer over the same goals and asOf, so the views
// never disagree about a goal's state. The reducers only read list and run
// concurrently.
func Compute(list []goals.Goal, asOf time.Time) Report {
	r := Report{AsOf: asOf.Format(time.RFC3339)}

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		r.Individual = ComputeIndividual(list, asOf)
	})
	wg.Go(func() {
		r.Squads = ComputeSquads(list, asOf)
	})
	wg.Go(func() {
		r.Company = ComputeCompany(list, asOf)
	})
	wg.Go(func() {
		r.Executive = ComputeExecutive(list, asOf)
	})
	wg.Wait()

	return r
}
