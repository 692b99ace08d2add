package retire

import "slices"

// SimulationResult summarizes a Monte Carlo run. It is immutable.
type SimulationResult struct {
	probability  float64
	average      []float64
	inflatedGoal float64
	iterations   int
}

// Probability returns the share of trials whose final value reached the
// inflated goal, in [0, 1].
func (r *SimulationResult) Probability() float64 { return r.probability }

// AverageNetWorth returns the cross-trial average portfolio value of each
// year. Index 0 is year 1.
func (r *SimulationResult) AverageNetWorth() []float64 { return slices.Clone(r.average) }

// InflatedGoal returns the goal trials were compared against, in the money of
// the last simulated year.
func (r *SimulationResult) InflatedGoal() float64 { return r.inflatedGoal }

// Iterations returns the number of trials.
func (r *SimulationResult) Iterations() int { return r.iterations }

// Years returns the simulated horizon.
func (r *SimulationResult) Years() int { return len(r.average) }

// Final returns the average portfolio value of the last year, or false if no
// year was simulated.
func (r *SimulationResult) Final() (float64, bool) {
	if len(r.average) == 0 {
		return 0, false
	}
	return r.average[len(r.average)-1], true
}

func (r *SimulationResult) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("probability", r.probability)
	w.Append("avg_yearly_networth", r.average)
	w.Append("inflated_goal", r.inflatedGoal)
	w.Append("iterations", r.iterations)
	return w.MarshalJSON()
}
