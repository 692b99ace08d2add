package retire

// Trajectory is the portfolio value at the end of each simulated year.
// Index 0 is year 1.
type Trajectory []float64

// SimulateTrajectory runs a single trial: it evolves the profile's portfolio
// over cfg.Years years and returns the final value along with the yearly values.
//
// Each year the portfolio first grows by the allocation-weighted return, then
// receives the net contribution, which is inflated afterwards for the next
// year. With a zero horizon the final value is the current value.
func SimulateTrajectory(gen *ReturnGenerator, profile FinancialProfile, cfg SimulationConfig) (float64, Trajectory, error) {
	value := profile.CurrentValue
	contribution := profile.NetContribution()
	classes := profile.Allocation.classes()

	trajectory := make(Trajectory, 0, max(cfg.Years, 0))
	for year := 1; year <= cfg.Years; year++ {
		var weighted float64
		for _, c := range classes {
			r, err := gen.SampleReturn(c, year)
			if err != nil {
				return 0, nil, err
			}
			weighted += profile.Allocation[c] * r
		}

		value = value*(1+weighted) + contribution
		trajectory = append(trajectory, value)

		contribution *= 1 + cfg.Inflation
	}
	return value, trajectory, nil
}
