package retire

import (
	"errors"
	"fmt"
	"math"
)

// Defaults applied by the request decoder when a field is absent.
const (
	DefaultYears      = 10
	DefaultIterations = 100
	DefaultInflation  = 0.025
)

// SimulationConfig holds the settings of a Monte Carlo run.
type SimulationConfig struct {
	Years      int     // horizon; 0 simulates nothing and compares the current value
	Iterations int     // number of independent trials, at least 1
	Inflation  float64 // annual rate, 0.025 for 2.5%
	Workers    int     // trials run concurrently on that many goroutines; 0 or 1 runs them sequentially
}

// Validate reports every setting that prevents running the simulation.
func (c SimulationConfig) Validate() error {
	var errs error
	if c.Iterations < 1 {
		errs = errors.Join(errs, fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidConfiguration, c.Iterations))
	}
	if c.Years < 0 {
		errs = errors.Join(errs, fmt.Errorf("%w: years cannot be negative, got %d", ErrInvalidConfiguration, c.Years))
	}
	if math.IsNaN(c.Inflation) || math.IsInf(c.Inflation, 0) || c.Inflation < 0 {
		errs = errors.Join(errs, fmt.Errorf("%w: inflation must be a non-negative number, got %v", ErrInvalidConfiguration, c.Inflation))
	}
	if c.Workers < 0 {
		errs = errors.Join(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidConfiguration, c.Workers))
	}
	return errs
}

// InflatedGoal restates goal, expressed in today's money, in the money of the
// last simulated year.
func (c SimulationConfig) InflatedGoal(goal float64) float64 {
	return goal * math.Pow(1+c.Inflation, float64(c.Years))
}
