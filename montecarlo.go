package retire

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// tally folds trial outcomes into the figures needed for a SimulationResult.
type tally struct {
	trials    int
	successes int
	sums      []float64 // per year
}

func newTally(years int) *tally {
	return &tally{sums: make([]float64, years)}
}

// add records one trial.
func (t *tally) add(final float64, trajectory Trajectory, goal float64) {
	t.trials++
	if final >= goal {
		t.successes++
	}
	for i, v := range trajectory {
		t.sums[i] += v
	}
}

// merge adds o's trials to t.
func (t *tally) merge(o *tally) {
	t.trials += o.trials
	t.successes += o.successes
	for i, v := range o.sums {
		t.sums[i] += v
	}
}

func (t *tally) result(goal float64) *SimulationResult {
	average := make([]float64, len(t.sums))
	for i, sum := range t.sums {
		average[i] = sum / float64(t.trials)
	}
	return &SimulationResult{
		probability:  float64(t.successes) / float64(t.trials),
		average:      average,
		inflatedGoal: goal,
		iterations:   t.trials,
	}
}

// Simulator runs Monte Carlo simulations with a set of return models.
type Simulator struct {
	Params AssetParams
	Source rand.Source // consumed by every run, sequentially
}

// NewSimulator returns a Simulator drawing returns from src.
func NewSimulator(params AssetParams, src rand.Source) *Simulator {
	return &Simulator{Params: params, Source: src}
}

// Run simulates cfg.Iterations independent trials of profile and returns the
// share of trials ending at or above goal, restated in the money of the last
// year, and the average portfolio value of each year.
//
// With cfg.Workers above 1, trials are spread over that many goroutines, each
// drawing from its own source seeded from s.Source. Results are reproducible
// for a given seed and number of workers, but differ from a sequential run
// because trials receive different draws, and because yearly sums are added in
// a different order.
//
// Any trial failure aborts the whole run. Cancelling ctx stops starting new
// trials and returns ctx.Err().
func (s *Simulator) Run(ctx context.Context, profile FinancialProfile, cfg SimulationConfig, goal float64) (*SimulationResult, error) {
	if err := s.validate(profile, cfg); err != nil {
		return nil, err
	}
	inflatedGoal := cfg.InflatedGoal(goal)

	var (
		total *tally
		err   error
	)
	if cfg.Workers <= 1 || cfg.Iterations == 1 {
		total, err = s.sequential(ctx, profile, cfg, inflatedGoal)
	} else {
		total, err = s.parallel(ctx, profile, cfg, inflatedGoal)
	}
	if err != nil {
		return nil, err
	}
	return total.result(inflatedGoal), nil
}

func (s *Simulator) validate(profile FinancialProfile, cfg SimulationConfig) error {
	if s.Source == nil {
		return fmt.Errorf("%w: no random source", ErrInvalidConfiguration)
	}
	return errors.Join(
		cfg.Validate(),
		s.Params.Validate(),
		profile.Allocation.Validate(s.Params),
	)
}

func (s *Simulator) sequential(ctx context.Context, profile FinancialProfile, cfg SimulationConfig, goal float64) (*tally, error) {
	gen := NewReturnGenerator(s.Params, s.Source)
	t := newTally(cfg.Years)
	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		final, trajectory, err := SimulateTrajectory(gen, profile, cfg)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		t.add(final, trajectory, goal)
	}
	return t, nil
}

func (s *Simulator) parallel(ctx context.Context, profile FinancialProfile, cfg SimulationConfig, goal float64) (*tally, error) {
	workers := min(cfg.Workers, cfg.Iterations)

	// Worker sources are seeded before any trial starts, in worker order.
	seeder := rand.New(s.Source)
	tallies := make([]*tally, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		src := rand.NewPCG(seeder.Uint64(), seeder.Uint64())
		t := newTally(cfg.Years)
		tallies[w] = t

		g.Go(func() error {
			gen := NewReturnGenerator(s.Params, src)
			for i := w; i < cfg.Iterations; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				final, trajectory, err := SimulateTrajectory(gen, profile, cfg)
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				t.add(final, trajectory, goal)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newTally(cfg.Years)
	for _, t := range tallies {
		total.merge(t)
	}
	return total, nil
}

// RunMonteCarlo runs a simulation of profile with the given return models,
// goal and settings, drawing from src.
func RunMonteCarlo(ctx context.Context, profile FinancialProfile, params AssetParams, goal float64, cfg SimulationConfig, src rand.Source) (*SimulationResult, error) {
	return NewSimulator(params, src).Run(ctx, profile, cfg, goal)
}
