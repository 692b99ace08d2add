// Package retire projects whether a household portfolio reaches an
// inflation-adjusted goal within a fixed horizon.
//
// The projection is a Monte Carlo simulation built from three layers:
//   - Return Generation: one normally distributed annual return per asset
//     class, drawn from an injected random source (see [ReturnGenerator]).
//   - Trajectory Simulation: a single portfolio evolved year by year under
//     market growth, net contributions and contribution inflation (see
//     [SimulateTrajectory]).
//   - Aggregation: many independent trials folded into a success probability
//     and an average yearly net worth (see [Simulator] and [RunMonteCarlo]).
//
// The package also holds the request and response types shared by the `retire`
// command line tool and its HTTP server, so that every surface validates and
// reports a simulation the same way.
package retire
