package retire

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ReturnGenerator draws simulated annual returns for asset classes.
//
// All draws consume the same random source, so a generator must not be shared
// between goroutines.
type ReturnGenerator struct {
	dists map[AssetClass]distuv.Normal
}

// NewReturnGenerator returns a generator drawing from src with the models in params.
// src must not be nil.
func NewReturnGenerator(params AssetParams, src rand.Source) *ReturnGenerator {
	dists := make(map[AssetClass]distuv.Normal, len(params))
	for a, m := range params {
		dists[a] = distuv.Normal{Mu: m.Mean, Sigma: m.StdDev, Src: src}
	}
	return &ReturnGenerator{dists: dists}
}

// SampleReturn returns a simulated annual return of asset for the given year,
// as a decimal (0.08 for 8%).
//
// The draw is unbounded: returns below -100% are possible.
// year does not change the model yet.
func (g *ReturnGenerator) SampleReturn(asset AssetClass, year int) (float64, error) {
	d, ok := g.dists[asset]
	if !ok {
		return 0, fmt.Errorf("%w: %v has no return model", ErrInvalidAsset, asset)
	}
	return d.Rand(), nil
}

// AllReturns samples one return for each configured asset class for the given year.
func (g *ReturnGenerator) AllReturns(year int) (map[AssetClass]float64, error) {
	returns := make(map[AssetClass]float64, len(g.dists))
	for _, a := range AssetClasses() {
		if _, ok := g.dists[a]; !ok {
			continue
		}
		r, err := g.SampleReturn(a, year)
		if err != nil {
			return nil, err
		}
		returns[a] = r
	}
	return returns, nil
}
