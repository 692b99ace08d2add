package retire

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
)

// Allocation is the fraction of the portfolio value held in each asset class.
//
// Weights are not required to sum to 1: a partial allocation leaves the rest
// of the portfolio without market return, like cash.
type Allocation map[AssetClass]float64

// Total returns the sum of the weights.
func (a Allocation) Total() float64 {
	var total float64
	for _, w := range a {
		total += w
	}
	return total
}

// classes returns the allocated asset classes in declaration order, so that
// draws from a seeded source happen in a reproducible order.
func (a Allocation) classes() []AssetClass {
	return slices.Sorted(maps.Keys(a))
}

// Validate checks that every weight is a non-negative number and that every
// asset class has a return model in params.
func (a Allocation) Validate(params AssetParams) error {
	var errs error
	for _, c := range AssetClasses() {
		w, ok := a[c]
		if !ok {
			continue
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			errs = errors.Join(errs, fmt.Errorf("%w: weight of %v must be a non-negative number, got %v", ErrInvalidConfiguration, c, w))
		}
		if _, err := params.Model(c); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	for c := range a {
		if !c.valid() {
			errs = errors.Join(errs, fmt.Errorf("%w: %v", ErrInvalidAsset, c))
		}
	}
	return errs
}

// FinancialProfile describes a household's portfolio and yearly cash flows.
type FinancialProfile struct {
	CurrentValue float64
	Income       float64
	Cashflows    float64 // extra yearly income beside Income
	Expenses     float64
	Liabilities  float64
	Allocation   Allocation
}

// NetContribution returns the amount added to the portfolio in the first year.
// A negative value is a withdrawal.
func (p FinancialProfile) NetContribution() float64 {
	return p.Income + p.Cashflows - p.Expenses - p.Liabilities
}
