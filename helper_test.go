package retire

import "math/rand/v2"

// flat returns return models without volatility: every draw is the mean.
func flat(equities, fixedIncome, alternatives float64) AssetParams {
	return AssetParams{
		Equities:     {Mean: equities},
		FixedIncome:  {Mean: fixedIncome},
		Alternatives: {Mean: alternatives},
	}
}

// seeded returns a reproducible random source.
func seeded(seed uint64) rand.Source { return rand.NewPCG(seed, seed+1) }

// household is the profile used across tests: 30000 of yearly net contribution.
func household() FinancialProfile {
	return FinancialProfile{
		CurrentValue: 50000,
		Income:       100000,
		Expenses:     60000,
		Liabilities:  10000,
		Allocation:   Allocation{Equities: 0.6, FixedIncome: 0.3, Alternatives: 0.1},
	}
}

func approx(a, b float64) bool {
	const precision = 1e-9
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	scale := max(1, a, -a, b, -b)
	return diff <= precision*scale
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
