package renderer

import "github.com/toshan-luktuke/retire-early"

// money formats v in currency.
func money(v float64, currency string) string { return retire.M(v, currency).String() }

// percent formats a ratio (0.25) as a percentage (25.0%).
func percent(r float64) string { return retire.Ratio(r).String() }

// signedPercent formats a ratio with an explicit sign.
func signedPercent(r float64) string {
	s := percent(r)
	if r > 0 {
		return "+" + s
	}
	return s
}
