package renderer

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/toshan-luktuke/retire-early"
)

// simulate runs a deterministic simulation: every asset returns its mean.
func simulate(t *testing.T, req retire.Request) *retire.SimulationResult {
	t.Helper()
	params := retire.AssetParams{
		retire.Equities:     {Mean: 0.08},
		retire.FixedIncome:  {Mean: 0.03},
		retire.Alternatives: {Mean: 0.05},
	}
	res, err := retire.RunMonteCarlo(context.Background(), req.Profile(), params, req.Goal, req.Config(0), rand.NewPCG(1, 2))
	if err != nil {
		t.Fatalf("RunMonteCarlo() error = %v", err)
	}
	return res
}

func household() retire.Request {
	return retire.Request{
		Income:       100000,
		Expenses:     60000,
		Liabilities:  10000,
		Portfolio:    retire.Allocation{retire.Equities: 1, retire.FixedIncome: 0, retire.Alternatives: 0},
		CurrentValue: 50000,
		Goal:         100000,
		Year:         2,
		Iterations:   3,
	}
}

func TestResultMarkdown(t *testing.T) {
	req := household()
	got := ResultMarkdown(retire.Response{Request: req, Result: simulate(t, req)}, "USD")

	for _, want := range []string{
		"# Retirement Projection",
		"**100.0%**",
		"$100,000.00",
		"| Trials",
		"**+$30,000.00**",
		"## Allocation",
		"equities",
		"## Average Net Worth",
		"$84,000.00",
		"+68.0%",
		// 84000*1.08 + 30000
		"$120,720.00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ResultMarkdown() does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Notes") {
		t.Errorf("ResultMarkdown() has unexpected notes:\n%s", got)
	}
}

func TestResultMarkdown_Notes(t *testing.T) {
	req := household()
	req.Year = 0
	req.Portfolio = retire.Allocation{retire.Equities: 0.5, retire.FixedIncome: 0, retire.Alternatives: 0}
	got := ResultMarkdown(retire.Response{Request: req, Result: simulate(t, req)}, "USD")
	for _, want := range []string{"## Notes", "horizon is zero years", "add up to 50.0%"} {
		if !strings.Contains(got, want) {
			t.Errorf("ResultMarkdown() does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Average Net Worth") {
		t.Errorf("ResultMarkdown() of zero years has a net worth table:\n%s", got)
	}

	req = household()
	req.Expenses = 200000
	got = ResultMarkdown(retire.Response{Request: req, Result: simulate(t, req)}, "USD")
	if !strings.Contains(got, "turns negative in year 2") {
		t.Errorf("ResultMarkdown() does not warn about insolvency:\n%s", got)
	}
}

func TestResultMarkdown_NoResult(t *testing.T) {
	got := ResultMarkdown(retire.Response{Request: household()}, "USD")
	if !strings.Contains(got, "No simulation was run.") {
		t.Errorf("ResultMarkdown() without result = %q", got)
	}
}

func TestReturnsMarkdown(t *testing.T) {
	returns := map[retire.AssetClass]float64{retire.Equities: 0.125, retire.FixedIncome: -0.02}
	got := ReturnsMarkdown(3, returns, retire.DefaultAssetParams())
	for _, want := range []string{"# Sampled Returns for Year 3", "+12.5%", "-2.0%", "15.0%"} {
		if !strings.Contains(got, want) {
			t.Errorf("ReturnsMarkdown() does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "alternatives") {
		t.Errorf("ReturnsMarkdown() renders a class that was not sampled:\n%s", got)
	}
}

func TestTrajectoryChart(t *testing.T) {
	res := simulate(t, household())

	png, err := TrajectoryChart(res, PNG)
	if err != nil {
		t.Fatalf("TrajectoryChart(png) error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("TrajectoryChart(png) is not a PNG image")
	}

	svg, err := TrajectoryChart(res, SVG)
	if err != nil {
		t.Fatalf("TrajectoryChart(svg) error = %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("TrajectoryChart(svg) is not an SVG image")
	}

	if _, err := TrajectoryChart(res, "gif"); err == nil {
		t.Error("TrajectoryChart(gif) did not fail")
	}

	req := household()
	req.Year = 0
	if _, err := TrajectoryChart(simulate(t, req), PNG); !errors.Is(err, ErrNoTrajectory) {
		t.Errorf("TrajectoryChart() of zero years error = %v, want ErrNoTrajectory", err)
	}
}
