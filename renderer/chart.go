package renderer

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/toshan-luktuke/retire-early"
	"github.com/vicanso/go-charts/v2"
)

// Chart formats.
const (
	PNG = "png"
	SVG = "svg"
)

// ErrNoTrajectory is returned when charting a simulation of zero years.
var ErrNoTrajectory = errors.New("no year to chart")

// TrajectoryChart draws the average net worth of each year against the
// inflated goal, as a PNG or an SVG image.
func TrajectoryChart(res *retire.SimulationResult, format string) ([]byte, error) {
	var typ charts.OptionFunc
	switch format {
	case PNG, "":
		typ = charts.PNGTypeOption()
	case SVG:
		typ = charts.SVGTypeOption()
	default:
		return nil, fmt.Errorf("unsupported chart format %q, want %q or %q", format, PNG, SVG)
	}

	avg := res.AverageNetWorth()
	if len(avg) == 0 {
		return nil, ErrNoTrajectory
	}
	labels := make([]string, len(avg))
	goal := make([]float64, len(avg))
	for i := range avg {
		labels[i] = strconv.Itoa(i + 1)
		goal[i] = res.InflatedGoal()
	}

	p, err := charts.LineRender(
		[][]float64{avg, goal},
		typ,
		charts.TitleTextOptionFunc("Average Net Worth", fmt.Sprintf("%s chance of success over %d trials", percent(res.Probability()), res.Iterations())),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{"Net worth", "Inflated goal"},
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(500),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
