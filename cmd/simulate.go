package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/toshan-luktuke/retire-early"
	"github.com/toshan-luktuke/retire-early/insee"
	"github.com/toshan-luktuke/retire-early/renderer"
)

// allocationFlag reads an allocation like "equities=0.6,fixed_income=0.3,alternatives=0.1".
type allocationFlag map[string]float64

func (a *allocationFlag) String() string {
	if a == nil || *a == nil {
		return ""
	}
	var parts []string
	for _, class := range retire.AssetClasses() {
		if w, ok := (*a)[class.String()]; ok {
			parts = append(parts, class.String()+"="+strconv.FormatFloat(w, 'g', -1, 64))
		}
	}
	return strings.Join(parts, ",")
}

func (a *allocationFlag) Set(s string) error {
	weights := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("invalid weight %q, want <asset class>=<weight>", part)
		}
		class, err := retire.ParseAssetClass(name)
		if err != nil {
			return err
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("invalid weight for %v: %w", class, err)
		}
		weights[class.String()] = w
	}
	*a = weights
	return nil
}

func (a *allocationFlag) Get() any { return map[string]float64(*a) }

// requestFields maps the flags of a request to their JSON field.
var requestFields = map[string]string{
	"income":        "income",
	"expenses":      "expenses",
	"liabilities":   "liabilities",
	"cashflows":     "cashflows",
	"current-value": "current_value",
	"portfolio":     "portfolio",
	"goal":          "goal",
	"year":          "year",
	"iterations":    "iterations",
}

type simulateCmd struct {
	file      string
	path      string
	portfolio allocationFlag
	inflation string
	series    string
	seed      uint64
	workers   int
	json      bool
	chart     string
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "projects a household's savings and the chance to reach a goal" }
func (*simulateCmd) Usage() string {
	return `retire simulate [-f <file> [-path <jsonpath>]] [<request flags>] [-seed <n>] [-json] [-chart <file>]

  Runs a Monte Carlo projection of a household's portfolio and prints a report.

  The request is read from a JSON file (-f, '-' for stdin) and/or from flags.
  Flags override the file's fields.

Usage Examples:
# Half a million goal in 20 years.
$ retire simulate -income 100000 -expenses 60000 -liabilities 10000 \
    -current-value 50000 -portfolio equities=0.6,fixed_income=0.3,alternatives=0.1 \
    -goal 500000 -year 20

# Same request, from the JSON sent to the HTTP API.
$ retire simulate -f household.json -json

`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "JSON request file, '-' for stdin")
	f.StringVar(&c.path, "path", "", "JSONPath of the request in the file, e.g. '$.households[0]'")

	f.Float64("income", 0, "Yearly income")
	f.Float64("expenses", 0, "Yearly expenses")
	f.Float64("liabilities", 0, "Yearly debt payments")
	f.Float64("cashflows", 0, "Other yearly cash flows")
	f.Float64("current-value", 0, "Current value of the portfolio")
	f.Float64("goal", 0, "Target value at the end of the horizon, in today's money")
	f.Int("year", retire.DefaultYears, "Horizon in years")
	f.Int("iterations", retire.DefaultIterations, "Number of trials")
	f.Var(&c.portfolio, "portfolio", "Allocation, as equities=<w>,fixed_income=<w>,alternatives=<w>")
	f.StringVar(&c.inflation, "inflation", "", "Yearly inflation rate (0.025 by default), or 'insee' for the latest published rate")
	f.StringVar(&c.series, "series", envOr("RETIRE_INSEE_SERIES", insee.DefaultSeries), "INSEE price index used by -inflation insee")

	f.Uint64Var(&c.seed, "seed", 0, "Seed of the random draws, 0 for a random seed")
	f.IntVar(&c.workers, "workers", runtime.NumCPU(), "Number of goroutines running trials")
	f.BoolVar(&c.json, "json", false, "Print the request and result as JSON")
	f.StringVar(&c.chart, "chart", "", "Also write a chart of the average net worth to this .png or .svg file")
}

// readFile reads the request file, if any, into its JSON fields.
func (c *simulateCmd) readFile() (map[string]any, error) {
	fields := make(map[string]any)
	if c.file == "" {
		return fields, nil
	}
	var r io.Reader = os.Stdin
	if c.file != "-" {
		f, err := os.Open(c.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	req, err := retire.NewRequestDecoder().DecodeAt(r, c.path)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return fields, json.Unmarshal(raw, &fields)
}

// inflationRate parses the -inflation flag.
func (c *simulateCmd) inflationRate(ctx context.Context) (float64, error) {
	if c.inflation != "insee" {
		return strconv.ParseFloat(c.inflation, 64)
	}
	client := insee.NewClient()
	client.Logger = newLogger()
	rate, at, err := client.Inflation(ctx, c.series, time.Now())
	if err != nil {
		return 0, fmt.Errorf("cannot read inflation from INSEE: %w", err)
	}
	client.Logger.WithField("measured", at.Format(time.DateOnly)).Infof("using INSEE inflation %s", retire.Ratio(rate))
	return rate, nil
}

// request builds the request from the file and the flags set on the command line.
func (c *simulateCmd) request(ctx context.Context, f *flag.FlagSet) (retire.Request, error) {
	fields, err := c.readFile()
	if err != nil {
		return retire.Request{}, err
	}
	f.Visit(func(fl *flag.Flag) {
		if field, ok := requestFields[fl.Name]; ok {
			fields[field] = fl.Value.(flag.Getter).Get()
		}
	})
	if c.inflation != "" {
		rate, err := c.inflationRate(ctx)
		if err != nil {
			return retire.Request{}, err
		}
		fields["inflation"] = rate
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return retire.Request{}, err
	}
	return retire.NewRequestDecoder().Decode(bytes.NewReader(raw))
}

func (c *simulateCmd) source() rand.Source {
	if c.seed == 0 {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(c.seed, c.seed)
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger()

	params, err := loadAssets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	req, err := c.request(ctx, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid request:\n%v\n", err)
		return subcommands.ExitUsageError
	}

	start := time.Now()
	res, err := retire.RunMonteCarlo(ctx, req.Profile(), params, req.Goal, req.Config(c.workers), c.source())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: simulation failed: %v\n", err)
		return subcommands.ExitFailure
	}
	logger.WithField("duration", time.Since(start)).Debugf("%d trials of %d years simulated", res.Iterations(), res.Years())
	resp := retire.NewResponse(req, res)

	if c.chart != "" {
		format := renderer.PNG
		if strings.EqualFold(filepath.Ext(c.chart), ".svg") {
			format = renderer.SVG
		}
		img, err := renderer.TrajectoryChart(res, format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot draw chart: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.chart, img, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot write chart: %v\n", err)
			return subcommands.ExitFailure
		}
		logger.Debugf("chart written to %s", c.chart)
	}

	if c.json {
		if err := json.NewEncoder(stdout).Encode(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.ResultMarkdown(resp, *currency))
	return subcommands.ExitSuccess
}
