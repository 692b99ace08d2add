package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/google/subcommands"
	"github.com/toshan-luktuke/retire-early"
	"github.com/toshan-luktuke/retire-early/renderer"
)

type returnsCmd struct {
	year int
	seed uint64
	json bool
}

func (*returnsCmd) Name() string     { return "returns" }
func (*returnsCmd) Synopsis() string { return "samples one year of returns for every asset class" }
func (*returnsCmd) Usage() string {
	return `retire returns [-year <n>] [-seed <n>] [-json]

  Draws one annual return per asset class from the asset return models,
  the defaults or those of the -assets file.
`
}

func (c *returnsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 1, "Year the returns are drawn for")
	f.Uint64Var(&c.seed, "seed", 0, "Seed of the random draws, 0 for a random seed")
	f.BoolVar(&c.json, "json", false, "Print the returns as JSON")
}

func (c *returnsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	params, err := loadAssets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	src := rand.Source(rand.NewPCG(c.seed, c.seed))
	if c.seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	returns, err := retire.NewReturnGenerator(params, src).AllReturns(c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := json.NewEncoder(stdout).Encode(returns); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.ReturnsMarkdown(c.year, returns, params))
	return subcommands.ExitSuccess
}
