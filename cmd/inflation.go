package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/toshan-luktuke/retire-early"
	"github.com/toshan-luktuke/retire-early/insee"
)

// inflationCmd implements the "inflation" command.
type inflationCmd struct {
	series string
}

func (*inflationCmd) Name() string     { return "inflation" }
func (*inflationCmd) Synopsis() string { return "reads the latest inflation rate published by INSEE" }
func (*inflationCmd) Usage() string {
	return `retire inflation [-series <idBank>]

  Downloads a consumer price index from bdm.insee.fr and prints its
  year-over-year change, the rate used by 'simulate -inflation insee'.
`
}

func (c *inflationCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.series, "series", envOr("RETIRE_INSEE_SERIES", insee.DefaultSeries), "idBank of the INSEE price index")
}

func (c *inflationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client := insee.NewClient()
	client.Logger = newLogger()

	rate, at, err := client.Inflation(ctx, c.series, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not fetch from bdm.insee.fr: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "%s year over year, measured on %s (series %s)\n", retire.Ratio(rate), at.Format(time.DateOnly), c.series)
	return subcommands.ExitSuccess
}
