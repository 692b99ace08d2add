package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/toshan-luktuke/retire-early/server"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serves projections over HTTP" }
func (*serveCmd) Usage() string {
	return `retire serve [-addr <host:port>]

  Starts the HTTP API. It is configured from the environment, see
  'retire topic server'.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides RETIRE_ADDR")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := server.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.addr != "" {
		cfg.Addr = c.addr
	}
	if *Verbose {
		cfg.LogLevel = "debug"
	}
	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == "currency" {
			cfg.Currency = *currency
		}
	})
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if cfg.Assets != "" {
		*assetsFile = cfg.Assets
	}
	params, err := loadAssets()
	if err != nil {
		logger.WithError(err).Error("cannot load asset models")
		return subcommands.ExitFailure
	}

	if err := server.New(*cfg, params, logger).Run(ctx); err != nil {
		logger.WithError(err).Error("server failed")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
