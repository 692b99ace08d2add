// Package cmd implements the CLI application to run retirement projections.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"github.com/toshan-luktuke/retire-early"
)

// commands returns the subcommands by group.
func commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"projections": {&simulateCmd{}, &returnsCmd{}, &inflationCmd{}},
		"services":    {&serveCmd{}, &AssistCmd{}},
		"help":        {&topicCmd{}},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range commands() {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// Verbose enables debug logs.
var Verbose = flag.Bool("v", os.Getenv(EnvVerbose) == "true", "Print debug logs")
var currency = flag.String("currency", envOr(EnvCurrency, "USD"), "ISO 4217 code of the currency amounts are reported in")
var assetsFile = flag.String("assets", os.Getenv(EnvAssets), "Path to a JSON file of asset return models overriding the defaults")

// stdout receives the commands output.
var stdout io.Writer = os.Stdout

// envOr returns the value of the environment variable key, or fallback if it is empty.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger returns the text logger of the commands.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// loadAssets returns the asset return models: the defaults, overridden by the -assets file.
func loadAssets() (retire.AssetParams, error) {
	if *assetsFile == "" {
		return retire.DefaultAssetParams(), nil
	}
	f, err := os.Open(*assetsFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open asset models: %w", err)
	}
	defer f.Close()
	params, err := retire.DecodeAssetParams(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read asset models %q: %w", *assetsFile, err)
	}
	return params, nil
}

// renderMarkdown formats markdown for the terminal, or returns it as is if it cannot.
func renderMarkdown(md string) string {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		return md
	}
	return out
}

func printMarkdown(md string) {
	fmt.Fprint(stdout, renderMarkdown(md))
}
