package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/google/subcommands"
	"github.com/toshan-luktuke/retire-early/agent"
	"google.golang.org/genai"
)

// AssistCmd is the subcommand for the AI assistant.
type AssistCmd struct {
	workers int
}

// Name returns the name of the command.
func (*AssistCmd) Name() string { return "assist" }

// Synopsis returns a short-one line synopsis of the command.
func (*AssistCmd) Synopsis() string { return "Start an interactive session with the AI planner." }

// Usage returns a long-form usage string.
func (*AssistCmd) Usage() string {
	return `assist [<first question>]:
  Start an interactive session with the AI planner. It needs a Gemini API key
  in GEMINI_API_KEY or GOOGLE_API_KEY.
`
}

// SetFlags sets the flags for the command.
func (c *AssistCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.workers, "workers", runtime.NumCPU(), "Number of goroutines running trials")
}

// Execute executes the command.
func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	params, err := loadAssets()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	planner := agent.NewPlanner(agent.Options{
		Params:   params,
		Workers:  c.workers,
		Currency: *currency,
	})
	a := agent.New(os.Stdout, os.Stdin, planner, agent.NewEconomist())
	a.Render = renderMarkdown

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
